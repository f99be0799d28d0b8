package resource

import (
	"context"
	"io"
)

// RateLimitedReader charges every byte read from r against the IO budget of
// a Controller. Reads are capped at the limiter burst so a single wait can
// always be satisfied.
type RateLimitedReader struct {
	ctx context.Context
	r   io.Reader
	rc  *Controller
}

// NewRateLimitedReader wraps r. Cancelling ctx aborts a pending wait.
func NewRateLimitedReader(ctx context.Context, r io.Reader, rc *Controller) *RateLimitedReader {
	return &RateLimitedReader{ctx: ctx, r: r, rc: rc}
}

func (r *RateLimitedReader) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return r.r.Read(p)
	}
	p = p[:r.rc.ioBurst(len(p))]
	if err := r.rc.AcquireIO(r.ctx, len(p)); err != nil {
		return 0, err
	}
	return r.r.Read(p)
}
