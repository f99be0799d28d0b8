package s3

import "io"

// object adapts a GetObject body to blobstore.Blob. size is -1 when the
// response carried no Content-Length.
type object struct {
	io.ReadCloser
	size int64
}

func (o *object) Size() int64 { return o.size }
