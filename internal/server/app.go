package server

import (
	"errors"
	"strconv"
	"time"

	gojson "github.com/goccy/go-json"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/google/uuid"
	"github.com/hupe1980/content"
)

// AppOptions configures NewApp.
type AppOptions struct {
	Runner *Runner
	Logger *content.Logger
}

const contextKeyRequestID = "_contentd_request_id"

type addressRequest struct {
	Address string `json:"address"`
	Kind    string `json:"kind"`
}

type jobPayload struct {
	ID      string  `json:"id"`
	Address string  `json:"address"`
	Pending int     `json:"pending"`
	AgeMS   float64 `json:"age_ms"`
}

// NewApp builds the diagnostics and control API:
//
//	GET  /-/stats   service and cache statistics
//	GET  /-/assets  every cached asset
//	GET  /-/jobs    jobs awaiting finalization
//	GET  /-/pinned  assets loaded through this API
//	POST /-/load    {"address": "...", "kind": "blob"|"bundle"}
//	POST /-/unload  {"address": "..."}
//	POST /-/reload  {"address": "..."}
//	POST /-/prune   ?force=true
func NewApp(opts AppOptions) (*fiber.App, error) {
	if opts.Runner == nil {
		return nil, errors.New("runner is required")
	}
	if opts.Logger == nil {
		opts.Logger = content.NoopLogger()
	}

	app := fiber.New(fiber.Config{
		CaseSensitive: true,
		JSONEncoder:   gojson.Marshal,
		JSONDecoder:   gojson.Unmarshal,
	})

	app.Use(recover.New())
	app.Use(requestIDMiddleware())

	h := &handlers{runner: opts.Runner, svc: opts.Runner.Service(), logger: opts.Logger}
	app.Get("/-/stats", h.stats)
	app.Get("/-/assets", h.assets)
	app.Get("/-/jobs", h.jobs)
	app.Get("/-/pinned", h.pinned)
	app.Post("/-/load", h.load)
	app.Post("/-/unload", h.unload)
	app.Post("/-/reload", h.reload)
	app.Post("/-/prune", h.prune)

	return app, nil
}

func requestIDMiddleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		reqID := uuid.NewString()
		c.Locals(contextKeyRequestID, reqID)
		c.Set("X-Request-ID", reqID)
		return c.Next()
	}
}

type handlers struct {
	runner *Runner
	svc    *content.Service
	logger *content.Logger
}

func (h *handlers) stats(c fiber.Ctx) error {
	return c.JSON(h.svc.Stats())
}

func (h *handlers) assets(c fiber.Ctx) error {
	assets := h.svc.Assets()
	if assets == nil {
		assets = []content.AssetInfo{}
	}
	return c.JSON(fiber.Map{"assets": assets})
}

func (h *handlers) jobs(c fiber.Ctx) error {
	jobs := h.svc.Jobs()
	payload := make([]jobPayload, len(jobs))
	for i, j := range jobs {
		payload[i] = jobPayload{
			ID:      j.ID.String(),
			Address: j.Address.String(),
			Pending: j.Pending,
			AgeMS:   float64(j.Age) / float64(time.Millisecond),
		}
	}
	return c.JSON(fiber.Map{"jobs": payload})
}

func (h *handlers) pinned(c fiber.Ctx) error {
	return c.JSON(fiber.Map{"pinned": h.runner.Pinned()})
}

func (h *handlers) load(c fiber.Ctx) error {
	req, err := bindAddress(c)
	if err != nil {
		return err
	}
	if req.Kind == "" {
		req.Kind = KindBlob
	}

	if err := h.runner.Load(req.Kind, req.Address); err != nil {
		return h.fail(c, "load", req.Address, err)
	}
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"address": req.Address,
		"kind":    req.Kind,
	})
}

func (h *handlers) unload(c fiber.Ctx) error {
	req, err := bindAddress(c)
	if err != nil {
		return err
	}

	removed, err := h.runner.Unload(c.Context(), req.Address)
	if err != nil {
		return h.fail(c, "unload", req.Address, err)
	}
	return c.JSON(fiber.Map{"address": req.Address, "removed": removed})
}

func (h *handlers) reload(c fiber.Ctx) error {
	req, err := bindAddress(c)
	if err != nil {
		return err
	}

	if err := h.runner.Reload(c.Context(), req.Address); err != nil {
		return h.fail(c, "reload", req.Address, err)
	}
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"address": req.Address})
}

func (h *handlers) prune(c fiber.Ctx) error {
	force := false
	if raw := c.Query("force"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_force"})
		}
		force = v
	}

	n, err := h.runner.Prune(c.Context(), force)
	if err != nil {
		return h.fail(c, "prune", "", err)
	}
	return c.JSON(fiber.Map{"evicted": n, "force": force})
}

func bindAddress(c fiber.Ctx) (addressRequest, error) {
	var req addressRequest
	if err := gojson.Unmarshal(c.Body(), &req); err != nil {
		return req, fiber.NewError(fiber.StatusBadRequest, "invalid_body")
	}
	if req.Address == "" {
		return req, fiber.NewError(fiber.StatusBadRequest, "address_required")
	}
	return req, nil
}

// fail maps service errors to HTTP statuses.
func (h *handlers) fail(c fiber.Ctx, action, addr string, err error) error {
	status := fiber.StatusInternalServerError
	code := "internal"
	switch {
	case errors.Is(err, ErrUnknownKind), errors.Is(err, content.ErrInvalidAddress):
		status, code = fiber.StatusBadRequest, "bad_request"
	case errors.Is(err, ErrNotPinned):
		status, code = fiber.StatusNotFound, "not_pinned"
	case errors.Is(err, content.ErrNotCached):
		status, code = fiber.StatusNotFound, "not_cached"
	case errors.Is(err, content.ErrInFlight):
		status, code = fiber.StatusConflict, "in_flight"
	case errors.Is(err, content.ErrClosed), errors.Is(err, ErrStopped):
		status, code = fiber.StatusServiceUnavailable, "closed"
	}

	h.logger.Warn("request failed",
		"action", action,
		"address", addr,
		"request_id", c.Locals(contextKeyRequestID),
		"error", err,
	)
	return c.Status(status).JSON(fiber.Map{"error": code, "message": err.Error()})
}
