package http

import (
	"context"
	"time"

	"learning_server/pkg/metrics"

	"github.com/gofiber/fiber/v2"
)

// Pinger checks one backing dependency.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a plain function to Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

type HealthHandler struct {
	checks   map[string]Pinger
	pipeline *metrics.Pipeline
	stats    func() any
}

func NewHealthHandler(pipeline *metrics.Pipeline) *HealthHandler {
	return &HealthHandler{
		checks:   make(map[string]Pinger),
		pipeline: pipeline,
	}
}

// WithCheck adds a dependency to /ready. A nil pinger is reported as not configured.
func (h *HealthHandler) WithCheck(name string, p Pinger) *HealthHandler {
	h.checks[name] = p
	return h
}

// WithPoolStats adds connection pool statistics to /metrics/pipeline.
func (h *HealthHandler) WithPoolStats(stats func() any) *HealthHandler {
	h.stats = stats
	return h
}

func (h *HealthHandler) Register(app *fiber.App) {
	app.Get("/health", h.Health)
	app.Get("/ready", h.Ready)
	app.Get("/metrics/pipeline", h.PipelineMetrics)
}

func (h *HealthHandler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	checks := make(map[string]string, len(h.checks))
	allHealthy := true
	for name, p := range h.checks {
		if p == nil {
			checks[name] = "not configured"
			continue
		}
		if err := p.Ping(ctx); err != nil {
			checks[name] = "unhealthy: " + err.Error()
			allHealthy = false
			continue
		}
		checks[name] = "healthy"
	}

	status := "ready"
	statusCode := fiber.StatusOK
	if !allHealthy {
		status = "not ready"
		statusCode = fiber.StatusServiceUnavailable
	}

	return c.Status(statusCode).JSON(fiber.Map{
		"status":    status,
		"checks":    checks,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *HealthHandler) PipelineMetrics(c *fiber.Ctx) error {
	body := h.pipeline.Snapshot()
	if h.stats != nil {
		body["pool"] = h.stats()
	}
	return c.JSON(body)
}
