package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const healthCheckTimeout = 2 * time.Second

// Probe reports whether one dependency is reachable.
type Probe func(ctx context.Context) error

type healthHandler struct {
	logger *logrus.Logger
	probes map[string]Probe
}

// NewHealthHandler answers 200 when every probe passes and 503 otherwise. The audit
// store and Redis are off the reply path, so a failing probe never stops chat traffic.
func NewHealthHandler(logger *logrus.Logger, probes map[string]Probe) Handler {
	return &healthHandler{
		logger: logger,
		probes: probes,
	}
}

// Handle @Summary Health check
// @Tags Operations
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /health [get]
func (h *healthHandler) Handle(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), healthCheckTimeout)
	defer cancel()

	names := make([]string, 0, len(h.probes))
	for name := range h.probes {
		names = append(names, name)
	}
	errs := make([]error, len(names))
	results := make(map[string]string, len(names))

	var g errgroup.Group
	for i, name := range names {
		probe := h.probes[name]
		g.Go(func() error {
			errs[i] = probe(ctx)
			return nil
		})
	}
	_ = g.Wait()

	status, code := "healthy", fiber.StatusOK
	for i, name := range names {
		if errs[i] != nil {
			h.logger.WithError(errs[i]).WithField("dependency", name).Warn("health probe failed")
			results[name] = "unavailable"
			status, code = "degraded", fiber.StatusServiceUnavailable
			continue
		}
		results[name] = "ok"
	}

	return c.Status(code).JSON(fiber.Map{
		"status": status,
		"checks": results,
		"time":   time.Now().Format(time.RFC3339),
	})
}

type pingHandler struct{}

func NewPingHandler() Handler {
	return &pingHandler{}
}

func (h *pingHandler) Handle(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "ok",
		"time":   time.Now().Format(time.RFC3339),
	})
}
