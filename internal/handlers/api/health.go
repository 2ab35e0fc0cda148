package api

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v3"

	"campusboard/internal/apperr"
	"campusboard/internal/logging"
)

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler answers liveness probes.
type HealthHandler struct {
	db Pinger
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(db Pinger) *HealthHandler {
	return &HealthHandler{db: db}
}

// Healthz reports 200 when the database answers, 503 otherwise.
func (h *HealthHandler) Healthz(c fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		logging.Warn().Err(err).Msg("health check: database unreachable")
		return jsonError(c, fiber.StatusServiceUnavailable, apperr.Internal, "database unavailable")
	}
	return jsonSuccess(c, fiber.Map{"database": "ok"})
}
