package handler

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

const msgDatabaseUnavailable = "Database unavailable"

// Pinger is an interface for health check ping operations.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler handles health check requests.
type HealthHandler struct {
	pool Pinger
}

// NewHealthHandler creates a new HealthHandler with the given database pool.
func NewHealthHandler(pool Pinger) *HealthHandler {
	return &HealthHandler{pool: pool}
}

// Check performs a health check by pinging the database.
// Returns 200 OK with {"status": "healthy"} when the database is reachable,
// and 503 with the standard error body when it is not.
func (h *HealthHandler) Check(c *fiber.Ctx) error {
	if err := h.pool.Ping(c.UserContext()); err != nil {
		log.Error().Err(err).Msg("health check failed: database unreachable")
		return writeBusinessError(c, fiber.StatusServiceUnavailable, msgDatabaseUnavailable)
	}
	return c.JSON(fiber.Map{
		"status": "healthy",
	})
}
