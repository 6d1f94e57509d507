package handler

import (
	"context"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/fairyhunter13/reward-redemption-system/internal/model"
)

// PlayerServiceInterface defines the interface for player business logic.
type PlayerServiceInterface interface {
	Create(ctx context.Context, req *model.CreatePlayerRequest) (*model.Player, error)
	GetAll(ctx context.Context) ([]model.Player, error)
	GetByID(ctx context.Context, id int64) (*model.Player, error)
	Redemptions(ctx context.Context, id int64) ([]model.Redemption, error)
}

// PlayerHandler handles HTTP requests for player operations.
type PlayerHandler struct {
	service   PlayerServiceInterface
	validator *validator.Validate
}

// NewPlayerHandler creates a new PlayerHandler with the given service and validator.
func NewPlayerHandler(svc PlayerServiceInterface, v *validator.Validate) *PlayerHandler {
	return &PlayerHandler{service: svc, validator: v}
}

// CreatePlayer handles POST /player requests.
func (h *PlayerHandler) CreatePlayer(c *fiber.Ctx) error {
	var req model.CreatePlayerRequest

	if err := c.BodyParser(&req); err != nil {
		return writeBusinessError(c, fiber.StatusBadRequest, msgInvalidBody)
	}

	if err := h.validator.Struct(req); err != nil {
		return writeValidationError(c, err)
	}

	player, err := h.service.Create(c.UserContext(), &req)
	if err != nil {
		return writeServiceError(c, err, "failed to create player")
	}

	log.Info().
		Str("request_id", c.GetRespHeader("X-Request-ID")).
		Int64("player_id", player.ID).
		Msg("player created")

	return c.Status(fiber.StatusCreated).JSON(player)
}

// ListPlayers handles GET /player requests.
func (h *PlayerHandler) ListPlayers(c *fiber.Ctx) error {
	players, err := h.service.GetAll(c.UserContext())
	if err != nil {
		return writeServiceError(c, err, "failed to list players")
	}
	return c.JSON(players)
}

// GetPlayer handles GET /player/:id requests.
func (h *PlayerHandler) GetPlayer(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return writeBusinessError(c, fiber.StatusBadRequest, msgInvalidID)
	}

	player, err := h.service.GetByID(c.UserContext(), id)
	if err != nil {
		return writeServiceError(c, err, "failed to get player")
	}
	return c.JSON(player)
}

// ListRedemptions handles GET /player/:id/coupons requests.
func (h *PlayerHandler) ListRedemptions(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return writeBusinessError(c, fiber.StatusBadRequest, msgInvalidID)
	}

	redemptions, err := h.service.Redemptions(c.UserContext(), id)
	if err != nil {
		return writeServiceError(c, err, "failed to list redemptions")
	}
	return c.JSON(redemptions)
}

// paramID parses the :id route parameter as a positive integer.
func paramID(c *fiber.Ctx) (int64, bool) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
