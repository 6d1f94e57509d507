package handler

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/fairyhunter13/reward-redemption-system/internal/model"
)

// RewardServiceInterface defines the interface for reward business logic.
type RewardServiceInterface interface {
	Create(ctx context.Context, req *model.CreateRewardRequest) (*model.Reward, error)
	GetAll(ctx context.Context) ([]model.Reward, error)
	GetByID(ctx context.Context, id int64) (*model.Reward, error)
}

// RewardHandler handles HTTP requests for reward operations.
type RewardHandler struct {
	service   RewardServiceInterface
	validator *validator.Validate
}

// NewRewardHandler creates a new RewardHandler with the given service and validator.
func NewRewardHandler(svc RewardServiceInterface, v *validator.Validate) *RewardHandler {
	return &RewardHandler{service: svc, validator: v}
}

// CreateReward handles POST /reward requests.
// Dates are RFC 3339; missing dates are defaulted by the service.
func (h *RewardHandler) CreateReward(c *fiber.Ctx) error {
	var req model.CreateRewardRequest

	if err := c.BodyParser(&req); err != nil {
		return writeBusinessError(c, fiber.StatusBadRequest, msgInvalidBody)
	}

	if err := h.validator.Struct(req); err != nil {
		return writeValidationError(c, err)
	}

	reward, err := h.service.Create(c.UserContext(), &req)
	if err != nil {
		return writeServiceError(c, err, "failed to create reward")
	}

	log.Info().
		Str("request_id", c.GetRespHeader("X-Request-ID")).
		Int64("reward_id", reward.ID).
		Str("name", reward.Name).
		Msg("reward created")

	return c.Status(fiber.StatusCreated).JSON(reward)
}

// ListRewards handles GET /reward requests.
func (h *RewardHandler) ListRewards(c *fiber.Ctx) error {
	rewards, err := h.service.GetAll(c.UserContext())
	if err != nil {
		return writeServiceError(c, err, "failed to list rewards")
	}
	return c.JSON(rewards)
}

// GetReward handles GET /reward/:id requests.
func (h *RewardHandler) GetReward(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return writeBusinessError(c, fiber.StatusBadRequest, msgInvalidID)
	}

	reward, err := h.service.GetByID(c.UserContext(), id)
	if err != nil {
		return writeServiceError(c, err, "failed to get reward")
	}
	return c.JSON(reward)
}
