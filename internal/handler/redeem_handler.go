package handler

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/fairyhunter13/reward-redemption-system/internal/model"
)

// RedemptionServiceInterface defines the interface for the redemption workflow.
type RedemptionServiceInterface interface {
	Redeem(ctx context.Context, playerID, rewardID int64) (*model.Redemption, error)
}

// RedeemHandler handles HTTP requests for coupon redemption.
type RedeemHandler struct {
	service   RedemptionServiceInterface
	validator *validator.Validate
}

// NewRedeemHandler creates a new RedeemHandler with the given service and validator.
func NewRedeemHandler(svc RedemptionServiceInterface, v *validator.Validate) *RedeemHandler {
	return &RedeemHandler{service: svc, validator: v}
}

// Redeem handles POST /coupon-redeem requests.
// Responds 201 with the redemption on success.
func (h *RedeemHandler) Redeem(c *fiber.Ctx) error {
	var req model.RedeemCouponRequest

	if err := c.BodyParser(&req); err != nil {
		return writeBusinessError(c, fiber.StatusBadRequest, msgInvalidBody)
	}

	if err := h.validator.Struct(req); err != nil {
		return writeValidationError(c, err)
	}

	redemption, err := h.service.Redeem(c.UserContext(), *req.PlayerID, *req.RewardID)
	if err != nil {
		return writeServiceError(c, err, "failed to redeem coupon")
	}

	log.Info().
		Str("request_id", c.GetRespHeader("X-Request-ID")).
		Int64("player_id", redemption.PlayerID).
		Int64("reward_id", redemption.Reward.ID).
		Int64("coupon_id", redemption.Coupon.ID).
		Msg("coupon redeemed")

	return c.Status(fiber.StatusCreated).JSON(redemption)
}
