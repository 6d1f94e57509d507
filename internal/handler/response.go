package handler

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/fairyhunter13/reward-redemption-system/internal/service"
)

// Public messages for business errors. Error codes are derived from these,
// so their wording is part of the API.
const (
	msgPlayerNotFound     = "Player doesn't exist"
	msgRewardNotFound     = "Reward doesn't exist"
	msgRewardNotStarted   = "The reward has not started yet"
	msgRewardExpired      = "The reward has expired"
	msgDailyLimitExceeded = "Redeemtion daily limit exceed"
	msgTotalLimitExceeded = "Redeemtion total limit exceed"
	msgAlreadyRedeemed    = "Coupon already redeemed"
	msgInvalidBody        = "Invalid request body"
	msgInvalidDateFormat  = "Invalid date format"
	msgInvalidID          = "Invalid id"
	msgInternalError      = "Internal server error"
)

// errorCode turns a message into its machine-readable code by joining its
// words with underscores.
func errorCode(message string) string {
	return strings.Join(strings.Fields(message), "_")
}

// writeError sends the error envelope shared by every non-2xx response.
func writeError(c *fiber.Ctx, status int, message, code string) error {
	return c.Status(status).JSON(fiber.Map{
		"status":    status,
		"errorCode": code,
		"message":   message,
		"data":      fiber.Map{},
	})
}

// writeBusinessError sends an error whose code is derived from its message.
func writeBusinessError(c *fiber.Ctx, status int, message string) error {
	return writeError(c, status, message, errorCode(message))
}

// writeServiceError maps a service error to its HTTP response.
// Unknown errors are logged and reported as 500 with no error code.
func writeServiceError(c *fiber.Ctx, err error, msg string) error {
	switch {
	case errors.Is(err, service.ErrPlayerNotFound):
		return writeBusinessError(c, fiber.StatusNotFound, msgPlayerNotFound)
	case errors.Is(err, service.ErrRewardNotFound):
		return writeBusinessError(c, fiber.StatusNotFound, msgRewardNotFound)
	case errors.Is(err, service.ErrRewardNotStarted):
		return writeBusinessError(c, fiber.StatusBadRequest, msgRewardNotStarted)
	case errors.Is(err, service.ErrRewardExpired):
		return writeBusinessError(c, fiber.StatusBadRequest, msgRewardExpired)
	case errors.Is(err, service.ErrDailyLimitExceeded):
		return writeBusinessError(c, fiber.StatusBadRequest, msgDailyLimitExceeded)
	case errors.Is(err, service.ErrTotalLimitExceeded):
		return writeBusinessError(c, fiber.StatusBadRequest, msgTotalLimitExceeded)
	case errors.Is(err, service.ErrAlreadyRedeemed):
		return writeBusinessError(c, fiber.StatusBadRequest, msgAlreadyRedeemed)
	case errors.Is(err, service.ErrInvalidDateRange):
		return writeBusinessError(c, fiber.StatusBadRequest, msgInvalidDateFormat)
	case errors.Is(err, service.ErrInvalidRequest):
		return writeBusinessError(c, fiber.StatusBadRequest, msgInvalidBody)
	}

	log.Error().
		Err(err).
		Str("request_id", c.GetRespHeader("X-Request-ID")).
		Str("method", c.Method()).
		Str("path", c.Path()).
		Msg(msg)
	return writeError(c, fiber.StatusInternalServerError, msgInternalError, "")
}

// validationMessage describes the first failed field of a validation error,
// e.g. "playerId empty" for a missing playerId.
func validationMessage(err error) string {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) && len(ve) > 0 {
		fe := ve[0]
		switch fe.Tag() {
		case "required", "notblank":
			return fe.Field() + " empty"
		case "max":
			return fe.Field() + " too long"
		case "gte":
			return fe.Field() + " negative"
		default:
			return fe.Field() + " invalid"
		}
	}
	return msgInvalidBody
}

// writeValidationError sends a 400 for a request that failed validation.
func writeValidationError(c *fiber.Ctx, err error) error {
	return writeBusinessError(c, fiber.StatusBadRequest, validationMessage(err))
}
