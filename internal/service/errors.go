package service

import "errors"

var (
	// ErrInvalidRequest is returned when request data is invalid or incomplete
	ErrInvalidRequest = errors.New("invalid request")

	// ErrPlayerNotFound is returned when a player cannot be found
	ErrPlayerNotFound = errors.New("player doesn't exist")

	// ErrRewardNotFound is returned when a reward cannot be found
	ErrRewardNotFound = errors.New("reward doesn't exist")

	// ErrRewardNotStarted is returned when a reward's start date is still in the future
	ErrRewardNotStarted = errors.New("the reward has not started yet")

	// ErrRewardExpired is returned when a reward's end date has passed
	ErrRewardExpired = errors.New("the reward has expired")

	// ErrDailyLimitExceeded is returned when the player reached the reward's per-day limit
	ErrDailyLimitExceeded = errors.New("redemption daily limit exceeded")

	// ErrTotalLimitExceeded is returned when the player reached the reward's total limit
	ErrTotalLimitExceeded = errors.New("redemption total limit exceeded")

	// ErrAlreadyRedeemed is returned when one-per-player redemption is enforced
	// and the player already redeemed the reward
	ErrAlreadyRedeemed = errors.New("coupon already redeemed")

	// ErrInvalidDateRange is returned when a reward's end date precedes its start date
	ErrInvalidDateRange = errors.New("invalid date range")
)
