package model

import "time"

// Coupon is a single redeemable unit minted for a reward.
type Coupon struct {
	ID       int64  `json:"id"`
	Value    string `json:"value"`
	RewardID int64  `json:"rewardId"`
}

// PlayerCoupon is the ledger record of a player redeeming a coupon.
// Rows are append-only.
type PlayerCoupon struct {
	ID         int64     `json:"id"`
	PlayerID   int64     `json:"playerId"`
	CouponID   int64     `json:"couponId"`
	RedeemedAt time.Time `json:"redeemedAt"`
}

// Redemption is the API response for a redeemed coupon: the PlayerCoupon
// joined with its Coupon and Reward.
type Redemption struct {
	ID         int64     `json:"id"`
	PlayerID   int64     `json:"playerId"`
	RedeemedAt time.Time `json:"redeemedAt"`
	Coupon     Coupon    `json:"coupon"`
	Reward     Reward    `json:"reward"`
}

// TimeRange is an inclusive [Start, End] window on redeemed_at.
type TimeRange struct {
	Start time.Time
	End   time.Time
}

// RedeemCouponRequest is the DTO for POST /coupon-redeem
type RedeemCouponRequest struct {
	PlayerID *int64 `json:"playerId" validate:"required"`
	RewardID *int64 `json:"rewardId" validate:"required"`
}
