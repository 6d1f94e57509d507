package model

import "time"

// Reward is a time-bounded redemption offer with daily and lifetime caps.
type Reward struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	StartDate   time.Time `json:"startDate"`
	EndDate     time.Time `json:"endDate"`
	PerDayLimit int       `json:"perDayLimit"`
	TotalLimit  int       `json:"totalLimit"`
}

// CreateRewardRequest is the DTO for creating a reward.
// StartDate and EndDate are optional; the service fills in defaults.
type CreateRewardRequest struct {
	Name        string     `json:"name" validate:"required,notblank,max=255"`
	StartDate   *time.Time `json:"startDate"`
	EndDate     *time.Time `json:"endDate"`
	PerDayLimit *int       `json:"perDayLimit" validate:"required,gte=0"`
	TotalLimit  *int       `json:"totalLimit" validate:"required,gte=0"`
}
