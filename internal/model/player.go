package model

import "time"

// Player represents a player in the system
type Player struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"-"` // Not exposed in API
}

// CreatePlayerRequest is the DTO for creating a player
type CreatePlayerRequest struct {
	Name string `json:"name" validate:"required,notblank,max=255"`
}
