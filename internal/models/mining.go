package models

import (
	"time"

	"github.com/google/uuid"
)

// Mining event reasons
const (
	ReasonTimer = "timer"
	ReasonWS    = "ws"
)

// MiningEvent is append-only; settlement reads nothing else.
type MiningEvent struct {
	ID     int64     `json:"id"`
	UserID uuid.UUID `json:"user_id"`
	Points int64     `json:"points"`
	Reason string    `json:"reason"`
	TS     time.Time `json:"ts"`
}

type UserPoints struct {
	UserID uuid.UUID `json:"user_id"`
	Points int64     `json:"points"`
}
