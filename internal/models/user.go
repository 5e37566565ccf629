package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID        uuid.UUID `json:"id"`
	Wallet    string    `json:"wallet"` // base58, immutable
	CreatedAt time.Time `json:"created_at"`
}
