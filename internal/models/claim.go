package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Claim states per (user, day). Prepared is never persisted.
const (
	ClaimStateUnclaimable = "unclaimable"
	ClaimStateClaimable   = "claimable"
	ClaimStatePrepared    = "prepared"
	ClaimStateClaimed     = "claimed"
)

var ValidClaimTransitions = map[string][]string{
	ClaimStateUnclaimable: {ClaimStateClaimable},
	ClaimStateClaimable:   {ClaimStatePrepared, ClaimStateClaimed},
	ClaimStatePrepared:    {ClaimStateClaimable, ClaimStateClaimed},
	ClaimStateClaimed:     {},
}

func IsValidClaimTransition(from, to string) bool {
	for _, s := range ValidClaimTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

type Claimable struct {
	Day       time.Time       `json:"day"`
	UserID    uuid.UUID       `json:"user_id"`
	Amount    decimal.Decimal `json:"amount"`
	Claimed   bool            `json:"claimed"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// State maps a stored row to the durable claim state.
func (c *Claimable) State() string {
	if c == nil {
		return ClaimStateUnclaimable
	}
	if c.Claimed {
		return ClaimStateClaimed
	}
	return ClaimStateClaimable
}

type Claim struct {
	ID        int64     `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Day       time.Time `json:"day"`
	Sig       string    `json:"sig"`
	CreatedAt time.Time `json:"created_at"`
}

// FinalizeOutcome is what a conditional claimed=false->true update observed.
type FinalizeOutcome int

const (
	FinalizeApplied FinalizeOutcome = iota
	FinalizeDuplicate
	FinalizeConflict
	FinalizeMissing
)
