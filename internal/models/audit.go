package models

import (
	"time"

	"github.com/google/uuid"
)

// Audit actions
const (
	AuditDaySettled     = "day_settled"
	AuditClaimPrepared  = "claim_prepared"
	AuditClaimConfirmed = "claim_confirmed"
	AuditWalletVerified = "wallet_verified"
)

type AuditLog struct {
	ID          uuid.UUID  `json:"id"`
	ActorUserID *uuid.UUID `json:"actor_user_id,omitempty"`
	ActorType   string     `json:"actor_type"` // user/system
	Action      string     `json:"action"`
	EntityType  string     `json:"entity_type"`
	EntityKey   string     `json:"entity_key"`
	Meta        any        `json:"meta,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}
