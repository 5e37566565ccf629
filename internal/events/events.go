package events

import "context"

// Stream carries settlement and claim events to API instances.
const Stream = "events:mining"

// Event types
const (
	EventDaySettled     = "day_settled"
	EventClaimPrepared  = "claim_prepared"
	EventClaimConfirmed = "claim_confirmed"
	EventTickAck        = "tick_ack"
)

type Event struct {
	Type    string         `json:"type"`
	Wallet  string         `json:"wallet,omitempty"` // пусто: для всех
	Payload map[string]any `json:"payload"`
}

type Publisher interface {
	Publish(ctx context.Context, stream string, event Event) error
}

type Subscriber interface {
	Subscribe(ctx context.Context, stream string, handler func(Event)) error
}

// Nop drops events; used when redis is not wired (one-shot CLI).
type Nop struct{}

func (Nop) Publish(context.Context, string, Event) error { return nil }
