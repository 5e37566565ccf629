package settlement

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// EmissionSource resolves the total emission E of a day and its provenance.
type EmissionSource interface {
	EmissionFor(ctx context.Context, day time.Time) (decimal.Decimal, map[string]any, error)
}

// ConfigEmission uses a fixed configured E when present, else a default.
type ConfigEmission struct {
	fixed    decimal.Decimal
	hasFixed bool
	fallback decimal.Decimal
}

func NewConfigEmission(fixed, fallback string) (*ConfigEmission, error) {
	e := &ConfigEmission{}

	if fixed != "" {
		v, err := decimal.NewFromString(fixed)
		if err != nil {
			return nil, fmt.Errorf("invalid E_DAY_FIXED %q: %w", fixed, err)
		}
		// 0 means "not set", same as an empty value
		if v.IsPositive() {
			e.fixed, e.hasFixed = v, true
		} else if v.IsNegative() {
			return nil, fmt.Errorf("E_DAY_FIXED must not be negative")
		}
	}

	v, err := decimal.NewFromString(fallback)
	if err != nil {
		return nil, fmt.Errorf("invalid DEFAULT_E_DAY %q: %w", fallback, err)
	}
	if v.IsNegative() {
		return nil, fmt.Errorf("DEFAULT_E_DAY must not be negative")
	}
	e.fallback = v
	return e, nil
}

func (e *ConfigEmission) EmissionFor(context.Context, time.Time) (decimal.Decimal, map[string]any, error) {
	if e.hasFixed {
		return e.fixed, map[string]any{"fixed": true}, nil
	}
	return e.fallback, map[string]any{"fixed": false, "default": true}, nil
}
