package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type DailyPool struct {
	Day       time.Time       `json:"day"`
	EDay      decimal.Decimal `json:"e_day"`
	Source    map[string]any  `json:"source"`
	CreatedAt time.Time       `json:"created_at"`
}
