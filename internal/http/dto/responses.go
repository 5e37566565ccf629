package dto

import (
	"github.com/shopspring/decimal"
)

type VerifyResponse struct {
	OK    bool   `json:"ok"`
	Token string `json:"token"`
	User  any    `json:"user"`
}

type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

type SuccessResponse struct {
	OK   bool `json:"ok"`
	Data any  `json:"data,omitempty"`
}

type SettleResponse struct {
	OK     bool   `json:"ok"`
	Day    string `json:"day"`
	Result any    `json:"result,omitempty"`
}

type ClaimableResponse struct {
	Day     string          `json:"day"`
	Amount  decimal.Decimal `json:"amount"`
	Claimed bool            `json:"claimed"`
}

type TokenMetaResponse struct {
	Mint     string `json:"mint"`
	Decimals int32  `json:"decimals"`
	EDay     string `json:"e_day"`
	Fixed    bool   `json:"fixed"`
}

type MiningStatsResponse struct {
	Wallet string `json:"wallet"`
	Day    string `json:"day"`
	Points int64  `json:"points"`
}
