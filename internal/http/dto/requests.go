package dto

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/mr-tron/base58"
)

// SigBytes accepts a signature as a JSON array of byte values, the shape
// wallet adapters return, or as a base58 string.
type SigBytes []byte

func (s *SigBytes) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		raw, err := base58.Decode(str)
		if err != nil {
			return fmt.Errorf("sig: %w", err)
		}
		*s = raw
		return nil
	}

	var nums []int
	if err := json.Unmarshal(data, &nums); err != nil {
		return fmt.Errorf("sig must be a byte array or base58 string")
	}
	out := make([]byte, len(nums))
	for i, n := range nums {
		if n < 0 || n > 255 {
			return fmt.Errorf("sig[%d] out of byte range", i)
		}
		out[i] = byte(n)
	}
	*s = out
	return nil
}

type VerifyRequest struct {
	PK    string   `json:"pk"`
	Sig   SigBytes `json:"sig"`
	Nonce string   `json:"nonce"`
}

type TickRequest struct {
	Wallet string `json:"wallet"`
	Points int64  `json:"points"`
}

type PrepareClaimRequest struct {
	Wallet string `json:"wallet"`
	Day    string `json:"day"` // YYYY-MM-DD
}

type ConfirmClaimRequest struct {
	Wallet string `json:"wallet"`
	Day    string `json:"day"`
	Sig    string `json:"sig"`
}

// WSTick is a tick sent over the websocket.
type WSTick struct {
	Points int64 `json:"points"`
}
