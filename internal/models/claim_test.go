package models

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestIsValidClaimTransition(t *testing.T) {
	tests := []struct {
		from     string
		to       string
		expected bool
	}{
		{ClaimStateUnclaimable, ClaimStateClaimable, true},
		{ClaimStateClaimable, ClaimStatePrepared, true},
		{ClaimStateClaimable, ClaimStateClaimed, true},
		{ClaimStatePrepared, ClaimStateClaimed, true},
		{ClaimStatePrepared, ClaimStateClaimable, true},

		{ClaimStateUnclaimable, ClaimStateClaimed, false},
		{ClaimStateUnclaimable, ClaimStatePrepared, false},
		{ClaimStateClaimed, ClaimStateClaimable, false},
		{ClaimStateClaimed, ClaimStatePrepared, false},
		{ClaimStateClaimed, ClaimStateUnclaimable, false},
		{"nonexistent", ClaimStateClaimable, false},
	}

	for _, tt := range tests {
		t.Run(tt.from+"->"+tt.to, func(t *testing.T) {
			if got := IsValidClaimTransition(tt.from, tt.to); got != tt.expected {
				t.Errorf("IsValidClaimTransition(%q, %q) = %v, want %v", tt.from, tt.to, got, tt.expected)
			}
		})
	}
}

func TestClaimedIsTerminal(t *testing.T) {
	if n := len(ValidClaimTransitions[ClaimStateClaimed]); n != 0 {
		t.Errorf("claimed should have no transitions, got %d", n)
	}
}

func TestClaimableState(t *testing.T) {
	var missing *Claimable
	if missing.State() != ClaimStateUnclaimable {
		t.Errorf("nil claimable state = %q", missing.State())
	}
	c := &Claimable{Amount: decimal.NewFromInt(3)}
	if c.State() != ClaimStateClaimable {
		t.Errorf("state = %q", c.State())
	}
	c.Claimed = true
	if c.State() != ClaimStateClaimed {
		t.Errorf("state = %q", c.State())
	}
}
