// Package settlement holds the arithmetic of daily pool distribution.
package settlement

import (
	"fmt"
	"math/big"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tumo-mining/backend/internal/models"
)

type Share struct {
	UserID uuid.UUID
	Points int64
	Amount decimal.Decimal
}

// Distribute splits emission across users proportionally to their points.
// Each amount is floor(E * points/total * 10^decimals) / 10^decimals, computed
// in integer base units, so the sum never exceeds E. Users without points and
// days with zero total points get nothing.
func Distribute(emission decimal.Decimal, decimals int32, total int64, rows []models.UserPoints) []Share {
	var sum int64
	for _, r := range rows {
		if r.Points > 0 {
			sum += r.Points
		}
	}
	// total comes from a separate aggregate; never divide by less than what we hand out
	if sum > total {
		total = sum
	}
	if total <= 0 || !emission.IsPositive() {
		return nil
	}

	eUnits := emission.Shift(decimals).Floor().BigInt()
	bigTotal := big.NewInt(total)

	shares := make([]Share, 0, len(rows))
	for _, r := range rows {
		if r.Points <= 0 {
			continue
		}
		units := new(big.Int).Mul(eUnits, big.NewInt(r.Points))
		units.Quo(units, bigTotal)
		shares = append(shares, Share{
			UserID: r.UserID,
			Points: r.Points,
			Amount: decimal.NewFromBigInt(units, -decimals),
		})
	}
	return shares
}

// BaseUnits converts a token amount into integer base units, truncating any
// precision beyond decimals.
func BaseUnits(amount decimal.Decimal, decimals int32) (uint64, error) {
	if amount.IsNegative() {
		return 0, fmt.Errorf("negative amount %s", amount)
	}
	units := amount.Shift(decimals).Floor().BigInt()
	if !units.IsUint64() {
		return 0, fmt.Errorf("amount %s overflows base units", amount)
	}
	return units.Uint64(), nil
}

// Sum adds the amounts of shares.
func Sum(shares []Share) decimal.Decimal {
	total := decimal.Zero
	for _, s := range shares {
		total = total.Add(s.Amount)
	}
	return total
}
