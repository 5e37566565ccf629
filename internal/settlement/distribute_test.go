package settlement

import (
	"math/rand"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tumo-mining/backend/internal/models"
)

func TestDistribute_Scenario(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	rows := []models.UserPoints{{UserID: a, Points: 30}, {UserID: b, Points: 70}}

	shares := Distribute(decimal.NewFromInt(1000), 2, 100, rows)
	require.Len(t, shares, 2)

	got := map[uuid.UUID]string{}
	for _, s := range shares {
		got[s.UserID] = s.Amount.StringFixed(2)
	}
	assert.Equal(t, "300.00", got[a])
	assert.Equal(t, "700.00", got[b])
}

func TestDistribute_TruncatesNotRounds(t *testing.T) {
	ids := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
	rows := []models.UserPoints{{UserID: ids[0], Points: 1}, {UserID: ids[1], Points: 1}, {UserID: ids[2], Points: 1}}

	shares := Distribute(decimal.NewFromInt(100), 2, 3, rows)
	require.Len(t, shares, 3)
	for _, s := range shares {
		assert.Equal(t, "33.33", s.Amount.StringFixed(2))
	}
	assert.True(t, Sum(shares).LessThanOrEqual(decimal.NewFromInt(100)))
}

func TestDistribute_ZeroPoints(t *testing.T) {
	a, b := uuid.New(), uuid.New()

	assert.Empty(t, Distribute(decimal.NewFromInt(1000), 2, 0, nil))
	assert.Empty(t, Distribute(decimal.NewFromInt(1000), 2, 0, []models.UserPoints{{UserID: a, Points: 0}}))

	shares := Distribute(decimal.NewFromInt(1000), 2, 10, []models.UserPoints{{UserID: a, Points: 0}, {UserID: b, Points: 10}})
	require.Len(t, shares, 1)
	assert.Equal(t, b, shares[0].UserID)
	assert.Equal(t, "1000.00", shares[0].Amount.StringFixed(2))
}

func TestDistribute_TotalSmallerThanRows(t *testing.T) {
	a := uuid.New()
	shares := Distribute(decimal.NewFromInt(50), 0, 1, []models.UserPoints{{UserID: a, Points: 5}})
	require.Len(t, shares, 1)
	assert.True(t, shares[0].Amount.Equal(decimal.NewFromInt(50)))
}

// Σ amount never exceeds E, for any point vector.
func TestDistribute_SumNeverExceedsEmission(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	emissions := []decimal.Decimal{
		decimal.NewFromInt(10000),
		decimal.RequireFromString("1234.567891"),
		decimal.NewFromInt(1),
		decimal.RequireFromString("0.000001"),
	}

	for i := 0; i < 500; i++ {
		n := rng.Intn(50) + 1
		rows := make([]models.UserPoints, n)
		var total int64
		for j := range rows {
			p := rng.Int63n(100000)
			rows[j] = models.UserPoints{UserID: uuid.New(), Points: p}
			total += p
		}
		e := emissions[i%len(emissions)]
		decimals := int32(rng.Intn(10))

		shares := Distribute(e, decimals, total, rows)
		sum := Sum(shares)
		require.Truef(t, sum.LessThanOrEqual(e), "sum %s exceeds emission %s (decimals=%d)", sum, e, decimals)
		for _, s := range shares {
			require.Positive(t, s.Points)
			require.False(t, s.Amount.IsNegative())
			require.LessOrEqual(t, -s.Amount.Exponent(), decimals)
		}
	}
}

func TestBaseUnits(t *testing.T) {
	tests := []struct {
		amount   string
		decimals int32
		want     uint64
		wantErr  bool
	}{
		{"300.00", 2, 30000, false},
		{"1.5", 6, 1500000, false},
		{"0.0000019", 6, 1, false},
		{"0", 9, 0, false},
		{"-1", 6, 0, true},
		{"99999999999999999999999", 6, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.amount, func(t *testing.T) {
			got, err := BaseUnits(decimal.RequireFromString(tt.amount), tt.decimals)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
