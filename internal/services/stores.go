package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/tumo-mining/backend/internal/models"
	"github.com/tumo-mining/backend/internal/solana"
)

type UserStore interface {
	UpsertByWallet(ctx context.Context, wallet string) (*models.User, error)
	GetByWallet(ctx context.Context, wallet string) (*models.User, error)
}

type MiningStore interface {
	Append(ctx context.Context, e *models.MiningEvent) error
	AppendWithinCap(ctx context.Context, e *models.MiningEvent, from, to time.Time, limit int64) (bool, error)
	PointsInWindow(ctx context.Context, from, to time.Time) ([]models.UserPoints, error)
	SumInWindow(ctx context.Context, from, to time.Time) (int64, error)
	UserPointsInWindow(ctx context.Context, userID uuid.UUID, from, to time.Time) (int64, error)
}

type PoolStore interface {
	EnsureDailyPool(ctx context.Context, p *models.DailyPool) error
}

type ClaimableStore interface {
	UpsertMany(ctx context.Context, rows []models.Claimable) (applied, frozen int, err error)
	Get(ctx context.Context, day time.Time, userID uuid.UUID) (*models.Claimable, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]models.Claimable, error)
	Finalize(ctx context.Context, userID uuid.UUID, day time.Time, sig string) (models.FinalizeOutcome, error)
	GetClaim(ctx context.Context, userID uuid.UUID, day time.Time) (*models.Claim, error)
}

type AuditLogger interface {
	Log(ctx context.Context, entry models.AuditLog) error
}

// PointAggregator is the read side of the point ledger used by settlement.
type PointAggregator interface {
	PointsInWindow(ctx context.Context, from, to time.Time) ([]models.UserPoints, error)
	SumInWindow(ctx context.Context, from, to time.Time) (int64, error)
}

type TransferBuilder interface {
	Build(ctx context.Context, wallet string, amount uint64) (*solana.Transfer, error)
}
