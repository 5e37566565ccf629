package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tumo-mining/backend/internal/db"
	"github.com/tumo-mining/backend/internal/models"
)

type MiningRepo struct {
	pool *pgxpool.Pool
}

func NewMiningRepo(pool *pgxpool.Pool) *MiningRepo {
	return &MiningRepo{pool: pool}
}

func (r *MiningRepo) Append(ctx context.Context, e *models.MiningEvent) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO mining_events (user_id, points, reason)
		VALUES ($1, $2, $3)
		RETURNING id, ts
	`, e.UserID, e.Points, e.Reason).Scan(&e.ID, &e.TS)
}

// AppendWithinCap appends e only while the user's points in [from, to) stay
// within limit. The user row is locked so concurrent ticks of one wallet are
// checked one after another. limit <= 0 disables the check.
func (r *MiningRepo) AppendWithinCap(ctx context.Context, e *models.MiningEvent, from, to time.Time, limit int64) (bool, error) {
	if limit <= 0 {
		return true, r.Append(ctx, e)
	}

	appended := false
	err := db.InTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `SELECT 1 FROM users WHERE id = $1 FOR UPDATE`, e.UserID); err != nil {
			return err
		}

		err := tx.QueryRow(ctx, `
			INSERT INTO mining_events (user_id, points, reason)
			SELECT $1::uuid, $2::bigint, $3::text
			WHERE (
				SELECT COALESCE(SUM(points), 0)
				FROM mining_events
				WHERE user_id = $1::uuid AND ts >= $4 AND ts < $5
			) + $2::bigint <= $6::bigint
			RETURNING id, ts
		`, e.UserID, e.Points, e.Reason, from, to, limit).Scan(&e.ID, &e.TS)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		if err != nil {
			return err
		}
		appended = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return appended, nil
}

// PointsInWindow sums points per user over [from, to).
func (r *MiningRepo) PointsInWindow(ctx context.Context, from, to time.Time) ([]models.UserPoints, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT user_id, SUM(points)::bigint
		FROM mining_events
		WHERE ts >= $1 AND ts < $2
		GROUP BY user_id
		ORDER BY user_id
	`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.UserPoints
	for rows.Next() {
		var p models.UserPoints
		if err := rows.Scan(&p.UserID, &p.Points); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// SumInWindow sums points of all users over [from, to).
func (r *MiningRepo) SumInWindow(ctx context.Context, from, to time.Time) (int64, error) {
	var total int64
	err := r.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(points), 0)::bigint
		FROM mining_events
		WHERE ts >= $1 AND ts < $2
	`, from, to).Scan(&total)
	return total, err
}

func (r *MiningRepo) UserPointsInWindow(ctx context.Context, userID uuid.UUID, from, to time.Time) (int64, error) {
	var total int64
	err := r.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(points), 0)::bigint
		FROM mining_events
		WHERE user_id = $1 AND ts >= $2 AND ts < $3
	`, userID, from, to).Scan(&total)
	return total, err
}
