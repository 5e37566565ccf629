package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/tumo-mining/backend/internal/db"
	"github.com/tumo-mining/backend/internal/models"
)

type ClaimableRepo struct {
	pool *pgxpool.Pool
}

func NewClaimableRepo(pool *pgxpool.Pool) *ClaimableRepo {
	return &ClaimableRepo{pool: pool}
}

// UpsertMany writes the day's claimables in one transaction. Rows already
// claimed keep their amount; frozen counts them. updated_at moves only when
// the amount changes.
func (r *ClaimableRepo) UpsertMany(ctx context.Context, rows []models.Claimable) (applied, frozen int, err error) {
	if len(rows) == 0 {
		return 0, 0, nil
	}

	err = db.InTx(ctx, r.pool, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, c := range rows {
			batch.Queue(`
				INSERT INTO claimables (day, user_id, amount)
				VALUES ($1::date, $2, $3::numeric)
				ON CONFLICT (day, user_id) DO UPDATE SET
					amount = EXCLUDED.amount,
					updated_at = CASE
						WHEN claimables.amount IS DISTINCT FROM EXCLUDED.amount THEN now()
						ELSE claimables.updated_at
					END
				WHERE claimables.claimed = false
			`, c.Day, c.UserID, c.Amount.String())
		}

		br := tx.SendBatch(ctx, batch)
		for range rows {
			tag, err := br.Exec()
			if err != nil {
				_ = br.Close()
				return err
			}
			if tag.RowsAffected() == 1 {
				applied++
			} else {
				frozen++
			}
		}
		return br.Close()
	})
	if err != nil {
		return 0, 0, err
	}
	return applied, frozen, nil
}

func (r *ClaimableRepo) Get(ctx context.Context, day time.Time, userID uuid.UUID) (*models.Claimable, error) {
	var (
		c      models.Claimable
		amount string
	)
	err := r.pool.QueryRow(ctx, `
		SELECT day, user_id, amount::text, claimed, updated_at
		FROM claimables WHERE day = $1::date AND user_id = $2
	`, day, userID).Scan(&c.Day, &c.UserID, &amount, &c.Claimed, &c.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	if c.Amount, err = decimal.NewFromString(amount); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *ClaimableRepo) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]models.Claimable, error) {
	if limit <= 0 {
		limit = 30
	}
	rows, err := r.pool.Query(ctx, `
		SELECT day, user_id, amount::text, claimed, updated_at
		FROM claimables WHERE user_id = $1
		ORDER BY day DESC LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Claimable
	for rows.Next() {
		var (
			c      models.Claimable
			amount string
		)
		if err := rows.Scan(&c.Day, &c.UserID, &amount, &c.Claimed, &c.UpdatedAt); err != nil {
			return nil, err
		}
		if c.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Finalize flips exactly the (day, user) row from unclaimed to claimed and
// records the claim in the same transaction. When the guarded update touches
// nothing the existing state decides the outcome.
func (r *ClaimableRepo) Finalize(ctx context.Context, userID uuid.UUID, day time.Time, sig string) (models.FinalizeOutcome, error) {
	outcome := models.FinalizeMissing

	err := db.InTx(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE claimables SET claimed = true, updated_at = now()
			WHERE day = $1::date AND user_id = $2 AND claimed = false
		`, day, userID)
		if err != nil {
			return err
		}

		if tag.RowsAffected() == 1 {
			if _, err := tx.Exec(ctx, `
				INSERT INTO claims (user_id, day, sig) VALUES ($1, $2::date, $3)
			`, userID, day, sig); err != nil {
				return err
			}
			outcome = models.FinalizeApplied
			return nil
		}

		var existing *string
		err = tx.QueryRow(ctx, `
			SELECT cl.sig
			FROM claimables c
			LEFT JOIN claims cl ON cl.user_id = c.user_id AND cl.day = c.day
			WHERE c.day = $1::date AND c.user_id = $2
		`, day, userID).Scan(&existing)
		if errors.Is(err, pgx.ErrNoRows) {
			outcome = models.FinalizeMissing
			return nil
		}
		if err != nil {
			return err
		}

		if existing != nil && *existing == sig {
			outcome = models.FinalizeDuplicate
		} else {
			outcome = models.FinalizeConflict
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return outcome, nil
}

func (r *ClaimableRepo) GetClaim(ctx context.Context, userID uuid.UUID, day time.Time) (*models.Claim, error) {
	var c models.Claim
	err := r.pool.QueryRow(ctx, `
		SELECT id, user_id, day, sig, created_at
		FROM claims WHERE user_id = $1 AND day = $2::date
	`, userID, day).Scan(&c.ID, &c.UserID, &c.Day, &c.Sig, &c.CreatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return &c, nil
}
