package repositories

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/tumo-mining/backend/internal/models"
)

type PoolRepo struct {
	pool *pgxpool.Pool
}

func NewPoolRepo(pool *pgxpool.Pool) *PoolRepo {
	return &PoolRepo{pool: pool}
}

// EnsureDailyPool inserts the pool for p.Day unless one exists, then loads the
// stored row into p. E of an existing day is never changed.
func (r *PoolRepo) EnsureDailyPool(ctx context.Context, p *models.DailyPool) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO daily_pools (day, e_day, source)
		VALUES ($1::date, $2::numeric, $3)
		ON CONFLICT (day) DO NOTHING
	`, p.Day, p.EDay.String(), p.Source)
	if err != nil {
		return err
	}

	stored, err := r.GetByDay(ctx, p.Day)
	if err != nil {
		return err
	}
	*p = *stored
	return nil
}

func (r *PoolRepo) GetByDay(ctx context.Context, day time.Time) (*models.DailyPool, error) {
	var (
		p    models.DailyPool
		eDay string
	)
	err := r.pool.QueryRow(ctx, `
		SELECT day, e_day::text, source, created_at
		FROM daily_pools WHERE day = $1::date
	`, day).Scan(&p.Day, &eDay, &p.Source, &p.CreatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	if p.EDay, err = decimal.NewFromString(eDay); err != nil {
		return nil, err
	}
	return &p, nil
}
