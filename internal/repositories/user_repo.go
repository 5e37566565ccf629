package repositories

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tumo-mining/backend/internal/models"
)

type UserRepo struct {
	pool *pgxpool.Pool
}

func NewUserRepo(pool *pgxpool.Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

// UpsertByWallet is idempotent on wallet; the existing row wins.
func (r *UserRepo) UpsertByWallet(ctx context.Context, wallet string) (*models.User, error) {
	var u models.User
	err := r.pool.QueryRow(ctx, `
		INSERT INTO users (wallet) VALUES ($1)
		ON CONFLICT (wallet) DO UPDATE SET wallet = users.wallet
		RETURNING id, wallet, created_at
	`, wallet).Scan(&u.ID, &u.Wallet, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) GetByWallet(ctx context.Context, wallet string) (*models.User, error) {
	var u models.User
	err := r.pool.QueryRow(ctx, `
		SELECT id, wallet, created_at FROM users WHERE wallet = $1
	`, wallet).Scan(&u.ID, &u.Wallet, &u.CreatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}
