package services

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tumo-mining/backend/internal/apperr"
	"github.com/tumo-mining/backend/internal/auth"
	"github.com/tumo-mining/backend/internal/config"
	"github.com/tumo-mining/backend/internal/models"
	"github.com/tumo-mining/backend/internal/nonce"
	"github.com/tumo-mining/backend/internal/solana"
)

type AuthService struct {
	nonces nonce.Store
	users  UserStore
	audit  AuditLogger
	cfg    *config.Config
	log    *zap.Logger
}

func NewAuthService(
	nonces nonce.Store,
	users UserStore,
	audit AuditLogger,
	cfg *config.Config,
	log *zap.Logger,
) *AuthService {
	return &AuthService{
		nonces: nonces,
		users:  users,
		audit:  audit,
		cfg:    cfg,
		log:    log,
	}
}

// IssueNonce выдаёт одноразовый nonce; повторный вызов заменяет предыдущий.
func (s *AuthService) IssueNonce(ctx context.Context, publicKey string) (string, error) {
	if publicKey == "" {
		return "", apperr.Validation("pk required")
	}
	n, err := s.nonces.Issue(ctx, publicKey)
	if err != nil {
		return "", apperr.Upstream("failed to issue nonce", err)
	}
	return n, nil
}

type VerifyResult struct {
	User  *models.User
	Token string
}

// Verify consumes the nonce and checks the wallet signature over the
// challenge. The nonce is spent even when the signature is wrong.
func (s *AuthService) Verify(ctx context.Context, publicKey, n string, sig []byte) (*VerifyResult, error) {
	if publicKey == "" || n == "" {
		return nil, apperr.Validation("pk and nonce required")
	}

	// 1. Consume nonce: защита от replay
	ok, err := s.nonces.Consume(ctx, publicKey, n)
	if err != nil {
		return nil, apperr.Upstream("failed to consume nonce", err)
	}
	if !ok {
		return nil, apperr.ErrBadNonce
	}

	// 2. Подпись над "Sign-In With Solana: <nonce>"
	if err := solana.VerifyChallenge(publicKey, n, sig); err != nil {
		s.log.Info("siws verify failed", zap.String("wallet", publicKey), zap.Error(err))
		return nil, apperr.Wrap(apperr.ErrBadSignature, err)
	}

	user, err := s.users.UpsertByWallet(ctx, publicKey)
	if err != nil {
		return nil, apperr.Upstream("failed to upsert user", err)
	}

	token, err := auth.GenerateJWT(s.cfg.JWTSecret, user.ID, user.Wallet, s.cfg.JWTExpiration)
	if err != nil {
		return nil, apperr.Upstream("failed to issue token", err)
	}

	s.logAudit(ctx, user.ID, user.Wallet)

	s.log.Info("wallet verified", zap.String("user_id", user.ID.String()), zap.String("wallet", user.Wallet))
	return &VerifyResult{User: user, Token: token}, nil
}

func (s *AuthService) logAudit(ctx context.Context, userID uuid.UUID, wallet string) {
	err := s.audit.Log(ctx, models.AuditLog{
		ActorUserID: &userID,
		ActorType:   "user",
		Action:      models.AuditWalletVerified,
		EntityType:  "user",
		EntityKey:   wallet,
	})
	if err != nil {
		s.log.Warn("failed to write audit log", zap.String("action", models.AuditWalletVerified), zap.Error(err))
	}
}
