package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/tumo-mining/backend/internal/apperr"
	"github.com/tumo-mining/backend/internal/config"
	"github.com/tumo-mining/backend/internal/models"
	"github.com/tumo-mining/backend/internal/solana"
)

// MiningService is the point ledger: it accepts ticks and answers window
// aggregates for settlement.
type MiningService struct {
	users  UserStore
	events MiningStore
	guard  TickGuard
	cfg    *config.Config
	log    *zap.Logger
	now    func() time.Time
}

func NewMiningService(
	users UserStore,
	events MiningStore,
	guard TickGuard,
	cfg *config.Config,
	log *zap.Logger,
) *MiningService {
	return &MiningService{
		users:  users,
		events: events,
		guard:  guard,
		cfg:    cfg,
		log:    log,
		now:    time.Now,
	}
}

// RecordTick appends one mining event for wallet, creating the user on first
// sight.
func (s *MiningService) RecordTick(ctx context.Context, wallet string, points int64, reason string) (*models.MiningEvent, error) {
	if _, err := solana.DecodePublicKey(wallet); err != nil {
		return nil, apperr.Validation("invalid wallet")
	}
	if points <= 0 {
		return nil, apperr.Validation("points must be positive")
	}
	if s.cfg.MaxPointsPerTick > 0 && points > s.cfg.MaxPointsPerTick {
		return nil, apperr.Validation("points per tick must not exceed %d", s.cfg.MaxPointsPerTick)
	}
	if reason != models.ReasonWS {
		reason = models.ReasonTimer
	}

	user, err := s.users.UpsertByWallet(ctx, wallet)
	if err != nil {
		return nil, apperr.Upstream("failed to upsert user", err)
	}

	if s.guard != nil {
		ok, err := s.guard.Allow(ctx, wallet, s.cfg.TickMinInterval)
		if err != nil {
			// guard недоступен: не блокируем майнинг, дневной лимит проверит БД
			s.log.Warn("tick guard failed", zap.String("wallet", wallet), zap.Error(err))
		} else if !ok {
			return nil, apperr.ErrTickTooSoon
		}
	}

	now := s.now().UTC()
	from, to := models.DayWindow(now)
	e := &models.MiningEvent{
		UserID: user.ID,
		Points: points,
		Reason: reason,
		TS:     now,
	}
	appended, err := s.events.AppendWithinCap(ctx, e, from, to, s.cfg.DailyPointCap)
	if err != nil {
		s.releaseGuard(ctx, wallet)
		return nil, apperr.Upstream("failed to append mining event", err)
	}
	if !appended {
		s.releaseGuard(ctx, wallet)
		return nil, apperr.ErrDailyCap
	}

	s.log.Debug("tick recorded",
		zap.String("wallet", wallet),
		zap.Int64("points", points),
		zap.String("reason", reason),
	)
	return e, nil
}

func (s *MiningService) releaseGuard(ctx context.Context, wallet string) {
	if s.guard == nil {
		return
	}
	if err := s.guard.Release(ctx, wallet); err != nil {
		s.log.Warn("tick guard release failed", zap.String("wallet", wallet), zap.Error(err))
	}
}

// DayPoints is a wallet's total for one UTC day.
type DayPoints struct {
	Day    time.Time
	Points int64
}

// TodayPoints returns what wallet has mined in the current UTC day.
func (s *MiningService) TodayPoints(ctx context.Context, wallet string) (*DayPoints, error) {
	now := s.now()
	out := &DayPoints{Day: models.DayOf(now)}

	user, err := s.users.GetByWallet(ctx, wallet)
	if err != nil {
		if isNotFound(err) {
			return out, nil
		}
		return nil, apperr.Upstream("failed to get user", err)
	}

	from, to := models.DayWindow(now)
	if out.Points, err = s.events.UserPointsInWindow(ctx, user.ID, from, to); err != nil {
		return nil, apperr.Upstream("failed to read daily points", err)
	}
	return out, nil
}

func (s *MiningService) PointsInWindow(ctx context.Context, from, to time.Time) ([]models.UserPoints, error) {
	return s.events.PointsInWindow(ctx, from, to)
}

func (s *MiningService) SumInWindow(ctx context.Context, from, to time.Time) (int64, error) {
	return s.events.SumInWindow(ctx, from, to)
}
