package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/tumo-mining/backend/internal/apperr"
	"github.com/tumo-mining/backend/internal/config"
	"github.com/tumo-mining/backend/internal/events"
	"github.com/tumo-mining/backend/internal/models"
	"github.com/tumo-mining/backend/internal/settlement"
)

type SettlementService struct {
	points     PointAggregator
	pools      PoolStore
	claimables ClaimableStore
	emission   settlement.EmissionSource
	audit      AuditLogger
	publisher  events.Publisher
	cfg        *config.Config
	log        *zap.Logger
	now        func() time.Time
}

func NewSettlementService(
	points PointAggregator,
	pools PoolStore,
	claimables ClaimableStore,
	emission settlement.EmissionSource,
	audit AuditLogger,
	publisher events.Publisher,
	cfg *config.Config,
	log *zap.Logger,
) *SettlementService {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &SettlementService{
		points:     points,
		pools:      pools,
		claimables: claimables,
		emission:   emission,
		audit:      audit,
		publisher:  publisher,
		cfg:        cfg,
		log:        log,
		now:        time.Now,
	}
}

type SettleResult struct {
	Day         time.Time       `json:"day"`
	EDay        decimal.Decimal `json:"e_day"`
	TotalPoints int64           `json:"total_points"`
	Users       int             `json:"users"`
	Frozen      int             `json:"frozen"`
	Distributed decimal.Decimal `json:"distributed"`
}

// Settle distributes the day's emission over the day's points. It is safe to
// rerun: the pool keeps its first E, claimables are upserted, and rows that
// were already claimed keep their amount.
func (s *SettlementService) Settle(ctx context.Context, day time.Time) (*SettleResult, error) {
	day = models.DayOf(day)
	if !day.Before(models.DayOf(s.now())) {
		return nil, apperr.Validation("day %s is not closed yet", models.FormatDay(day))
	}
	from, to := models.DayWindow(day)

	e, source, err := s.emission.EmissionFor(ctx, day)
	if err != nil {
		return nil, apperr.Upstream("failed to resolve emission", err)
	}

	total, err := s.points.SumInWindow(ctx, from, to)
	if err != nil {
		return nil, apperr.Upstream("failed to sum points", err)
	}
	rows, err := s.points.PointsInWindow(ctx, from, to)
	if err != nil {
		return nil, apperr.Upstream("failed to aggregate points", err)
	}

	// Пул создаётся один раз; при повторе берём сохранённый E.
	pool := &models.DailyPool{Day: day, EDay: e, Source: source}
	if err := s.pools.EnsureDailyPool(ctx, pool); err != nil {
		return nil, apperr.Upstream("failed to ensure daily pool", err)
	}

	shares := settlement.Distribute(pool.EDay, s.cfg.Decimals, total, rows)

	result := &SettleResult{
		Day:         day,
		EDay:        pool.EDay,
		TotalPoints: total,
		Distributed: settlement.Sum(shares),
	}

	if len(shares) > 0 {
		claimables := make([]models.Claimable, 0, len(shares))
		for _, sh := range shares {
			claimables = append(claimables, models.Claimable{
				Day:    day,
				UserID: sh.UserID,
				Amount: sh.Amount,
			})
		}
		applied, frozen, err := s.claimables.UpsertMany(ctx, claimables)
		if err != nil {
			return nil, apperr.Upstream("failed to write claimables", err)
		}
		result.Users, result.Frozen = applied, frozen
	}

	meta := map[string]any{
		"day":          models.FormatDay(day),
		"e_day":        result.EDay.String(),
		"total_points": result.TotalPoints,
		"users":        result.Users,
		"frozen":       result.Frozen,
	}
	if err := s.audit.Log(ctx, models.AuditLog{
		ActorType:  "system",
		Action:     models.AuditDaySettled,
		EntityType: "daily_pool",
		EntityKey:  models.FormatDay(day),
		Meta:       meta,
	}); err != nil {
		s.log.Warn("failed to write audit log", zap.String("action", models.AuditDaySettled), zap.Error(err))
	}

	_ = s.publisher.Publish(ctx, events.Stream, events.Event{
		Type:    events.EventDaySettled,
		Payload: meta,
	})

	s.log.Info("day settled",
		zap.String("day", models.FormatDay(day)),
		zap.String("e_day", result.EDay.String()),
		zap.Int64("total_points", result.TotalPoints),
		zap.Int("users", result.Users),
		zap.Int("frozen", result.Frozen),
		zap.String("distributed", result.Distributed.String()),
	)
	return result, nil
}

// SettlePrevious settles the UTC day before now.
func (s *SettlementService) SettlePrevious(ctx context.Context) (*SettleResult, error) {
	return s.Settle(ctx, models.PreviousDay(s.now()))
}
