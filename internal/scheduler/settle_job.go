package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/tumo-mining/backend/internal/models"
	"github.com/tumo-mining/backend/internal/services"
)

type DaySettler interface {
	SettlePrevious(ctx context.Context) (*services.SettleResult, error)
}

// SettleScheduler runs settlement of the previous UTC day on a cron spec.
type SettleScheduler struct {
	cron    *cron.Cron
	settler DaySettler
	spec    string
	timeout time.Duration
	log     *zap.Logger
}

func NewSettleScheduler(settler DaySettler, spec string, log *zap.Logger) *SettleScheduler {
	return &SettleScheduler{
		cron:    cron.New(cron.WithLocation(time.UTC)),
		settler: settler,
		spec:    spec,
		timeout: 10 * time.Minute,
		log:     log,
	}
}

func (s *SettleScheduler) Start() error {
	if _, err := s.cron.AddFunc(s.spec, s.settlePrevious); err != nil {
		return err
	}

	s.cron.Start()
	s.log.Info("settlement scheduler started", zap.String("spec", s.spec))
	return nil
}

func (s *SettleScheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info("settlement scheduler stopped")
}

// CatchUp settles the previous day once; reruns are harmless.
func (s *SettleScheduler) CatchUp() {
	s.settlePrevious()
}

func (s *SettleScheduler) settlePrevious() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	res, err := s.settler.SettlePrevious(ctx)
	if err != nil {
		s.log.Error("settlement failed", zap.Error(err))
		return
	}
	s.log.Info("settlement job done",
		zap.String("day", models.FormatDay(res.Day)),
		zap.Int("users", res.Users),
	)
}
