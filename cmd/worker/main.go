package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/tumo-mining/backend/internal/config"
	"github.com/tumo-mining/backend/internal/db"
	"github.com/tumo-mining/backend/internal/events"
	"github.com/tumo-mining/backend/internal/repositories"
	"github.com/tumo-mining/backend/internal/scheduler"
	"github.com/tumo-mining/backend/internal/services"
	"github.com/tumo-mining/backend/internal/settlement"
	"github.com/tumo-mining/backend/migrations"
)

func main() {
	log, _ := zap.NewProduction()
	defer log.Sync()

	cfg := config.Load()
	cfg.Validate(log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := db.NewPostgresPool(ctx, cfg.PostgresDSN, log)
	if err != nil {
		log.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer pool.Close()

	if err := db.RunMigrations(ctx, pool, migrations.FS, log); err != nil {
		log.Fatal("failed to run migrations", zap.Error(err))
	}

	rdb, err := db.NewRedisClient(ctx, cfg.RedisURL, log)
	if err != nil {
		log.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer rdb.Close()

	// Repos
	userRepo := repositories.NewUserRepo(pool)
	miningRepo := repositories.NewMiningRepo(pool)
	poolRepo := repositories.NewPoolRepo(pool)
	claimableRepo := repositories.NewClaimableRepo(pool)
	auditRepo := repositories.NewAuditRepo(pool)

	emission, err := settlement.NewConfigEmission(cfg.EDayFixed, cfg.DefaultEDay)
	if err != nil {
		log.Fatal("invalid emission config", zap.Error(err))
	}

	// Services
	publisher := events.NewRedisPublisher(rdb, log)
	miningService := services.NewMiningService(userRepo, miningRepo, nil, cfg, log)
	settlementService := services.NewSettlementService(miningService, poolRepo, claimableRepo, emission, auditRepo, publisher, cfg, log)

	sched := scheduler.NewSettleScheduler(settlementService, cfg.SettleCron, log)

	log.Info("worker started")

	// Вчерашний день мог пропуститься, пока воркер лежал
	sched.CatchUp()

	if err := sched.Start(); err != nil {
		log.Fatal("failed to start scheduler", zap.Error(err))
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info("shutting down worker")
	sched.Stop()
}
