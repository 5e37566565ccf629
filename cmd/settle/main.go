// Command settle runs settlement for one UTC day and exits.
//
//	settle -day 2024-01-01
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/tumo-mining/backend/internal/config"
	"github.com/tumo-mining/backend/internal/db"
	"github.com/tumo-mining/backend/internal/events"
	"github.com/tumo-mining/backend/internal/models"
	"github.com/tumo-mining/backend/internal/repositories"
	"github.com/tumo-mining/backend/internal/services"
	"github.com/tumo-mining/backend/internal/settlement"
)

func main() {
	dayFlag := flag.String("day", "", "UTC day to settle, YYYY-MM-DD (default: yesterday)")
	flag.Parse()

	log, _ := zap.NewProduction()
	defer log.Sync()

	cfg := config.Load()
	cfg.Validate(log)

	day := models.PreviousDay(time.Now())
	if *dayFlag != "" {
		d, err := models.ParseDay(*dayFlag)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
		day = d
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	pool, err := db.NewPostgresPool(ctx, cfg.PostgresDSN, log)
	if err != nil {
		log.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer pool.Close()

	emission, err := settlement.NewConfigEmission(cfg.EDayFixed, cfg.DefaultEDay)
	if err != nil {
		log.Fatal("invalid emission config", zap.Error(err))
	}

	miningService := services.NewMiningService(repositories.NewUserRepo(pool), repositories.NewMiningRepo(pool), nil, cfg, log)
	settlementService := services.NewSettlementService(
		miningService,
		repositories.NewPoolRepo(pool),
		repositories.NewClaimableRepo(pool),
		emission,
		repositories.NewAuditRepo(pool),
		events.Nop{},
		cfg,
		log,
	)

	res, err := settlementService.Settle(ctx, day)
	if err != nil {
		log.Fatal("settlement failed", zap.String("day", models.FormatDay(day)), zap.Error(err))
	}
	fmt.Printf("settled %s: e_day=%s total_points=%d users=%d frozen=%d\n",
		models.FormatDay(res.Day), res.EDay, res.TotalPoints, res.Users, res.Frozen)
}
