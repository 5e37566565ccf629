package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/tumo-mining/backend/internal/config"
	"github.com/tumo-mining/backend/internal/db"
	"github.com/tumo-mining/backend/internal/events"
	apphttp "github.com/tumo-mining/backend/internal/http"
	"github.com/tumo-mining/backend/internal/http/handlers"
	"github.com/tumo-mining/backend/internal/nonce"
	"github.com/tumo-mining/backend/internal/repositories"
	"github.com/tumo-mining/backend/internal/services"
	"github.com/tumo-mining/backend/internal/settlement"
	"github.com/tumo-mining/backend/internal/solana"
	"github.com/tumo-mining/backend/migrations"
)

func main() {
	log, _ := zap.NewProduction()
	defer log.Sync()

	cfg := config.Load()
	cfg.Validate(log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Database
	pool, err := db.NewPostgresPool(ctx, cfg.PostgresDSN, log)
	if err != nil {
		log.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer pool.Close()

	// Run migrations
	if err := db.RunMigrations(ctx, pool, migrations.FS, log); err != nil {
		log.Fatal("failed to run migrations", zap.Error(err))
	}

	// Redis
	rdb, err := db.NewRedisClient(ctx, cfg.RedisURL, log)
	if err != nil {
		log.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer rdb.Close()

	// Repositories
	userRepo := repositories.NewUserRepo(pool)
	miningRepo := repositories.NewMiningRepo(pool)
	poolRepo := repositories.NewPoolRepo(pool)
	claimableRepo := repositories.NewClaimableRepo(pool)
	auditRepo := repositories.NewAuditRepo(pool)

	// Events
	publisher := events.NewRedisPublisher(rdb, log)
	subscriber := events.NewRedisSubscriber(rdb, log)

	// Nonces
	var nonces nonce.Store
	if cfg.UseRedisNonces() {
		nonces = nonce.NewRedisStore(rdb, cfg.NonceTTL)
	} else {
		log.Warn("using in-memory nonces, verify must hit the instance that issued the nonce")
		nonces = nonce.NewMemoryStore(cfg.NonceTTL)
	}

	// Emission
	emission, err := settlement.NewConfigEmission(cfg.EDayFixed, cfg.DefaultEDay)
	if err != nil {
		log.Fatal("invalid emission config", zap.Error(err))
	}

	// Solana transfer builder; без него prepare отвечает 500
	var builder services.TransferBuilder
	if b, err := newTransferBuilder(cfg); err != nil {
		log.Warn("claim transfers disabled", zap.Error(err))
	} else {
		builder = b
	}

	// Services
	authService := services.NewAuthService(nonces, userRepo, auditRepo, cfg, log)
	if !cfg.UseRedisTickGuard() {
		log.Warn("using in-memory tick guard, the interval is enforced per instance")
	}
	tickGuard := services.NewTickGuard(cfg, rdb)
	miningService := services.NewMiningService(userRepo, miningRepo, tickGuard, cfg, log)
	settlementService := services.NewSettlementService(miningService, poolRepo, claimableRepo, emission, auditRepo, publisher, cfg, log)
	claimService := services.NewClaimService(userRepo, claimableRepo, builder, auditRepo, publisher, cfg, log)

	// Handlers
	h := apphttp.Handlers{
		Auth:   handlers.NewAuthHandler(authService, log),
		Mining: handlers.NewMiningHandler(miningService, log),
		Claim:  handlers.NewClaimHandler(claimService, log),
		Settle: handlers.NewSettleHandler(settlementService, log),
		Meta:   handlers.NewMetaHandler(cfg),
		WS:     handlers.NewWSHub(cfg, miningService, subscriber, log),
	}

	// Start WS hub
	h.WS.Start(ctx)

	// Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{"error": err.Error()})
		},
	})

	apphttp.SetupRouter(app, cfg, log, rdb, h)

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")
		cancel()
		_ = app.Shutdown()
	}()

	addr := fmt.Sprintf(":%s", cfg.APIPort)
	log.Info("starting API server", zap.String("addr", addr))
	if err := app.Listen(addr); err != nil {
		log.Fatal("server error", zap.Error(err))
	}
}

func newTransferBuilder(cfg *config.Config) (*solana.TransferBuilder, error) {
	if cfg.TreasurySecret == "" {
		return nil, solana.ErrNotConfigured
	}
	signer, err := solana.NewKeypairSigner(cfg.TreasurySecret)
	if err != nil {
		return nil, err
	}
	ledger := solana.NewRPCLedger(cfg.RPCURL, cfg.RPCTimeout)
	return solana.NewTransferBuilder(ledger, signer, cfg.TokenMint, cfg.TreasuryATA)
}
