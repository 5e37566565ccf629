package http

import (
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/tumo-mining/backend/internal/config"
	"github.com/tumo-mining/backend/internal/http/handlers"
	"github.com/tumo-mining/backend/internal/middleware"
)

type Handlers struct {
	Auth   *handlers.AuthHandler
	Mining *handlers.MiningHandler
	Claim  *handlers.ClaimHandler
	Settle *handlers.SettleHandler
	Meta   *handlers.MetaHandler
	WS     *handlers.WSHub
}

func SetupRouter(
	app *fiber.App,
	cfg *config.Config,
	log *zap.Logger,
	rdb *redis.Client,
	h Handlers,
) {
	// Global middleware
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Request-ID, X-Cron-Secret",
	}))
	app.Use(middleware.RequestIDMiddleware())
	app.Use(middleware.LoggerMiddleware(log))

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api/v1")

	// Settlement trigger (cron)
	cron := api.Group("/cron", middleware.CronSecretMiddleware(cfg.CronSecret))
	cron.Get("/settle", h.Settle.Settle)
	cron.Post("/settle", h.Settle.Settle)

	// Rate-limited public endpoints
	api.Use(middleware.RateLimitMiddleware(rdb, cfg.RateLimitPerMinute, time.Minute))

	// SIWS
	api.Get("/siws/nonce", h.Auth.Nonce)
	api.Post("/siws/verify", h.Auth.Verify)

	// Meta
	api.Get("/meta/token", h.Meta.Token)

	// Wallet scoped; a bearer wallet must match the request wallet
	wallet := api.Group("", middleware.AuthMiddleware(cfg, log))

	wallet.Post("/mine/tick", h.Mining.Tick)
	wallet.Get("/mine/stats", h.Mining.Stats)

	wallet.Post("/claim/prepare", h.Claim.Prepare)
	// confirm needs a session even with AUTH_REQUIRED off
	wallet.Post("/claim/confirm", middleware.RequireSession(), h.Claim.Confirm)
	wallet.Get("/claim/status", h.Claim.Status)
	wallet.Get("/claimables", h.Claim.List)

	// WebSocket
	app.Use("/ws", handlers.WSUpgradeMiddleware())
	app.Get("/ws", websocket.New(h.WS.HandleWS))
}
