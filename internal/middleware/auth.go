package middleware

import (
	"crypto/subtle"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/tumo-mining/backend/internal/auth"
	"github.com/tumo-mining/backend/internal/config"
)

const (
	CtxUserID = "user_id"
	CtxWallet = "wallet"
)

// AuthMiddleware accepts a SIWS session token. With AUTH_REQUIRED unset a
// missing header passes through and handlers trust the wallet in the body.
func AuthMiddleware(cfg *config.Config, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			if !cfg.AuthRequired {
				return c.Next()
			}
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "missing authorization header"})
		}

		tokenStr := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenStr == authHeader {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid authorization format"})
		}

		claims, err := auth.ParseJWT(cfg.JWTSecret, tokenStr)
		if err != nil {
			log.Debug("jwt parse error", zap.Error(err))
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid or expired token"})
		}

		c.Locals(CtxUserID, claims.UserID)
		c.Locals(CtxWallet, claims.Wallet)

		return c.Next()
	}
}

// GetWallet returns the authenticated wallet, empty for anonymous requests.
func GetWallet(c *fiber.Ctx) string {
	w, _ := c.Locals(CtxWallet).(string)
	return w
}

// WalletAllowed reports whether the request may act for wallet.
func WalletAllowed(c *fiber.Ctx, wallet string) bool {
	authed := GetWallet(c)
	return authed == "" || authed == wallet
}

// RequireSession rejects anonymous requests regardless of AUTH_REQUIRED. It
// runs after AuthMiddleware.
func RequireSession() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if GetWallet(c) == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "session token required"})
		}
		return c.Next()
	}
}

// CronSecretMiddleware guards the settlement trigger with X-Cron-Secret.
// An empty secret leaves the route open.
func CronSecretMiddleware(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if secret == "" {
			return c.Next()
		}
		got := c.Get("X-Cron-Secret")
		if subtle.ConstantTimeCompare([]byte(got), []byte(secret)) != 1 {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid cron secret"})
		}
		return c.Next()
	}
}
