package middleware

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tumo-mining/backend/internal/auth"
	"github.com/tumo-mining/backend/internal/config"
)

func newAuthApp(cfg *config.Config) *fiber.App {
	app := fiber.New()
	app.Use(RequestIDMiddleware())
	app.Get("/", AuthMiddleware(cfg, zap.NewNop()), func(c *fiber.Ctx) error {
		return c.SendString(GetWallet(c))
	})
	return app
}

func TestAuthMiddleware(t *testing.T) {
	token, err := auth.GenerateJWT("secret", uuid.New(), "WalletA", time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name     string
		required bool
		header   string
		want     int
	}{
		{"anonymous allowed", false, "", fiber.StatusOK},
		{"anonymous rejected", true, "", fiber.StatusUnauthorized},
		{"valid token", true, "Bearer " + token, fiber.StatusOK},
		{"no bearer prefix", true, token, fiber.StatusUnauthorized},
		{"garbage token even when optional", false, "Bearer nope", fiber.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newAuthApp(&config.Config{JWTSecret: "secret", AuthRequired: tt.required})
			req := httptest.NewRequest("GET", "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.StatusCode)
			assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
		})
	}
}

func TestRequireSession(t *testing.T) {
	token, err := auth.GenerateJWT("secret", uuid.New(), "WalletA", time.Hour)
	require.NoError(t, err)

	app := fiber.New()
	cfg := &config.Config{JWTSecret: "secret"}
	app.Post("/confirm", AuthMiddleware(cfg, zap.NewNop()), RequireSession(), func(c *fiber.Ctx) error {
		return c.SendString(GetWallet(c))
	})

	// optional auth still lets anonymous callers through AuthMiddleware
	resp, err := app.Test(httptest.NewRequest("POST", "/confirm", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	req := httptest.NewRequest("POST", "/confirm", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestCronSecretMiddleware(t *testing.T) {
	app := fiber.New()
	app.Get("/open", CronSecretMiddleware(""), func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })
	app.Get("/closed", CronSecretMiddleware("s3cret"), func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	resp, err := app.Test(httptest.NewRequest("GET", "/open", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/closed", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	req := httptest.NewRequest("GET", "/closed", nil)
	req.Header.Set("X-Cron-Secret", "s3cret")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestRateLimitWithoutRedisPassesThrough(t *testing.T) {
	app := fiber.New()
	app.Get("/", RateLimitMiddleware(nil, 1, time.Minute), func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	for i := 0; i < 3; i++ {
		resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	app := fiber.New()
	app.Use(RequestIDMiddleware())
	app.Get("/", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("X-Request-ID", "client-id-1")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, "client-id-1", resp.Header.Get("X-Request-ID"))

	req = httptest.NewRequest("GET", "/", nil)
	req.Header.Set("X-Request-ID", strings.Repeat("x", 200))
	resp, err = app.Test(req)
	require.NoError(t, err)
	_, err = uuid.Parse(resp.Header.Get("X-Request-ID"))
	assert.NoError(t, err, "oversized id should be replaced")
}
