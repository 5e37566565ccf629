package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LoggerMiddleware logs each request: 5xx at error level, successful ticks at
// debug.
func LoggerMiddleware(log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		status := c.Response().StatusCode()
		level := zapcore.InfoLevel
		switch {
		case status >= fiber.StatusInternalServerError:
			level = zapcore.ErrorLevel
		case status < fiber.StatusBadRequest && c.Path() == "/api/v1/mine/tick":
			level = zapcore.DebugLevel
		}

		reqID, _ := c.Locals(CtxRequestID).(string)
		if ce := log.Check(level, "request"); ce != nil {
			ce.Write(
				zap.String("request_id", reqID),
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.Int("status", status),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", c.IP()),
				zap.String("wallet", GetWallet(c)),
			)
		}

		return err
	}
}
