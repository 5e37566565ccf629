package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/tumo-mining/backend/internal/apperr"
	"github.com/tumo-mining/backend/internal/http/dto"
	"github.com/tumo-mining/backend/internal/middleware"
)

func requestID(c *fiber.Ctx) string {
	id, _ := c.Locals(middleware.CtxRequestID).(string)
	return id
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: msg, RequestID: requestID(c)})
}

func forbiddenWallet(c *fiber.Ctx) error {
	return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Error: "wallet does not match session", RequestID: requestID(c)})
}

// respondError maps service errors to status codes; upstream causes are only
// logged.
func respondError(c *fiber.Ctx, log *zap.Logger, err error) error {
	status := apperr.HTTPStatus(err)
	if status >= fiber.StatusInternalServerError {
		log.Error("request failed",
			zap.String("request_id", requestID(c)),
			zap.String("path", c.Path()),
			zap.Error(err),
		)
	}
	return c.Status(status).JSON(dto.ErrorResponse{
		Error:     apperr.PublicMessage(err),
		RequestID: requestID(c),
	})
}
