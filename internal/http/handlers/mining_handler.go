package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/tumo-mining/backend/internal/http/dto"
	"github.com/tumo-mining/backend/internal/middleware"
	"github.com/tumo-mining/backend/internal/models"
	"github.com/tumo-mining/backend/internal/services"
)

type TickRecorder interface {
	RecordTick(ctx context.Context, wallet string, points int64, reason string) (*models.MiningEvent, error)
	TodayPoints(ctx context.Context, wallet string) (*services.DayPoints, error)
}

type MiningHandler struct {
	mining TickRecorder
	log    *zap.Logger
}

func NewMiningHandler(mining TickRecorder, log *zap.Logger) *MiningHandler {
	return &MiningHandler{mining: mining, log: log}
}

// Tick POST /mine/tick
func (h *MiningHandler) Tick(c *fiber.Ctx) error {
	var req dto.TickRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "bad body")
	}
	if !middleware.WalletAllowed(c, req.Wallet) {
		return forbiddenWallet(c)
	}

	if _, err := h.mining.RecordTick(c.Context(), req.Wallet, req.Points, models.ReasonTimer); err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true})
}

// Stats GET /mine/stats?wallet=
func (h *MiningHandler) Stats(c *fiber.Ctx) error {
	wallet := c.Query("wallet", middleware.GetWallet(c))
	if wallet == "" {
		return badRequest(c, "wallet required")
	}

	today, err := h.mining.TodayPoints(c.Context(), wallet)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.MiningStatsResponse{
		Wallet: wallet,
		Day:    models.FormatDay(today.Day),
		Points: today.Points,
	})
}
