package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/tumo-mining/backend/internal/http/dto"
	"github.com/tumo-mining/backend/internal/models"
	"github.com/tumo-mining/backend/internal/services"
)

type Settler interface {
	Settle(ctx context.Context, day time.Time) (*services.SettleResult, error)
}

type SettleHandler struct {
	settler Settler
	log     *zap.Logger
	now     func() time.Time
}

func NewSettleHandler(settler Settler, log *zap.Logger) *SettleHandler {
	return &SettleHandler{settler: settler, log: log, now: time.Now}
}

// Settle GET|POST /cron/settle?day=YYYY-MM-DD, по умолчанию вчера (UTC).
func (h *SettleHandler) Settle(c *fiber.Ctx) error {
	day := models.PreviousDay(h.now())
	if q := c.Query("day"); q != "" {
		d, err := models.ParseDay(q)
		if err != nil {
			return badRequest(c, err.Error())
		}
		day = d
	}

	res, err := h.settler.Settle(c.Context(), day)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.SettleResponse{
		OK:     true,
		Day:    models.FormatDay(day),
		Result: res,
	})
}
