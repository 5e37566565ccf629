package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/tumo-mining/backend/internal/http/dto"
	"github.com/tumo-mining/backend/internal/middleware"
	"github.com/tumo-mining/backend/internal/models"
	"github.com/tumo-mining/backend/internal/services"
)

type Claimer interface {
	Prepare(ctx context.Context, wallet string, day time.Time) (*services.PrepareResult, error)
	Confirm(ctx context.Context, wallet string, day time.Time, sig string) (*services.ConfirmResult, error)
	ListClaimables(ctx context.Context, wallet string) ([]models.Claimable, error)
	Status(ctx context.Context, wallet string, day time.Time) (*services.ClaimStatus, error)
}

type ClaimHandler struct {
	claims Claimer
	log    *zap.Logger
}

func NewClaimHandler(claims Claimer, log *zap.Logger) *ClaimHandler {
	return &ClaimHandler{claims: claims, log: log}
}

// Prepare отдаёт base64 транзакцию, подписанную казной.
// POST /claim/prepare
func (h *ClaimHandler) Prepare(c *fiber.Ctx) error {
	var req dto.PrepareClaimRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "bad body")
	}
	if !middleware.WalletAllowed(c, req.Wallet) {
		return forbiddenWallet(c)
	}
	day, err := models.ParseDay(req.Day)
	if err != nil {
		return badRequest(c, err.Error())
	}

	res, err := h.claims.Prepare(c.Context(), req.Wallet, day)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.SendString(res.Transaction)
}

// Confirm POST /claim/confirm
func (h *ClaimHandler) Confirm(c *fiber.Ctx) error {
	var req dto.ConfirmClaimRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "bad body")
	}
	if !middleware.WalletAllowed(c, req.Wallet) {
		return forbiddenWallet(c)
	}
	day, err := models.ParseDay(req.Day)
	if err != nil {
		return badRequest(c, err.Error())
	}

	res, err := h.claims.Confirm(c.Context(), req.Wallet, day, req.Sig)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: res})
}

// List GET /claimables?wallet=
func (h *ClaimHandler) List(c *fiber.Ctx) error {
	wallet := c.Query("wallet", middleware.GetWallet(c))
	if wallet == "" {
		return badRequest(c, "wallet required")
	}

	list, err := h.claims.ListClaimables(c.Context(), wallet)
	if err != nil {
		return respondError(c, h.log, err)
	}

	out := make([]dto.ClaimableResponse, 0, len(list))
	for _, cl := range list {
		out = append(out, dto.ClaimableResponse{
			Day:     models.FormatDay(cl.Day),
			Amount:  cl.Amount,
			Claimed: cl.Claimed,
		})
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: out})
}

// Status GET /claim/status?wallet=&day=
func (h *ClaimHandler) Status(c *fiber.Ctx) error {
	wallet := c.Query("wallet", middleware.GetWallet(c))
	if wallet == "" {
		return badRequest(c, "wallet required")
	}
	day, err := models.ParseDay(c.Query("day"))
	if err != nil {
		return badRequest(c, err.Error())
	}

	st, err := h.claims.Status(c.Context(), wallet, day)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: st})
}
