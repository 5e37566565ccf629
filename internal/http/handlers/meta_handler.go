package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/tumo-mining/backend/internal/config"
	"github.com/tumo-mining/backend/internal/http/dto"
)

type MetaHandler struct {
	cfg *config.Config
}

func NewMetaHandler(cfg *config.Config) *MetaHandler {
	return &MetaHandler{cfg: cfg}
}

// Token GET /meta/token
func (h *MetaHandler) Token(c *fiber.Ctx) error {
	resp := dto.TokenMetaResponse{
		Mint:     h.cfg.TokenMint,
		Decimals: h.cfg.Decimals,
		EDay:     h.cfg.DefaultEDay,
	}
	if h.cfg.EDayFixed != "" && h.cfg.EDayFixed != "0" {
		resp.EDay = h.cfg.EDayFixed
		resp.Fixed = true
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: resp})
}
