package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/tumo-mining/backend/internal/http/dto"
	"github.com/tumo-mining/backend/internal/services"
)

type Authenticator interface {
	IssueNonce(ctx context.Context, publicKey string) (string, error)
	Verify(ctx context.Context, publicKey, nonce string, sig []byte) (*services.VerifyResult, error)
}

type AuthHandler struct {
	auth Authenticator
	log  *zap.Logger
}

func NewAuthHandler(auth Authenticator, log *zap.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, log: log}
}

// Nonce выдаёт challenge для Sign-In With Solana.
// GET /siws/nonce?pk=
func (h *AuthHandler) Nonce(c *fiber.Ctx) error {
	n, err := h.auth.IssueNonce(c.Context(), c.Query("pk"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.SendString(n)
}

// Verify проверяет подпись и выдаёт JWT.
// POST /siws/verify
func (h *AuthHandler) Verify(c *fiber.Ctx) error {
	var req dto.VerifyRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	res, err := h.auth.Verify(c.Context(), req.PK, req.Nonce, req.Sig)
	if err != nil {
		return respondError(c, h.log, err)
	}

	return c.JSON(dto.VerifyResponse{
		OK:    true,
		Token: res.Token,
		User:  res.User,
	})
}
