package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/tumo-mining/backend/internal/apperr"
	"github.com/tumo-mining/backend/internal/config"
	"github.com/tumo-mining/backend/internal/events"
	"github.com/tumo-mining/backend/internal/models"
	"github.com/tumo-mining/backend/internal/settlement"
	"github.com/tumo-mining/backend/internal/solana"
)

const claimablesListLimit = 90

type ClaimService struct {
	users      UserStore
	claimables ClaimableStore
	builder    TransferBuilder // nil: mint/treasury не настроены
	audit      AuditLogger
	publisher  events.Publisher
	cfg        *config.Config
	log        *zap.Logger
}

func NewClaimService(
	users UserStore,
	claimables ClaimableStore,
	builder TransferBuilder,
	audit AuditLogger,
	publisher events.Publisher,
	cfg *config.Config,
	log *zap.Logger,
) *ClaimService {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &ClaimService{
		users:      users,
		claimables: claimables,
		builder:    builder,
		audit:      audit,
		publisher:  publisher,
		cfg:        cfg,
		log:        log,
	}
}

type PrepareResult struct {
	Transaction string          `json:"transaction"` // base64, user signature slot empty
	Day         time.Time       `json:"day"`
	Amount      decimal.Decimal `json:"amount"`
	BaseUnits   uint64          `json:"base_units"`
	CreatesATA  bool            `json:"creates_ata"`
}

// Prepare builds the claim transfer for (wallet, day). It changes no state;
// calling it twice yields two transactions of which at most one can confirm.
func (s *ClaimService) Prepare(ctx context.Context, wallet string, day time.Time) (*PrepareResult, error) {
	day = models.DayOf(day)

	user, err := s.user(ctx, wallet)
	if err != nil {
		return nil, err
	}

	c, err := s.claimables.Get(ctx, day, user.ID)
	if err != nil {
		if isNotFound(err) {
			return nil, apperr.ErrNoClaimable
		}
		return nil, apperr.Upstream("failed to get claimable", err)
	}
	if !models.IsValidClaimTransition(c.State(), models.ClaimStatePrepared) {
		return nil, apperr.ErrAlreadyClaimed
	}

	units, err := settlement.BaseUnits(c.Amount, s.cfg.Decimals)
	if err != nil {
		return nil, apperr.Upstream("invalid claimable amount", err)
	}
	if units == 0 {
		return nil, apperr.Wrap(apperr.ErrNoClaimable, errors.New("amount rounds to zero"))
	}

	if s.builder == nil {
		return nil, apperr.Upstream("claim transfer unavailable", solana.ErrNotConfigured)
	}
	tr, err := s.builder.Build(ctx, wallet, units)
	if err != nil {
		return nil, apperr.Upstream("failed to build claim transaction", err)
	}

	s.logAudit(ctx, user.ID, models.AuditClaimPrepared, day, map[string]any{
		"amount":      c.Amount.String(),
		"base_units":  units,
		"creates_ata": tr.CreatesATA,
	})
	_ = s.publisher.Publish(ctx, events.Stream, events.Event{
		Type:    events.EventClaimPrepared,
		Wallet:  wallet,
		Payload: map[string]any{"day": models.FormatDay(day), "amount": c.Amount.String()},
	})

	return &PrepareResult{
		Transaction: tr.Base64,
		Day:         day,
		Amount:      c.Amount,
		BaseUnits:   units,
		CreatesATA:  tr.CreatesATA,
	}, nil
}

type ConfirmResult struct {
	Day              time.Time `json:"day"`
	Sig              string    `json:"sig"`
	AlreadyConfirmed bool      `json:"already_confirmed"`
}

// Confirm marks (wallet, day) claimed and records sig. Repeating it with the
// same sig succeeds without changes; another sig is a conflict.
//
// The signature is not looked up on chain.
func (s *ClaimService) Confirm(ctx context.Context, wallet string, day time.Time, sig string) (*ConfirmResult, error) {
	day = models.DayOf(day)
	if !solana.ValidTxSignature(sig) {
		return nil, apperr.Validation("invalid sig")
	}

	user, err := s.user(ctx, wallet)
	if err != nil {
		return nil, err
	}

	outcome, err := s.claimables.Finalize(ctx, user.ID, day, sig)
	if err != nil {
		return nil, apperr.Upstream("failed to finalize claim", err)
	}

	switch outcome {
	case models.FinalizeApplied:
	case models.FinalizeDuplicate:
		return &ConfirmResult{Day: day, Sig: sig, AlreadyConfirmed: true}, nil
	case models.FinalizeConflict:
		return nil, apperr.ErrAlreadyClaimed
	default:
		return nil, apperr.ErrNoClaimable
	}

	s.logAudit(ctx, user.ID, models.AuditClaimConfirmed, day, map[string]any{"sig": sig})
	_ = s.publisher.Publish(ctx, events.Stream, events.Event{
		Type:    events.EventClaimConfirmed,
		Wallet:  wallet,
		Payload: map[string]any{"day": models.FormatDay(day), "sig": sig},
	})

	s.log.Info("claim confirmed",
		zap.String("wallet", wallet),
		zap.String("day", models.FormatDay(day)),
		zap.String("sig", sig),
	)
	return &ConfirmResult{Day: day, Sig: sig}, nil
}

// ListClaimables returns the wallet's most recent days, newest first.
func (s *ClaimService) ListClaimables(ctx context.Context, wallet string) ([]models.Claimable, error) {
	user, err := s.users.GetByWallet(ctx, wallet)
	if err != nil {
		if isNotFound(err) {
			return []models.Claimable{}, nil
		}
		return nil, apperr.Upstream("failed to get user", err)
	}

	list, err := s.claimables.ListByUser(ctx, user.ID, claimablesListLimit)
	if err != nil {
		return nil, apperr.Upstream("failed to list claimables", err)
	}
	return list, nil
}

type ClaimStatus struct {
	Day    time.Time        `json:"day"`
	State  string           `json:"state"`
	Amount *decimal.Decimal `json:"amount,omitempty"`
	Sig    string           `json:"sig,omitempty"`
}

func (s *ClaimService) Status(ctx context.Context, wallet string, day time.Time) (*ClaimStatus, error) {
	day = models.DayOf(day)
	status := &ClaimStatus{Day: day, State: models.ClaimStateUnclaimable}

	user, err := s.users.GetByWallet(ctx, wallet)
	if err != nil {
		if isNotFound(err) {
			return status, nil
		}
		return nil, apperr.Upstream("failed to get user", err)
	}

	c, err := s.claimables.Get(ctx, day, user.ID)
	if err != nil {
		if isNotFound(err) {
			return status, nil
		}
		return nil, apperr.Upstream("failed to get claimable", err)
	}
	status.State = c.State()
	status.Amount = &c.Amount

	if c.Claimed {
		claim, err := s.claimables.GetClaim(ctx, user.ID, day)
		if err != nil && !isNotFound(err) {
			return nil, apperr.Upstream("failed to get claim", err)
		}
		if claim != nil {
			status.Sig = claim.Sig
		}
	}
	return status, nil
}

func (s *ClaimService) user(ctx context.Context, wallet string) (*models.User, error) {
	if wallet == "" {
		return nil, apperr.Validation("wallet required")
	}
	user, err := s.users.GetByWallet(ctx, wallet)
	if err != nil {
		if isNotFound(err) {
			return nil, apperr.ErrUserNotFound
		}
		return nil, apperr.Upstream("failed to get user", err)
	}
	return user, nil
}

func (s *ClaimService) logAudit(ctx context.Context, userID uuid.UUID, action string, day time.Time, meta map[string]any) {
	meta["day"] = models.FormatDay(day)
	err := s.audit.Log(ctx, models.AuditLog{
		ActorUserID: &userID,
		ActorType:   "user",
		Action:      action,
		EntityType:  "claimable",
		EntityKey:   models.FormatDay(day) + ":" + userID.String(),
		Meta:        meta,
	})
	if err != nil {
		s.log.Warn("failed to write audit log", zap.String("action", action), zap.Error(err))
	}
}
