package solana

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	sol "github.com/gagliardetto/solana-go"
	associatedtokenaccount "github.com/gagliardetto/solana-go/programs/associated-token-account"
	"github.com/gagliardetto/solana-go/programs/token"
)

// ErrNotConfigured is returned when mint, treasury or signer are missing.
var ErrNotConfigured = errors.New("token transfer is not configured")

type TransferBuilder struct {
	ledger      Ledger
	signer      Signer
	mint        sol.PublicKey
	treasuryATA sol.PublicKey
}

// NewTransferBuilder wires a treasury -> user SPL transfer factory. mint and
// treasuryATA are base58 addresses.
func NewTransferBuilder(ledger Ledger, signer Signer, mint, treasuryATA string) (*TransferBuilder, error) {
	if ledger == nil || signer == nil || mint == "" || treasuryATA == "" {
		return nil, ErrNotConfigured
	}
	m, err := sol.PublicKeyFromBase58(mint)
	if err != nil {
		return nil, fmt.Errorf("invalid mint: %w", err)
	}
	t, err := sol.PublicKeyFromBase58(treasuryATA)
	if err != nil {
		return nil, fmt.Errorf("invalid treasury ATA: %w", err)
	}
	return &TransferBuilder{ledger: ledger, signer: signer, mint: m, treasuryATA: t}, nil
}

// Transfer is a prepared, partially signed claim transaction.
type Transfer struct {
	Base64       string
	UserATA      sol.PublicKey
	CreatesATA   bool
	Blockhash    sol.Hash
	TreasurySign sol.Signature
}

// Build creates the user's associated token account when missing, then moves
// amount base units from the treasury. The user pays fees and must add the
// final signature; the treasury authority signs here. Nothing is broadcast.
func (b *TransferBuilder) Build(ctx context.Context, wallet string, amount uint64) (*Transfer, error) {
	user, err := sol.PublicKeyFromBase58(wallet)
	if err != nil {
		return nil, fmt.Errorf("invalid wallet: %w", err)
	}

	userATA, _, err := sol.FindAssociatedTokenAddress(user, b.mint)
	if err != nil {
		return nil, fmt.Errorf("derive user ATA: %w", err)
	}

	exists, err := b.ledger.AccountExists(ctx, userATA)
	if err != nil {
		return nil, fmt.Errorf("get user ATA: %w", err)
	}

	var instructions []sol.Instruction
	if !exists {
		instructions = append(instructions,
			associatedtokenaccount.NewCreateInstruction(user, user, b.mint).Build())
	}
	instructions = append(instructions,
		token.NewTransferInstruction(amount, b.treasuryATA, userATA, b.signer.PublicKey(), nil).Build())

	blockhash, err := b.ledger.LatestBlockhash(ctx)
	if err != nil {
		return nil, fmt.Errorf("get latest blockhash: %w", err)
	}

	tx, err := sol.NewTransaction(instructions, blockhash, sol.TransactionPayer(user))
	if err != nil {
		return nil, fmt.Errorf("build transaction: %w", err)
	}

	treasurySig, err := b.coSign(ctx, tx)
	if err != nil {
		return nil, err
	}

	raw, err := tx.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("serialize transaction: %w", err)
	}

	return &Transfer{
		Base64:       base64.StdEncoding.EncodeToString(raw),
		UserATA:      userATA,
		CreatesATA:   !exists,
		Blockhash:    blockhash,
		TreasurySign: treasurySig,
	}, nil
}

// coSign fills the treasury slot and leaves the other required slots zeroed.
func (b *TransferBuilder) coSign(ctx context.Context, tx *sol.Transaction) (sol.Signature, error) {
	msg, err := tx.Message.MarshalBinary()
	if err != nil {
		return sol.Signature{}, fmt.Errorf("serialize message: %w", err)
	}

	required := int(tx.Message.Header.NumRequiredSignatures)
	authority := b.signer.PublicKey()
	slot := -1
	for i := 0; i < required && i < len(tx.Message.AccountKeys); i++ {
		if tx.Message.AccountKeys[i].Equals(authority) {
			slot = i
			break
		}
	}
	if slot < 0 {
		return sol.Signature{}, fmt.Errorf("treasury authority %s is not a signer", authority)
	}

	sig, err := b.signer.Sign(ctx, msg)
	if err != nil {
		return sol.Signature{}, fmt.Errorf("treasury sign: %w", err)
	}

	tx.Signatures = make([]sol.Signature, required)
	tx.Signatures[slot] = sig
	return sig, nil
}
