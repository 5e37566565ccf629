package solana

import (
	"context"
	"errors"
	"time"

	sol "github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

// Ledger is the read side of the chain the claim flow depends on.
type Ledger interface {
	LatestBlockhash(ctx context.Context) (sol.Hash, error)
	AccountExists(ctx context.Context, account sol.PublicKey) (bool, error)
}

type RPCLedger struct {
	client  *rpc.Client
	timeout time.Duration
}

func NewRPCLedger(endpoint string, timeout time.Duration) *RPCLedger {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &RPCLedger{client: rpc.New(endpoint), timeout: timeout}
}

func (l *RPCLedger) LatestBlockhash(ctx context.Context) (sol.Hash, error) {
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	out, err := l.client.GetLatestBlockhash(ctx, rpc.CommitmentConfirmed)
	if err != nil {
		return sol.Hash{}, err
	}
	if out == nil || out.Value == nil {
		return sol.Hash{}, errors.New("empty latest blockhash response")
	}
	return out.Value.Blockhash, nil
}

func (l *RPCLedger) AccountExists(ctx context.Context, account sol.PublicKey) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	_, err := l.client.GetAccountInfoWithOpts(ctx, account, &rpc.GetAccountInfoOpts{
		Commitment: rpc.CommitmentConfirmed,
	})
	if errors.Is(err, rpc.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
