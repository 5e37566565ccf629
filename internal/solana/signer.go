package solana

import (
	"context"
	"fmt"

	sol "github.com/gagliardetto/solana-go"
)

// Signer is the treasury authority. Implementations may live behind a KMS or
// HSM; callers only ever see the public key and signatures.
type Signer interface {
	PublicKey() sol.PublicKey
	Sign(ctx context.Context, message []byte) (sol.Signature, error)
}

// KeypairSigner signs with an in-process ed25519 keypair.
type KeypairSigner struct {
	key sol.PrivateKey
}

// NewKeypairSigner parses a base58 64-byte secret key.
func NewKeypairSigner(secretBase58 string) (*KeypairSigner, error) {
	key, err := sol.PrivateKeyFromBase58(secretBase58)
	if err != nil {
		return nil, fmt.Errorf("invalid treasury secret: %w", err)
	}
	if len(key) != 64 {
		return nil, fmt.Errorf("invalid treasury secret size: %d", len(key))
	}
	return &KeypairSigner{key: key}, nil
}

func (s *KeypairSigner) PublicKey() sol.PublicKey {
	return s.key.PublicKey()
}

func (s *KeypairSigner) Sign(_ context.Context, message []byte) (sol.Signature, error) {
	return s.key.Sign(message)
}
