package solana

import (
	"crypto/ed25519"
	"fmt"

	"github.com/mr-tron/base58"
)

// ChallengePrefix is prepended to the nonce to form the signed message.
const ChallengePrefix = "Sign-In With Solana: "

// ChallengeMessage returns the exact bytes the wallet is asked to sign.
func ChallengeMessage(nonce string) []byte {
	return []byte(ChallengePrefix + nonce)
}

// DecodePublicKey parses a base58 ed25519 public key.
func DecodePublicKey(pk string) (ed25519.PublicKey, error) {
	raw, err := base58.Decode(pk)
	if err != nil {
		return nil, fmt.Errorf("invalid public key base58: %w", err)
	}
	if len(raw) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("invalid public key size: %d", len(raw))
	}
	return ed25519.PublicKey(raw), nil
}

// VerifyChallenge checks sig over ChallengeMessage(nonce) under pk.
//
// Malformed keys and wrong-length signatures are reported as errors, never
// panics.
func VerifyChallenge(pk string, nonce string, sig []byte) error {
	pub, err := DecodePublicKey(pk)
	if err != nil {
		return err
	}
	if len(sig) != ed25519.SignatureSize {
		return fmt.Errorf("invalid signature size: %d", len(sig))
	}
	if !ed25519.Verify(pub, ChallengeMessage(nonce), sig) {
		return fmt.Errorf("invalid signature")
	}
	return nil
}

// ValidTxSignature reports whether s looks like a base58 transaction signature.
func ValidTxSignature(s string) bool {
	b, err := base58.Decode(s)
	return err == nil && len(b) == ed25519.SignatureSize
}
