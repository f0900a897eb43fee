package keyfile

import (
	"crypto/ed25519"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"
)

// Length bounds of base58 strings, used to tell secrets from addresses.
const (
	SecretMinLen   = 80
	SecretMaxLen   = 90
	PublicIDMinLen = 40
	PublicIDMaxLen = 50
)

// Kind is the classification of a candidate string
type Kind int

const (
	KindUnknown Kind = iota
	KindSecret
	KindPublicID
)

func (k Kind) String() string {
	switch k {
	case KindSecret:
		return "secret"
	case KindPublicID:
		return "public-id"
	}
	return "unknown"
}

// Classify decides by encoded length whether s looks like a secret or a public id.
func Classify(s string) Kind {
	n := len(s)
	switch {
	case n >= SecretMinLen && n <= SecretMaxLen:
		return KindSecret
	case n >= PublicIDMinLen && n <= PublicIDMaxLen:
		return KindPublicID
	}
	return KindUnknown
}

var errKeyMismatch = errors.New("public half does not match seed")

// ParseSecret decodes a base58 secret into a full 64-byte keypair,
// checking that the embedded public key belongs to the seed.
func ParseSecret(s string) (solana.PrivateKey, error) {
	raw, err := base58.Decode(s)
	if err != nil {
		return nil, fmt.Errorf("invalid base58: %w", err)
	}
	if len(raw) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("invalid secret length: expected %d bytes, got %d", ed25519.PrivateKeySize, len(raw))
	}

	derived := ed25519.NewKeyFromSeed(raw[:ed25519.SeedSize])
	defer clear(derived)
	if !ed25519.PublicKey(raw[ed25519.SeedSize:]).Equal(derived.Public()) {
		return nil, errKeyMismatch
	}
	return solana.PrivateKey(raw), nil
}

// ValidateSecret reports whether s decodes into a well-formed key.
func ValidateSecret(s string) bool {
	key, err := ParseSecret(s)
	if err != nil {
		return false
	}
	clear(key)
	return true
}
