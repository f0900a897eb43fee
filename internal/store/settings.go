package store

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/AlexZinkM/rent-collector/internal/crypto"
	"github.com/AlexZinkM/rent-collector/internal/keyfile"

	"github.com/gagliardetto/solana-go"
)

// Settings is the typed view over the persisted configuration.
type Settings struct {
	kv          KV
	fallbackRPC string
}

// NewSettings wraps kv. fallbackRPC is returned when no endpoint was saved.
func NewSettings(kv KV, fallbackRPC string) *Settings {
	return &Settings{kv: kv, fallbackRPC: fallbackRPC}
}

// RPCURL returns the saved endpoint or the fallback.
func (s *Settings) RPCURL(ctx context.Context) (string, error) {
	value, err := s.kv.Get(ctx, KeyRPCURL)
	if errors.Is(err, ErrNotSet) {
		return s.fallbackRPC, nil
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

// SetRPCURL validates and saves the endpoint.
func (s *Settings) SetRPCURL(ctx context.Context, rawURL string) error {
	rawURL = strings.TrimSpace(rawURL)
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid RPC URL %q: must be http(s)://host", rawURL)
	}
	return s.kv.Set(ctx, KeyRPCURL, rawURL)
}

// HasFeePayer reports whether a fee payer secret is stored.
func (s *Settings) HasFeePayer(ctx context.Context) (bool, error) {
	_, err := s.kv.Get(ctx, KeyFeePayerSecret)
	if errors.Is(err, ErrNotSet) {
		return false, nil
	}
	return err == nil, err
}

// FeePayerAddress returns the stored fee payer's address without opening the secret.
// Returns ErrNotSet when none is stored.
func (s *Settings) FeePayerAddress(ctx context.Context) (solana.PublicKey, error) {
	envelope, err := s.kv.Get(ctx, KeyFeePayerSecret)
	if err != nil {
		return solana.PublicKey{}, err
	}
	address, err := crypto.EnvelopeAddress(envelope)
	if err != nil {
		return solana.PublicKey{}, err
	}
	return solana.PublicKeyFromBase58(address)
}

// FeePayer opens the stored fee payer key. Returns ErrNotSet when none is stored.
// password must be []byte for security (caller should zero it after use)
func (s *Settings) FeePayer(ctx context.Context, password []byte) (solana.PrivateKey, error) {
	envelope, err := s.kv.Get(ctx, KeyFeePayerSecret)
	if err != nil {
		return nil, err
	}
	raw, err := crypto.OpenSecret(envelope, password)
	if err != nil {
		return nil, fmt.Errorf("failed to open fee payer secret: %w", err)
	}
	return solana.PrivateKey(raw), nil
}

// SetFeePayer validates a base58 secret and stores it sealed under password.
func (s *Settings) SetFeePayer(ctx context.Context, secret string, password []byte) (solana.PublicKey, error) {
	key, err := keyfile.ParseSecret(strings.TrimSpace(secret))
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("invalid private key format: %w", err)
	}
	defer clear(key)

	envelope, err := crypto.SealSecret(key.PublicKey().String(), key, password)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("failed to seal fee payer secret: %w", err)
	}
	if err := s.kv.Set(ctx, KeyFeePayerSecret, envelope); err != nil {
		return solana.PublicKey{}, err
	}
	return key.PublicKey(), nil
}

// GenerateFeePayer creates a new fee payer keypair and stores it.
func (s *Settings) GenerateFeePayer(ctx context.Context, password []byte) (solana.PublicKey, error) {
	wallet := solana.NewWallet()
	defer clear(wallet.PrivateKey)
	return s.SetFeePayer(ctx, wallet.PrivateKey.String(), password)
}

// RekeyFeePayer re-seals the stored secret under a new password.
func (s *Settings) RekeyFeePayer(ctx context.Context, oldPassword, newPassword []byte) error {
	envelope, err := s.kv.Get(ctx, KeyFeePayerSecret)
	if err != nil {
		return err
	}
	resealed, err := crypto.Reseal(envelope, oldPassword, newPassword)
	if err != nil {
		return fmt.Errorf("failed to reseal fee payer secret: %w", err)
	}
	return s.kv.Set(ctx, KeyFeePayerSecret, resealed)
}

// ClearFeePayer removes the stored fee payer.
func (s *Settings) ClearFeePayer(ctx context.Context) error {
	return s.kv.Remove(ctx, KeyFeePayerSecret)
}
