package reclaim

import (
	"context"
	"errors"
	"time"

	"github.com/AlexZinkM/rent-collector/internal/model"
	"github.com/AlexZinkM/rent-collector/internal/retry"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"
)

var (
	// ErrFeePayerNotSet is returned before any network call when a run has no fee payer.
	ErrFeePayerNotSet = errors.New("fee payer not set")
	// ErrAccountNotFound means the token account no longer exists.
	ErrAccountNotFound = errors.New("token account not found")
	// ErrUnknownProgram means the account is not owned by a supported token program.
	ErrUnknownProgram = errors.New("account is not owned by a token program")
)

// Network is the subset of the Solana RPC the pipeline depends on.
type Network interface {
	GetBalance(ctx context.Context, owner solana.PublicKey) (uint64, error)
	GetTokenAccountsByOwner(ctx context.Context, owner solana.PublicKey, variant model.ProgramVariant) ([]model.TokenAccount, error)
	GetMinimumBalanceForRentExemption(ctx context.Context, dataSize uint64) (uint64, error)
	// GetAccountInfo returns nil, nil when the account does not exist.
	GetAccountInfo(ctx context.Context, account solana.PublicKey) (*model.AccountInfo, error)
	GetLatestBlockhash(ctx context.Context) (solana.Hash, uint64, error)
	SendAndConfirmTransaction(ctx context.Context, tx *solana.Transaction, lastValidBlockHeight uint64) (solana.Signature, error)
}

// Options controls pacing and retries.
type Options struct {
	BatchSize   int           // wallets per scan batch
	RecordDelay time.Duration // before each wallet scan
	BatchPause  time.Duration // after each full batch
	CloseDelay  time.Duration // after each closure attempt
	Retry       retry.Policy
	Sleep       retry.SleepFunc
}

// DefaultOptions returns the pacing used against public RPC endpoints.
func DefaultOptions() Options {
	return Options{
		BatchSize:   10,
		RecordDelay: 250 * time.Millisecond,
		BatchPause:  1500 * time.Millisecond,
		CloseDelay:  2 * time.Second,
		Retry: retry.Policy{
			MaxAttempts: retry.DefaultMaxAttempts,
			BaseDelay:   retry.DefaultBaseDelay,
		},
	}
}

func (o Options) withDefaults(logger *zap.Logger) Options {
	if o.BatchSize <= 0 {
		o.BatchSize = 10
	}
	if o.Sleep == nil {
		o.Sleep = retry.Sleep
	}
	if o.Retry.Sleep == nil {
		o.Retry.Sleep = o.Sleep
	}
	if o.Retry.Logger == nil {
		o.Retry.Logger = logger
	}
	return o
}
