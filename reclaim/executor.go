package reclaim

import (
	"context"
	"fmt"

	"github.com/AlexZinkM/rent-collector/internal/common"
	"github.com/AlexZinkM/rent-collector/internal/model"
	"github.com/AlexZinkM/rent-collector/internal/retry"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/token"
	"go.uber.org/zap"
)

// Executor closes token accounts and sends their lamports to a destination.
// The fee payer pays for and co-signs every transaction.
type Executor struct {
	net      Network
	feePayer solana.PrivateKey
	opts     Options
	logger   *zap.Logger
}

// NewExecutor returns ErrFeePayerNotSet when feePayer is empty.
func NewExecutor(net Network, feePayer solana.PrivateKey, opts Options, logger *zap.Logger) (*Executor, error) {
	if len(feePayer) == 0 {
		return nil, ErrFeePayerNotSet
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Executor{
		net:      net,
		feePayer: feePayer,
		opts:     opts.withDefaults(logger),
		logger:   logger,
	}, nil
}

// CloseAccount closes one token account owned by owner. Failures are reported
// in the outcome, never returned.
func (e *Executor) CloseAccount(ctx context.Context, account solana.PublicKey, owner *model.KeyRecord, destination solana.PublicKey) model.ReclaimOutcome {
	outcome := model.ReclaimOutcome{
		Owner:   owner.PublicKey,
		Account: account,
	}

	amount, sig, err := e.closeAccount(ctx, account, owner, destination)
	if err != nil {
		e.logger.Warn("failed to close token account",
			zap.String("account", account.String()),
			zap.String("owner", owner.PublicKey.String()),
			zap.Error(err))
		outcome.Error = err.Error()
		return outcome
	}

	e.logger.Info("closed token account",
		zap.String("account", account.String()),
		zap.String("signature", sig.String()),
		zap.String("recovered_sol", common.LamportsToSOL(amount)))
	outcome.Success = true
	outcome.AmountRecovered = amount
	outcome.Signature = sig.String()
	return outcome
}

func (e *Executor) closeAccount(ctx context.Context, account solana.PublicKey, owner *model.KeyRecord, destination solana.PublicKey) (uint64, solana.Signature, error) {
	// Fresh state, the scan may be stale
	info, err := retry.WithRetry(ctx, e.opts.Retry, func(ctx context.Context) (*model.AccountInfo, error) {
		return e.net.GetAccountInfo(ctx, account)
	})
	if err != nil {
		return 0, solana.Signature{}, fmt.Errorf("failed to get account info: %w", err)
	}
	if info == nil {
		return 0, solana.Signature{}, ErrAccountNotFound
	}
	variant, ok := model.VariantForOwner(info.Owner)
	if !ok {
		return 0, solana.Signature{}, fmt.Errorf("%w: %s", ErrUnknownProgram, info.Owner)
	}

	instructions, err := buildCloseInstructions(variant, account, owner.PublicKey, destination, info.Data)
	if err != nil {
		return 0, solana.Signature{}, err
	}

	type blockhash struct {
		hash      solana.Hash
		lastValid uint64
	}
	recent, err := retry.WithRetry(ctx, e.opts.Retry, func(ctx context.Context) (blockhash, error) {
		hash, lastValid, err := e.net.GetLatestBlockhash(ctx)
		return blockhash{hash: hash, lastValid: lastValid}, err
	})
	if err != nil {
		return 0, solana.Signature{}, fmt.Errorf("failed to get recent blockhash: %w", err)
	}

	feePayerKey := e.feePayer.PublicKey()
	tx, err := solana.NewTransaction(
		instructions,
		recent.hash,
		solana.TransactionPayer(feePayerKey),
	)
	if err != nil {
		return 0, solana.Signature{}, fmt.Errorf("failed to create transaction: %w", err)
	}

	_, err = tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		switch {
		case key.Equals(feePayerKey):
			return &e.feePayer
		case key.Equals(owner.PublicKey):
			return &owner.Secret
		}
		return nil
	})
	if err != nil {
		return 0, solana.Signature{}, fmt.Errorf("failed to sign transaction: %w", err)
	}

	sig, err := retry.WithRetry(ctx, e.opts.Retry, func(ctx context.Context) (solana.Signature, error) {
		return e.net.SendAndConfirmTransaction(ctx, tx, recent.lastValid)
	})
	if err != nil {
		return 0, solana.Signature{}, fmt.Errorf("failed to send transaction: %w", err)
	}
	return info.Lamports, sig, nil
}

// buildCloseInstructions returns close, preceded by a burn of the whole token
// balance when the account still holds tokens.
func buildCloseInstructions(variant model.ProgramVariant, account, owner, destination solana.PublicKey, data []byte) ([]solana.Instruction, error) {
	var instructions []solana.Instruction

	if amount := model.TokenAmount(data); amount > 0 {
		mint, ok := model.Mint(data)
		if !ok {
			return nil, fmt.Errorf("failed to read mint of %s", account)
		}
		burn, err := forProgram(variant, token.NewBurnInstruction(
			amount,
			account, // source
			mint,
			owner,
			[]solana.PublicKey{},
		).Build())
		if err != nil {
			return nil, fmt.Errorf("failed to build burn instruction: %w", err)
		}
		instructions = append(instructions, burn)
	}

	closeIx, err := forProgram(variant, token.NewCloseAccountInstruction(
		account,
		destination,
		owner,
		[]solana.PublicKey{},
	).Build())
	if err != nil {
		return nil, fmt.Errorf("failed to build close instruction: %w", err)
	}
	return append(instructions, closeIx), nil
}

// forProgram retargets a token instruction at the variant's program.
// Burn and CloseAccount share their layout across both programs.
func forProgram(variant model.ProgramVariant, ix *token.Instruction) (solana.Instruction, error) {
	if variant == model.ProgramLegacy {
		return ix, nil
	}
	data, err := ix.Data()
	if err != nil {
		return nil, err
	}
	return solana.NewInstruction(variant.ProgramID(), ix.Accounts(), data), nil
}

// ReclaimRecord closes every closable token account of record. Accounts are
// enumerated again so balances that changed since the scan are honoured.
func (e *Executor) ReclaimRecord(ctx context.Context, record *model.KeyRecord, index, total int, destination solana.PublicKey, summary *model.BatchSummary, onProgress ProgressFunc) error {
	wallet := record.PublicKey.String()
	onProgress.emit(model.ProgressEvent{
		Phase:   model.PhaseReclaim,
		Current: index + 1,
		Total:   total,
		Wallet:  wallet,
		Status:  statusProcessing,
	})

	accounts, err := listTokenAccounts(ctx, e.net, e.opts.Retry, record.PublicKey)
	if err != nil {
		e.logger.Warn("failed to list token accounts",
			zap.String("wallet", wallet),
			zap.Error(err))
		onProgress.emit(model.ProgressEvent{
			Phase:   model.PhaseReclaim,
			Current: index + 1,
			Total:   total,
			Wallet:  wallet,
			Status:  statusFailed(wallet, err.Error()),
		})
		return e.opts.Sleep(ctx, e.opts.CloseDelay)
	}

	for _, acc := range accounts {
		if !model.IsClosable(acc.Lamports) {
			e.logger.Debug("skipping token account below dust threshold",
				zap.String("account", acc.Address.String()),
				zap.Uint64("lamports", acc.Lamports))
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		outcome := e.CloseAccount(ctx, acc.Address, record, destination)
		summary.Add(outcome)

		ev := model.ProgressEvent{
			Phase:   model.PhaseReclaim,
			Current: index + 1,
			Total:   total,
			Wallet:  wallet,
		}
		if outcome.Success {
			ev.Status = statusCollected(outcome.AmountRecovered)
			ev.Reclaimed = outcome.AmountRecovered
		} else {
			ev.Status = statusFailed(acc.Address.String(), outcome.Error)
		}
		onProgress.emit(ev)

		if err := e.opts.Sleep(ctx, e.opts.CloseDelay); err != nil {
			return err
		}
	}
	return nil
}
