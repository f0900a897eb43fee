package reclaim

import (
	"context"
	"fmt"

	"github.com/AlexZinkM/rent-collector/internal/common"
	"github.com/AlexZinkM/rent-collector/internal/model"
	"github.com/AlexZinkM/rent-collector/internal/retry"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"
)

// Scanner finds how much rent each wallet's token accounts hold.
type Scanner struct {
	net    Network
	opts   Options
	logger *zap.Logger
}

// NewScanner creates a scanner over net.
func NewScanner(net Network, opts Options, logger *zap.Logger) *Scanner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scanner{net: net, opts: opts.withDefaults(logger), logger: logger}
}

// ScanAll scans records in order, pausing after every batch.
func (s *Scanner) ScanAll(ctx context.Context, records []*model.KeyRecord, onProgress ProgressFunc) error {
	total := len(records)
	batches := (total + s.opts.BatchSize - 1) / s.opts.BatchSize
	s.logger.Info("analyzing wallets for token accounts with rent", zap.Int("wallets", total))

	for start := 0; start < total; start += s.opts.BatchSize {
		end := min(start+s.opts.BatchSize, total)
		s.logger.Debug("processing batch",
			zap.Int("batch", start/s.opts.BatchSize+1),
			zap.Int("batches", batches))

		for i := start; i < end; i++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			s.ScanRecord(ctx, records[i], i, total, onProgress)
		}

		// Add delay between batches to avoid rate limiting
		if end < total {
			if err := s.opts.Sleep(ctx, s.opts.BatchPause); err != nil {
				return err
			}
		}
	}

	closable := 0
	for _, r := range records {
		if r.Closable {
			closable++
		}
	}
	s.logger.Info("scan finished", zap.Int("wallets", total), zap.Int("wallets_with_rent", closable))
	return nil
}

// ScanRecord fills in the balance fields of record. Any failure is logged and
// leaves the record with nothing reclaimable; it never aborts the batch.
func (s *Scanner) ScanRecord(ctx context.Context, record *model.KeyRecord, index, total int, onProgress ProgressFunc) *model.KeyRecord {
	wallet := record.PublicKey.String()
	onProgress.emit(model.ProgressEvent{
		Phase:   model.PhaseScan,
		Current: index + 1,
		Total:   total,
		Wallet:  wallet,
		Status:  statusChecking,
	})

	record.ReclaimableAmount = 0
	record.Closable = false

	if err := s.scan(ctx, record); err != nil {
		s.logger.Warn("failed to scan wallet",
			zap.Int("wallet_index", index+1),
			zap.String("wallet", wallet),
			zap.Error(err))
	}

	ev := model.ProgressEvent{
		Phase:   model.PhaseScan,
		Current: index + 1,
		Total:   total,
		Wallet:  wallet,
		Status:  statusNoRent,
	}
	if record.Closable {
		ev.Status = statusFound(record.ReclaimableAmount)
		ev.Found = record.ReclaimableAmount
	}
	onProgress.emit(ev)
	return record
}

func (s *Scanner) scan(ctx context.Context, record *model.KeyRecord) error {
	// Add small delay to avoid overwhelming the RPC
	if err := s.opts.Sleep(ctx, s.opts.RecordDelay); err != nil {
		return err
	}

	balance, err := retry.WithRetry(ctx, s.opts.Retry, func(ctx context.Context) (uint64, error) {
		return s.net.GetBalance(ctx, record.PublicKey)
	})
	if err != nil {
		return err
	}
	record.NativeBalance = balance

	accounts, err := s.TokenAccounts(ctx, record.PublicKey)
	if err != nil {
		return err
	}

	var total uint64
	closable := 0
	for i := range accounts {
		acc := &accounts[i]
		if acc.Data == nil {
			continue
		}

		rentExempt, err := retry.WithRetry(ctx, s.opts.Retry, func(ctx context.Context) (uint64, error) {
			return s.net.GetMinimumBalanceForRentExemption(ctx, uint64(len(acc.Data)))
		})
		if err != nil {
			return fmt.Errorf("failed to get rent exemption for %s: %w", acc.Address, err)
		}
		acc.RentExempt = rentExempt
		// closing returns the whole balance, not just the part above rent exemption
		acc.Closable = model.IsClosable(acc.Lamports)

		s.logger.Debug("token account",
			zap.String("account", acc.Address.String()),
			zap.String("program", string(acc.Program)),
			zap.String("balance_sol", common.LamportsToSOL(acc.Lamports)),
			zap.String("rent_exempt_sol", common.LamportsToSOL(rentExempt)),
			zap.Bool("closable", acc.Closable))

		if acc.Closable {
			total += acc.Lamports
			closable++
		}
	}

	record.ReclaimableAmount = total
	record.Closable = total > 0
	if record.Closable {
		s.logger.Info("wallet has rent to collect",
			zap.String("wallet", record.PublicKey.String()),
			zap.Int("token_accounts", closable),
			zap.String("rent_sol", common.LamportsToSOL(total)))
	}
	return nil
}

// TokenAccounts lists owner's token accounts under every supported program,
// legacy first, keeping each account's program variant.
func (s *Scanner) TokenAccounts(ctx context.Context, owner solana.PublicKey) ([]model.TokenAccount, error) {
	return listTokenAccounts(ctx, s.net, s.opts.Retry, owner)
}

func listTokenAccounts(ctx context.Context, net Network, policy retry.Policy, owner solana.PublicKey) ([]model.TokenAccount, error) {
	var accounts []model.TokenAccount
	for _, variant := range model.ProgramVariants {
		found, err := retry.WithRetry(ctx, policy, func(ctx context.Context) ([]model.TokenAccount, error) {
			return net.GetTokenAccountsByOwner(ctx, owner, variant)
		})
		if err != nil {
			return accounts, fmt.Errorf("failed to get %s accounts: %w", variant, err)
		}
		for i := range found {
			found[i].Program = variant
		}
		accounts = append(accounts, found...)
	}
	return accounts, nil
}
