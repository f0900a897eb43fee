package client

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/AlexZinkM/rent-collector/internal/model"
	"github.com/AlexZinkM/rent-collector/internal/retry"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

const defaultPollInterval = 500 * time.Millisecond

// SolanaClient is a client for working with Solana RPC
type SolanaClient struct {
	rpcClient    *rpc.Client
	rpcURL       string
	pollInterval time.Duration
}

// NewSolanaClient creates a new Solana client for the given endpoint.
func NewSolanaClient(rpcURL string) *SolanaClient {
	return &SolanaClient{
		rpcClient:    rpc.New(rpcURL),
		rpcURL:       rpcURL,
		pollInterval: defaultPollInterval,
	}
}

// RPCURL returns the endpoint the client talks to.
func (c *SolanaClient) RPCURL() string {
	return c.rpcURL
}

// GetBalance gets the SOL balance in lamports
func (c *SolanaClient) GetBalance(ctx context.Context, owner solana.PublicKey) (uint64, error) {
	balance, err := c.rpcClient.GetBalance(ctx, owner, rpc.CommitmentConfirmed)
	if err != nil {
		return 0, classify("get SOL balance", err)
	}
	return balance.Value, nil
}

// GetTokenAccountsByOwner lists the token accounts owner holds under one token program.
func (c *SolanaClient) GetTokenAccountsByOwner(ctx context.Context, owner solana.PublicKey, variant model.ProgramVariant) ([]model.TokenAccount, error) {
	programID := variant.ProgramID()
	out, err := c.rpcClient.GetTokenAccountsByOwner(
		ctx,
		owner,
		&rpc.GetTokenAccountsConfig{ProgramId: &programID},
		&rpc.GetTokenAccountsOpts{
			Encoding:   solana.EncodingBase64,
			Commitment: rpc.CommitmentConfirmed,
		},
	)
	if err != nil {
		return nil, classify(fmt.Sprintf("get %s accounts", variant), err)
	}

	accounts := make([]model.TokenAccount, 0, len(out.Value))
	for _, ta := range out.Value {
		if ta == nil {
			continue
		}
		var data []byte
		if ta.Account.Data != nil {
			data = ta.Account.Data.GetBinary()
		}
		accounts = append(accounts, model.TokenAccount{
			Address:  ta.Pubkey,
			Program:  variant,
			Lamports: ta.Account.Lamports,
			Data:     data,
		})
	}
	return accounts, nil
}

// GetMinimumBalanceForRentExemption gets the lamports an account of dataSize needs to be rent exempt
func (c *SolanaClient) GetMinimumBalanceForRentExemption(ctx context.Context, dataSize uint64) (uint64, error) {
	lamports, err := c.rpcClient.GetMinimumBalanceForRentExemption(ctx, dataSize, rpc.CommitmentConfirmed)
	if err != nil {
		return 0, classify("get rent exemption", err)
	}
	return lamports, nil
}

// GetAccountInfo fetches fresh account state. Returns nil, nil when the account does not exist.
func (c *SolanaClient) GetAccountInfo(ctx context.Context, account solana.PublicKey) (*model.AccountInfo, error) {
	out, err := c.rpcClient.GetAccountInfoWithOpts(ctx, account, &rpc.GetAccountInfoOpts{
		Encoding:   solana.EncodingBase64,
		Commitment: rpc.CommitmentConfirmed,
	})
	if err != nil {
		if isAccountNotFoundError(err) {
			return nil, nil
		}
		return nil, classify("get account info", err)
	}
	if out == nil || out.Value == nil {
		return nil, nil
	}

	info := &model.AccountInfo{
		Owner:    out.Value.Owner,
		Lamports: out.Value.Lamports,
	}
	if out.Value.Data != nil {
		info.Data = out.Value.Data.GetBinary()
	}
	return info, nil
}

// GetLatestBlockhash returns a recent blockhash and the last block height it stays valid for
func (c *SolanaClient) GetLatestBlockhash(ctx context.Context) (solana.Hash, uint64, error) {
	recent, err := c.rpcClient.GetLatestBlockhash(ctx, rpc.CommitmentFinalized)
	if err != nil {
		return solana.Hash{}, 0, classify("get recent blockhash", err)
	}
	return recent.Value.Blockhash, recent.Value.LastValidBlockHeight, nil
}

// SendAndConfirmTransaction submits a signed transaction and waits until it is confirmed,
// fails, or its blockhash expires. Resubmitting an already landed transaction is safe.
func (c *SolanaClient) SendAndConfirmTransaction(ctx context.Context, tx *solana.Transaction, lastValidBlockHeight uint64) (solana.Signature, error) {
	sig, err := c.rpcClient.SendTransactionWithOpts(
		ctx,
		tx,
		rpc.TransactionOpts{
			SkipPreflight:       false, // Transaction validation before node
			PreflightCommitment: rpc.CommitmentConfirmed,
		},
	)
	if err != nil {
		if !isAlreadyProcessedError(err) || len(tx.Signatures) == 0 {
			return solana.Signature{}, classify("send transaction", err)
		}
		sig = tx.Signatures[0]
	}

	for {
		statuses, err := c.rpcClient.GetSignatureStatuses(ctx, false, sig)
		if err != nil {
			return sig, classify("get signature status", err)
		}
		if len(statuses.Value) > 0 && statuses.Value[0] != nil {
			status := statuses.Value[0]
			if status.Err != nil {
				return sig, fmt.Errorf("transaction %s failed: %v", sig, status.Err)
			}
			if status.ConfirmationStatus == rpc.ConfirmationStatusConfirmed ||
				status.ConfirmationStatus == rpc.ConfirmationStatusFinalized {
				return sig, nil
			}
		}

		height, err := c.rpcClient.GetBlockHeight(ctx, rpc.CommitmentConfirmed)
		if err != nil {
			return sig, classify("get block height", err)
		}
		if height > lastValidBlockHeight {
			return sig, fmt.Errorf("transaction %s was not confirmed before its blockhash expired", sig)
		}

		if err := retry.Sleep(ctx, c.pollInterval); err != nil {
			return sig, err
		}
	}
}

// classify wraps an RPC error, marking rate-limit responses so they can be retried
func classify(op string, err error) error {
	if retry.IsRateLimited(err) && !errors.Is(err, retry.ErrRateLimited) {
		return fmt.Errorf("failed to %s: %w: %w", op, retry.ErrRateLimited, err)
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}

// isAccountNotFoundError checks if error indicates that the account doesn't exist
func isAccountNotFoundError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, rpc.ErrNotFound) {
		return true
	}
	errStr := err.Error()
	return strings.Contains(errStr, "could not find account") ||
		strings.Contains(errStr, "not found")
}

func isAlreadyProcessedError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "already been processed")
}
