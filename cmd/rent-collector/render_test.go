package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/AlexZinkM/rent-collector/internal/model"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
)

func TestRenderSummary(t *testing.T) {
	owner := solana.NewWallet().PublicKey()
	summary := &model.BatchSummary{RunID: "run-42", Destination: solana.NewWallet().PublicKey(), TotalWallets: 3}
	summary.Add(model.ReclaimOutcome{Owner: owner, Success: true, AmountRecovered: 2039280})
	summary.Add(model.ReclaimOutcome{Owner: owner, Error: "blockhash not found"})

	out := renderSummary(summary, &fiatEstimate{Currency: "usd", Value: "0.31"})
	assert.Contains(t, out, "run-42")
	assert.Contains(t, out, "0.002039280")
	assert.Contains(t, out, "≈ 0.31 USD")
	assert.Contains(t, out, "blockhash not found")

	out = renderSummary(&model.BatchSummary{RunID: "empty"}, nil)
	assert.NotContains(t, out, "≈")
	assert.NotContains(t, out, "Token account")
}

func TestProgressPrinterPlain(t *testing.T) {
	var buf bytes.Buffer
	p := newProgressPrinter(&buf)
	wallet := "7xKXtg2CW87d97TXJSDpbD5jBkheTqA83TZRuJosgAsU"

	p.handle(model.ProgressEvent{Phase: model.PhaseReclaim, Current: 1, Total: 2, Wallet: wallet, Status: "Processing token accounts..."})
	p.handle(model.ProgressEvent{Phase: model.PhaseReclaim, Current: 1, Total: 2, Wallet: wallet, Status: "Collected 0.5 SOL", Reclaimed: 500000000})
	p.handle(model.ProgressEvent{Phase: model.PhaseReclaim, Current: 2, Total: 2, Wallet: wallet, Status: "Collected 0.25 SOL", Reclaimed: 250000000})
	p.done()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, 3)
	assert.Equal(t, "[reclaim 1/2] 7xKX...gAsU  Processing token accounts...", lines[0])
	assert.True(t, strings.HasSuffix(lines[2], "(total 0.75 SOL)"))
	assert.NotContains(t, buf.String(), "\r")
}
