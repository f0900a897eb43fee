package model

import (
	"github.com/gagliardetto/solana-go"
)

// ReclaimOutcome is the result of one attempted token account closure.
type ReclaimOutcome struct {
	Owner           solana.PublicKey `json:"owner"`
	Account         solana.PublicKey `json:"account"`
	Success         bool             `json:"success"`
	AmountRecovered uint64           `json:"amountRecovered"`
	Signature       string           `json:"signature,omitempty"`
	Error           string           `json:"error,omitempty"`
}

// BatchSummary aggregates the outcomes of one run.
// SuccessfulCollections + FailedCollections equals len(Results).
type BatchSummary struct {
	RunID                 string           `json:"runId"`
	Destination           solana.PublicKey `json:"destination"`
	TotalWallets          int              `json:"totalWallets"`
	SuccessfulCollections int              `json:"successfulCollections"`
	FailedCollections     int              `json:"failedCollections"`
	TotalAmountRecovered  uint64           `json:"totalAmountRecovered"`
	Results               []ReclaimOutcome `json:"results"`
}

// Add records an outcome. Only successful outcomes count toward the recovered total.
func (s *BatchSummary) Add(outcome ReclaimOutcome) {
	s.Results = append(s.Results, outcome)
	if outcome.Success {
		s.SuccessfulCollections++
		s.TotalAmountRecovered += outcome.AmountRecovered
		return
	}
	s.FailedCollections++
}

// Attempts returns the number of closures attempted.
func (s *BatchSummary) Attempts() int {
	return s.SuccessfulCollections + s.FailedCollections
}
