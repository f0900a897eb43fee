package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/AlexZinkM/rent-collector/internal/common"
	"github.com/AlexZinkM/rent-collector/internal/keyfile"
	"github.com/AlexZinkM/rent-collector/internal/model"
)

func renderLoadReports(reports []keyfile.LoadReport) string {
	rows := make([][]string, 0, len(reports))
	total := 0
	for _, r := range reports {
		rows = append(rows, []string{
			r.Source,
			strconv.Itoa(r.Added),
			strconv.Itoa(r.Duplicates),
			strconv.Itoa(len(r.ParseErrors)),
			strconv.Itoa(r.OrphanAddresses),
		})
		total = r.Total
	}

	var b strings.Builder
	b.WriteString(renderTable(
		[]string{"Source", "Added", "Duplicates", "Invalid", "Addresses only"},
		rows,
		[]columnAlignment{alignLeft, alignRight, alignRight, alignRight, alignRight},
		[]string{"Wallets", strconv.Itoa(total)},
	))
	b.WriteString("\n")
	for _, r := range reports {
		for _, perr := range r.ParseErrors {
			fmt.Fprintf(&b, "invalid private key: %s line %d\n", perr.Source, perr.Line)
		}
	}
	return b.String()
}

func renderScan(records []*model.KeyRecord) string {
	var rows [][]string
	var total uint64
	for _, r := range records {
		if !r.Closable {
			continue
		}
		rows = append(rows, []string{
			r.PublicKey.String(),
			common.LamportsToSOL(r.NativeBalance),
			common.LamportsToSOL(r.ReclaimableAmount),
		})
		total += r.ReclaimableAmount
	}

	var b strings.Builder
	if len(rows) > 0 {
		b.WriteString(renderTable(
			[]string{"Wallet", "Balance (SOL)", "Rent (SOL)"},
			rows,
			[]columnAlignment{alignLeft, alignRight, alignRight},
			[]string{"Total", "", common.LamportsToSOL(total)},
		))
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "%d of %d wallets have rent to collect\n", len(rows), len(records))
	return b.String()
}

// fiatEstimate is an optional display line added under the summary.
type fiatEstimate struct {
	Currency string
	Value    string
}

func renderSummary(summary *model.BatchSummary, fiat *fiatEstimate) string {
	var b strings.Builder
	b.WriteString(renderTable(
		[]string{"Run", summary.RunID},
		[][]string{
			{"Destination", summary.Destination.String()},
			{"Wallets", strconv.Itoa(summary.TotalWallets)},
			{"Successful", strconv.Itoa(summary.SuccessfulCollections)},
			{"Failed", strconv.Itoa(summary.FailedCollections)},
			{"Recovered (SOL)", common.LamportsToSOL(summary.TotalAmountRecovered)},
		},
		[]columnAlignment{alignLeft, alignRight},
		nil,
	))
	b.WriteString("\n")
	if fiat != nil {
		fmt.Fprintf(&b, "≈ %s %s\n", fiat.Value, strings.ToUpper(fiat.Currency))
	}

	var failed [][]string
	for _, r := range summary.Results {
		if !r.Success {
			failed = append(failed, []string{r.Owner.String(), r.Account.String(), r.Error})
		}
	}
	if len(failed) > 0 {
		b.WriteString(renderTable(
			[]string{"Wallet", "Token account", "Error"},
			failed,
			nil,
			nil,
		))
		b.WriteString("\n")
	}
	return b.String()
}
