package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/AlexZinkM/rent-collector/internal/client"
	"github.com/AlexZinkM/rent-collector/internal/common"
	"github.com/AlexZinkM/rent-collector/internal/config"
	"github.com/AlexZinkM/rent-collector/internal/store"
	"github.com/AlexZinkM/rent-collector/reclaim"

	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newScanCommand(ctx *commandContext) *cobra.Command {
	var paths []string
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Find token accounts with rent without closing anything",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ring, reports, err := ctx.loadKeys(paths)
			if err != nil {
				return err
			}
			defer ring.Clear()
			out := cmd.OutOrStdout()
			fmt.Fprint(out, renderLoadReports(reports))

			settings, err := ctx.settings()
			if err != nil {
				return err
			}
			rpcURL, err := settings.RPCURL(cmd.Context())
			if err != nil {
				return err
			}

			records := ring.Records()
			progress := newProgressPrinter(cmd.ErrOrStderr())
			scanner := reclaim.NewScanner(ctx.newNetwork(rpcURL), ctx.options(), ctx.log())
			err = scanner.ScanAll(cmd.Context(), records, progress.handle)
			progress.done()
			if err != nil {
				if summary != nil {
					reclaim.LogSummary(logger, summary)
				}
				return err
			}

			fmt.Fprint(out, renderScan(records))
			return nil
		},
	}
	cmd.Flags().StringArrayVarP(&paths, "keys", "k", nil, "Key file to load (repeatable)")
	return cmd
}

func newRunCommand(ctx *commandContext) *cobra.Command {
	var (
		paths       []string
		destination string
		fiat        string
		asJSON      bool
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Scan wallets and collect rent into the destination",
		Long: "Scans every wallet from the key files, closes each token account holding rent and\n" +
			"sends the lamports to the destination (the fee payer unless --destination is given).",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var dest solana.PublicKey
			if destination != "" {
				var err error
				dest, err = solana.PublicKeyFromBase58(destination)
				if err != nil {
					return fmt.Errorf("invalid destination: %w", err)
				}
			}

			settings, err := ctx.settings()
			if err != nil {
				return err
			}
			has, err := settings.HasFeePayer(cmd.Context())
			if err != nil {
				return err
			}
			if !has {
				return fmt.Errorf("%w: set one with `rent-collector config set-fee-payer`", reclaim.ErrFeePayerNotSet)
			}

			ring, reports, err := ctx.loadKeys(paths)
			if err != nil {
				return err
			}
			defer ring.Clear()
			out := cmd.OutOrStdout()
			if !asJSON {
				fmt.Fprint(out, renderLoadReports(reports))
			}

			password, err := ctx.promptPassword("Enter store password: ")
			if err != nil {
				return err
			}
			feePayer, err := settings.FeePayer(cmd.Context(), password)
			clear(password)
			if errors.Is(err, store.ErrNotSet) {
				return reclaim.ErrFeePayerNotSet
			}
			if err != nil {
				return err
			}
			defer clear(feePayer)

			lock, err := store.AcquireRunLock(config.GetStorePath())
			if err != nil {
				return err
			}
			defer lock.Release()

			rpcURL, err := settings.RPCURL(cmd.Context())
			if err != nil {
				return err
			}

			logger := ctx.log()
			progress := newProgressPrinter(cmd.ErrOrStderr())
			pipeline := reclaim.NewPipeline(ctx.newNetwork(rpcURL), ctx.options(), logger)
			summary, err := pipeline.Run(cmd.Context(), &reclaim.Run{
				Records:     ring.Records(),
				FeePayer:    feePayer,
				Destination: dest,
			}, progress.handle)
			progress.done()
			if err != nil {
				if summary != nil {
					reclaim.LogSummary(logger, summary)
				}
				return err
			}

			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(summary)
			}

			var estimate *fiatEstimate
			if fiat != "" && summary.TotalAmountRecovered > 0 {
				rate, err := client.NewCoinGeckoClient().GetSOLRate(cmd.Context(), fiat)
				if err != nil {
					logger.Warn("failed to get SOL price", zap.String("currency", fiat), zap.Error(err))
				} else if value, err := common.FiatValue(summary.TotalAmountRecovered, rate); err == nil {
					estimate = &fiatEstimate{Currency: fiat, Value: value}
				}
			}
			fmt.Fprint(out, renderSummary(summary, estimate))
			return nil
		},
	}
	cmd.Flags().StringArrayVarP(&paths, "keys", "k", nil, "Key file to load (repeatable)")
	cmd.Flags().StringVarP(&destination, "destination", "d", "", "Address that receives the rent (default: fee payer)")
	cmd.Flags().StringVar(&fiat, "fiat", "", "Also show the recovered amount in this currency, e.g. usd")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the summary as JSON")
	return cmd
}
