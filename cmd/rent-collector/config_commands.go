package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/AlexZinkM/rent-collector/internal/config"
	"github.com/AlexZinkM/rent-collector/internal/store"

	"github.com/skip2/go-qrcode"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the RPC endpoint and the fee payer",
	}
	configCmd.AddCommand(newConfigShowCommand(ctx))
	configCmd.AddCommand(newConfigSetRPCCommand(ctx))
	configCmd.AddCommand(newConfigSetFeePayerCommand(ctx))
	configCmd.AddCommand(newConfigGenerateFeePayerCommand(ctx))
	configCmd.AddCommand(newConfigClearFeePayerCommand(ctx))
	configCmd.AddCommand(newConfigRekeyCommand(ctx))
	return configCmd
}

func newConfigShowCommand(ctx *commandContext) *cobra.Command {
	var showQR bool
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := ctx.settings()
			if err != nil {
				return err
			}
			rpcURL, err := settings.RPCURL(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			feePayer := "not set"
			address, err := settings.FeePayerAddress(cmd.Context())
			switch {
			case err == nil:
				feePayer = address.String()
			case !errors.Is(err, store.ErrNotSet):
				return err
			}

			fmt.Fprint(out, renderTable(
				[]string{"Setting", "Value"},
				[][]string{
					{"Store", config.GetStorePath()},
					{"RPC URL", rpcURL},
					{"Fee payer", feePayer},
				},
				nil,
				nil,
			))
			fmt.Fprintln(out)

			if showQR && err == nil {
				return printQRCode(out, address.String())
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&showQR, "qr", false, "Print the fee payer address as a QR code for funding it")
	return cmd
}

func newConfigSetRPCCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "set-rpc <url>",
		Short: "Set the Solana RPC endpoint",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := ctx.settings()
			if err != nil {
				return err
			}
			if err := settings.SetRPCURL(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "RPC URL set to %s\n", strings.TrimSpace(args[0]))
			return nil
		},
	}
}

func newConfigSetFeePayerCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "set-fee-payer",
		Short: "Store the fee payer private key, encrypted with a password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := ctx.settings()
			if err != nil {
				return err
			}
			secret, err := ctx.promptSecret("Enter fee payer private key: ")
			if err != nil {
				return err
			}
			defer clear(secret)
			password, err := ctx.promptNewPassword("Enter store password: ")
			if err != nil {
				return err
			}
			defer clear(password)

			address, err := settings.SetFeePayer(cmd.Context(), string(secret), password)
			if err != nil {
				return err
			}
			ctx.log().Info("fee payer updated", zap.String("address", address.String()))
			fmt.Fprintf(cmd.OutOrStdout(), "Fee payer set: %s\n", address)
			return nil
		},
	}
}

func newConfigGenerateFeePayerCommand(ctx *commandContext) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "generate-fee-payer",
		Short: "Create a new fee payer keypair and store it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := ctx.settings()
			if err != nil {
				return err
			}
			has, err := settings.HasFeePayer(cmd.Context())
			if err != nil {
				return err
			}
			if has && !force {
				return errors.New("a fee payer is already set, use --force to replace it")
			}

			password, err := ctx.promptNewPassword("Enter store password: ")
			if err != nil {
				return err
			}
			defer clear(password)

			address, err := settings.GenerateFeePayer(cmd.Context(), password)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Fee payer generated: %s\nFund it with SOL before running.\n", address)
			return printQRCode(out, address.String())
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Replace an existing fee payer")
	return cmd
}

func newConfigClearFeePayerCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear-fee-payer",
		Short: "Remove the stored fee payer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := ctx.settings()
			if err != nil {
				return err
			}
			if err := settings.ClearFeePayer(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Fee payer cleared")
			return nil
		},
	}
}

func newConfigRekeyCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "rekey",
		Short: "Re-encrypt the stored fee payer with a new password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := ctx.settings()
			if err != nil {
				return err
			}
			oldPassword, err := ctx.promptPassword("Enter current password: ")
			if err != nil {
				return err
			}
			defer clear(oldPassword)
			newPassword, err := ctx.promptNewPassword("Enter new password: ")
			if err != nil {
				return err
			}
			defer clear(newPassword)

			if err := settings.RekeyFeePayer(cmd.Context(), oldPassword, newPassword); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Fee payer re-encrypted")
			return nil
		},
	}
}

func printQRCode(w io.Writer, address string) error {
	qr, err := qrcode.New(address, qrcode.Medium)
	if err != nil {
		return fmt.Errorf("failed to create QR code: %w", err)
	}
	var b strings.Builder
	for _, row := range qr.Bitmap() {
		for _, dark := range row {
			if dark {
				b.WriteString("\u2588\u2588")
			} else {
				b.WriteString("  ")
			}
		}
		b.WriteString("\n")
	}
	_, err = fmt.Fprint(w, b.String())
	return err
}
