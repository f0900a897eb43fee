package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newKeysCommand(ctx *commandContext) *cobra.Command {
	keysCmd := &cobra.Command{
		Use:   "keys",
		Short: "Inspect wallet key files",
	}

	var paths []string
	checkCmd := &cobra.Command{
		Use:   "check",
		Short: "Parse key files and report what would be loaded",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ring, reports, err := ctx.loadKeys(paths)
			if err != nil {
				return err
			}
			defer ring.Clear()
			fmt.Fprint(cmd.OutOrStdout(), renderLoadReports(reports))
			return nil
		},
	}
	checkCmd.Flags().StringArrayVarP(&paths, "keys", "k", nil, "Key file to load (repeatable)")

	keysCmd.AddCommand(checkCmd)
	return keysCmd
}
