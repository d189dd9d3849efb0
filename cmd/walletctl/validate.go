package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"walletcat/internal/catalog"
	"walletcat/internal/services/references"
)

func newValidateCmd() *cobra.Command {
	var strict bool
	cmd := &cobra.Command{
		Use:   "validate [dir]",
		Short: "Load a data directory and report validation issues",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := dataDir
			if len(args) == 1 {
				dir = args[0]
			}
			snap, issues, err := catalog.NewLoader(dir, logger).Load(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, is := range issues {
				fmt.Fprintln(out, is.String())
			}

			table, err := references.LoadFallbackFile(filepath.Join(dir, catalog.FallbacksFile))
			if err != nil {
				return err
			}
			errs := issues.Errors()
			fmt.Fprintf(out, "%d wallets, %d entities, %d fallbacks: %d errors, %d warnings\n",
				len(snap.Wallets), len(snap.Entities), table.Len(), len(errs), len(issues)-len(errs))

			if len(errs) > 0 {
				return fmt.Errorf("%w: %d errors", catalog.ErrInvalid, len(errs))
			}
			if strict && len(issues) > 0 {
				return fmt.Errorf("%d warnings with --strict", len(issues))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "treat warnings as failures")
	return cmd
}
