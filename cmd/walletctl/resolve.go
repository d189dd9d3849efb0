package main

import (
	"context"
	"encoding/json"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"walletcat/internal/catalog"
	"walletcat/internal/domain"
	"walletcat/internal/services/references"
	"walletcat/internal/services/wallets"
)

// walletService loads the data directory into memory and serves it the way the API does.
func walletService(ctx context.Context) (*wallets.Service, error) {
	cat := catalog.New(dataDir, logger)
	if _, err := cat.Reload(ctx); err != nil {
		return nil, err
	}
	table, err := references.LoadFallbackFile(filepath.Join(dataDir, catalog.FallbacksFile))
	if err != nil {
		return nil, err
	}
	return wallets.New(cat, references.New(table, logger), 16, logger)
}

func parseVariantFlag(s string) (domain.Variant, error) {
	if s == "" {
		return "", nil
	}
	return domain.ParseVariant(s)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newResolveCmd() *cobra.Command {
	var variant string
	cmd := &cobra.Command{
		Use:   "resolve <walletID>",
		Short: "Print a wallet's features resolved for one variant",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := parseVariantFlag(variant)
			if err != nil {
				return err
			}
			svc, err := walletService(cmd.Context())
			if err != nil {
				return err
			}
			f, err := svc.Features(cmd.Context(), args[0], v)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), f)
		},
	}
	cmd.Flags().StringVar(&variant, "variant", "", "variant to resolve (default: the wallet's first declared variant)")
	return cmd
}
