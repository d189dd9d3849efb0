package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"walletcat/internal/services/references"
	"walletcat/internal/services/wallets"
)

func newRefsCmd() *cobra.Command {
	var variant string
	cmd := &cobra.Command{
		Use:   "refs <walletID> [category/attribute]",
		Short: "Print the references backing a wallet's attributes",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := parseVariantFlag(variant)
			if err != nil {
				return err
			}
			attrs := references.Attributes
			if len(args) == 2 {
				category, id, ok := strings.Cut(args[1], "/")
				if !ok {
					return fmt.Errorf("%w: want category/attribute, got %q", references.ErrUnknownAttribute, args[1])
				}
				attr, err := references.ParseAttribute(category, id)
				if err != nil {
					return err
				}
				attrs = []references.Attribute{attr}
			}

			svc, err := walletService(cmd.Context())
			if err != nil {
				return err
			}
			out := make([]wallets.AttributeReferences, 0, len(attrs))
			for _, attr := range attrs {
				refs, err := svc.AttributeReferences(cmd.Context(), args[0], v, attr)
				if err != nil {
					return err
				}
				if len(attrs) > 1 && len(refs.References) == 0 && refs.Note == "" {
					continue
				}
				out = append(out, refs)
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}
	cmd.Flags().StringVar(&variant, "variant", "", "variant to cite (default: the wallet's first declared variant)")
	return cmd
}
