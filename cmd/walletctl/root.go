package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"walletcat/internal/config"
	"walletcat/internal/domain"
	"walletcat/internal/logging"
)

var (
	dataDir   string
	debugMode bool
	logger    *zap.SugaredLogger
)

func newRootCmd() *cobra.Command {
	cfg, _ := config.Load()
	root := &cobra.Command{
		Use:           "walletctl",
		Short:         "Author tooling for the wallet catalog",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if logger == nil {
				l, err := logging.New(debugMode)
				if err != nil {
					return err
				}
				logger = l
			}
			domain.SetDiagnosticsLogger(logger)
			return nil
		},
	}
	root.PersistentFlags().StringVar(&dataDir, "data", cfg.DataDir, "catalog data directory")
	root.PersistentFlags().BoolVar(&debugMode, "debug", cfg.LogDebug, "debug logging")

	root.AddCommand(newValidateCmd(), newResolveCmd(), newRefsCmd(), newMigrateCmd(cfg), newImportCmd(cfg))
	return root
}

func Execute() {
	cobra.CheckErr(newRootCmd().Execute())
}
