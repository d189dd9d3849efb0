package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	pg "walletcat/internal/adapters/postgres"
	"walletcat/internal/config"
	"walletcat/internal/domain"
	"walletcat/internal/workers/importrunner"
)

var errNoDatabase = errors.New("DATABASE_URL or --database-url is required")

func connect(cmd *cobra.Command, url string) (*pg.DB, error) {
	if url == "" {
		return nil, errNoDatabase
	}
	db, err := pg.Connect(cmd.Context(), url)
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}
	return db, nil
}

func newMigrateCmd(cfg config.Config) *cobra.Command {
	var url string
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := connect(cmd, url)
			if err != nil {
				return err
			}
			defer db.Close()
			version, err := db.Migrate(cmd.Context(), logger)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "schema version %d\n", version)
			return nil
		},
	}
	cmd.Flags().StringVar(&url, "database-url", cfg.DatabaseURL, "Postgres connection string")
	return cmd
}

func newImportCmd(cfg config.Config) *cobra.Command {
	var (
		url        string
		allowEmpty bool
	)
	cmd := &cobra.Command{
		Use:   "import [source]",
		Short: "Load a directory under --data into the Postgres snapshot",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var source string
			if len(args) == 1 {
				source = args[0]
			}
			importer := importrunner.CatalogImporter{Root: dataDir, Log: logger, AllowEmpty: allowEmpty}
			if _, err := importer.SourceDir(source); err != nil {
				return err
			}
			db, err := connect(cmd, url)
			if err != nil {
				return err
			}
			defer db.Close()
			if _, err := db.Migrate(cmd.Context(), logger); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			importer.Store = db

			queued, err := db.Enqueue(cmd.Context(), source)
			if err != nil {
				return err
			}
			imp, err := importrunner.ProcessInline(cmd.Context(), db, importer, queued.ID)
			if err != nil {
				return err
			}
			if err := printJSON(cmd.OutOrStdout(), imp); err != nil {
				return err
			}
			if imp.Status == domain.ImportFailed {
				return fmt.Errorf("import %s failed", imp.ID)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&url, "database-url", cfg.DatabaseURL, "Postgres connection string")
	cmd.Flags().BoolVar(&allowEmpty, "allow-empty", false, "Allow a source without wallets to clear the stored catalog")
	return cmd
}
