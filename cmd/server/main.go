package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"go.uber.org/zap"

	httpadapter "walletcat/internal/adapters/http"
	pg "walletcat/internal/adapters/postgres"
	"walletcat/internal/catalog"
	"walletcat/internal/config"
	"walletcat/internal/domain"
	"walletcat/internal/logging"
	"walletcat/internal/ports"
	"walletcat/internal/services/entities"
	"walletcat/internal/services/references"
	"walletcat/internal/services/wallets"
	"walletcat/internal/telemetry"
	"walletcat/internal/workers/importrunner"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log, err := logging.New(cfg.LogDebug)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()
	telemetry.InitMetrics()
	domain.SetDiagnosticsLogger(log)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	fallbackPath := filepath.Join(cfg.DataDir, catalog.FallbacksFile)
	table, err := references.LoadFallbackFile(fallbackPath)
	if err != nil {
		return err
	}
	refs := references.New(table, log)

	var (
		store    ports.CatalogReader
		cat      *catalog.Catalog
		db       *pg.DB
		importer importrunner.CatalogImporter
		imports  *httpadapter.Imports
	)
	if cfg.UsePostgres() {
		if db, err = pg.Connect(ctx, cfg.DatabaseURL); err != nil {
			return fmt.Errorf("db connect: %w", err)
		}
		defer db.Close()
		version, err := db.Migrate(ctx, log)
		if err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		log.Infow("database ready", "schemaVersion", version)
		store = db
	} else {
		cat = catalog.New(cfg.DataDir, log)
		issues, err := cat.Reload(ctx)
		for _, is := range issues {
			log.Warnw("catalog issue", "issue", is.String())
		}
		if err != nil {
			return err
		}
		store = cat
	}

	walletSvc, err := wallets.New(store, refs, cfg.ResolveCacheSize, log)
	if err != nil {
		return err
	}

	var stopAll []func()
	if db != nil {
		importer = importrunner.CatalogImporter{Root: cfg.DataDir, Store: db, Log: log, OnComplete: walletSvc.Invalidate}
		imports = &httpadapter.Imports{Repo: db, Importer: importer}
		if cfg.ImportWorkers > 0 {
			done := make(chan struct{})
			go func() {
				defer close(done)
				importrunner.Run(ctx, db, importer, cfg.ImportWorkers, 500*time.Millisecond, log)
			}()
			stopAll = append(stopAll, func() { <-done })
			log.Infow("import workers started", "workers", cfg.ImportWorkers)
		}
	}
	if cat != nil && cfg.DataWatch {
		w, err := catalog.NewWatcher(cfg.DataDir, func(ctx context.Context, paths []string) {
			reloadCatalog(ctx, cat, refs, fallbackPath, paths, log)
			walletSvc.Invalidate()
		}, log)
		if err != nil {
			return err
		}
		if err := w.Start(ctx); err != nil {
			return err
		}
		stopAll = append(stopAll, w.Stop)
	}

	srv := httpadapter.New(walletSvc, entities.New(store), imports, log)

	httpSrv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() { errCh <- httpSrv.ListenAndServe() }()
	log.Infow("listening", "addr", cfg.ListenAddr, "env", cfg.Env, "postgres", cfg.UsePostgres())

	select {
	case <-ctx.Done():
		log.Infow("shutting down")
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
	}
	cancel()

	shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
	defer stop()
	err = httpSrv.Shutdown(shutdownCtx)
	for _, fn := range stopAll {
		fn()
	}
	return err
}

// reloadCatalog applies a batch of settled file changes to the in-memory catalog.
func reloadCatalog(ctx context.Context, cat *catalog.Catalog, refs *references.Extractor, fallbackPath string, paths []string, log *zap.SugaredLogger) {
	for _, p := range paths {
		if filepath.Clean(p) != filepath.Clean(fallbackPath) {
			continue
		}
		table, err := references.LoadFallbackFile(fallbackPath)
		if err != nil {
			log.Errorw("fallback reload rejected", "error", err)
			break
		}
		refs.SetFallbacks(table)
		log.Infow("fallbacks reloaded", "entries", table.Len())
		break
	}
	issues, err := cat.Reload(ctx)
	if err != nil {
		log.Errorw("catalog reload rejected, keeping previous snapshot", "error", err)
		return
	}
	log.Infow("catalog reloaded", "files", len(paths), "warnings", len(issues))
}
