package postgres

import (
	"context"
	"embed"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"

	"walletcat/internal/logging"
	"walletcat/internal/ports"
)

//go:embed migrations/*.sql
var migrations embed.FS

type DB struct {
	Pool *pgxpool.Pool
}

var (
	_ ports.CatalogReader    = (*DB)(nil)
	_ ports.SnapshotWriter   = (*DB)(nil)
	_ ports.ImportRepository = (*DB)(nil)
)

func Connect(ctx context.Context, url string) (*DB, error) {
	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, err
	}
	cfg.MaxConns = 10
	cfg.HealthCheckPeriod = 30 * time.Second
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return &DB{Pool: pool}, nil
}

func (db *DB) Close() { db.Pool.Close() }

type gooseLogger struct{ log *zap.SugaredLogger }

func (g gooseLogger) Printf(format string, v ...any) {
	g.log.Infof(strings.TrimSuffix(format, "\n"), v...)
}

func (g gooseLogger) Fatalf(format string, v ...any) {
	g.log.Fatalf(strings.TrimSuffix(format, "\n"), v...)
}

// Migrate applies the embedded migrations and returns the resulting schema version.
func (db *DB) Migrate(ctx context.Context, log *zap.SugaredLogger) (int64, error) {
	sqlDB := stdlib.OpenDBFromPool(db.Pool)
	defer sqlDB.Close()

	goose.SetBaseFS(migrations)
	goose.SetLogger(gooseLogger{logging.OrNop(log)})
	if err := goose.SetDialect("postgres"); err != nil {
		return 0, err
	}
	if err := goose.UpContext(ctx, sqlDB, "migrations"); err != nil {
		return 0, err
	}
	return goose.GetDBVersionContext(ctx, sqlDB)
}
