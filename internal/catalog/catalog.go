package catalog

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"walletcat/internal/domain"
	"walletcat/internal/logging"
	"walletcat/internal/telemetry"
)

// ErrInvalid is returned by Reload when the data directory has blocking issues.
var ErrInvalid = errors.New("catalog has validation errors")

// Catalog serves an in-memory snapshot loaded from a data directory. Reload swaps the
// snapshot atomically; a failed reload keeps serving the previous one.
type Catalog struct {
	loader *Loader
	log    *zap.SugaredLogger

	mu      sync.RWMutex
	snap    *Snapshot
	version int64
}

func New(dir string, log *zap.SugaredLogger) *Catalog {
	log = logging.OrNop(log)
	return &Catalog{loader: NewLoader(dir, log), log: log, snap: &Snapshot{}}
}

// FromSnapshot serves a snapshot that was loaded elsewhere.
func FromSnapshot(snap *Snapshot) *Catalog {
	return &Catalog{log: logging.OrNop(nil), snap: snap, version: 1}
}

func (c *Catalog) Dir() string {
	if c.loader == nil {
		return ""
	}
	return c.loader.Dir
}

// Reload reads the data directory again. Issues are returned even on success (warnings).
func (c *Catalog) Reload(ctx context.Context) (Issues, error) {
	if c.loader == nil {
		return nil, errors.New("catalog has no data directory")
	}
	snap, issues, err := c.loader.Load(ctx)
	if err != nil {
		telemetry.CatalogLoads.WithLabelValues("error").Inc()
		return nil, err
	}
	for _, is := range issues {
		telemetry.LoadIssues.WithLabelValues(string(is.Severity)).Inc()
	}
	if errs := issues.Errors(); len(errs) > 0 {
		telemetry.CatalogLoads.WithLabelValues("invalid").Inc()
		return issues, fmt.Errorf("%w: %s", ErrInvalid, errs.Summary(3))
	}
	c.mu.Lock()
	c.snap = snap
	c.version++
	c.mu.Unlock()
	telemetry.CatalogLoads.WithLabelValues("ok").Inc()
	return issues, nil
}

// Snapshot returns the snapshot currently served.
func (c *Catalog) Snapshot() *Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snap
}

// SnapshotVersion counts successful reloads.
func (c *Catalog) SnapshotVersion(context.Context) (int64, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.version, nil
}

func (c *Catalog) ListWallets(ctx context.Context) ([]*domain.Wallet, error) {
	return c.Snapshot().Wallets, nil
}

func (c *Catalog) GetWallet(ctx context.Context, id string) (*domain.Wallet, error) {
	w, ok := c.Snapshot().Wallet(id)
	if !ok {
		return nil, fmt.Errorf("wallet %q: %w", id, domain.ErrNotFound)
	}
	return w, nil
}

func (c *Catalog) ListEntities(ctx context.Context) ([]*domain.Entity, error) {
	return c.Snapshot().Entities, nil
}

func (c *Catalog) GetEntity(ctx context.Context, id string) (*domain.Entity, error) {
	e, ok := c.Snapshot().Entity(id)
	if !ok {
		return nil, fmt.Errorf("entity %q: %w", id, domain.ErrNotFound)
	}
	return e, nil
}
