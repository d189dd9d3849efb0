package ports

import (
	"context"
	"time"

	"walletcat/internal/domain"
)

// CatalogReader serves the current wallet and entity snapshot.
// Get methods return an error wrapping domain.ErrNotFound for unknown ids.
// SnapshotVersion changes whenever the snapshot is replaced.
type CatalogReader interface {
	SnapshotVersion(ctx context.Context) (int64, error)
	ListWallets(ctx context.Context) ([]*domain.Wallet, error)
	GetWallet(ctx context.Context, id string) (*domain.Wallet, error)
	ListEntities(ctx context.Context) ([]*domain.Entity, error)
	GetEntity(ctx context.Context, id string) (*domain.Entity, error)
}

// SnapshotWriter replaces the whole stored catalog at once.
type SnapshotWriter interface {
	ReplaceSnapshot(ctx context.Context, wallets []*domain.Wallet, entities []*domain.Entity) error
}

// ImportRepository queues catalog imports and tracks their progress.
type ImportRepository interface {
	Enqueue(ctx context.Context, source string) (domain.CatalogImport, error)
	Get(ctx context.Context, importID string) (domain.CatalogImport, error)
	ClaimNext(ctx context.Context) (imp domain.CatalogImport, found bool, err error)
	StartImport(ctx context.Context, importID string) error
	MarkCompleted(ctx context.Context, importID string, res domain.ImportResult) error
	MarkFailed(ctx context.Context, importID string, reason string) error
	// Requeue hands a running import back to the queue.
	Requeue(ctx context.Context, importID string) error
	// RequeueStale requeues imports left running for longer than olderThan.
	RequeueStale(ctx context.Context, olderThan time.Duration) (int64, error)
}
