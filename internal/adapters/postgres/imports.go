package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"walletcat/internal/domain"
)

const importColumns = `id, source, status, wallets, entities, warnings, COALESCE(error, ''), attempts, queued_at, started_at, finished_at`

func scanImport(row pgx.Row) (domain.CatalogImport, error) {
	var (
		imp    domain.CatalogImport
		id     uuid.UUID
		status string
	)
	err := row.Scan(&id, &imp.Source, &status, &imp.Wallets, &imp.Entities, &imp.Warnings,
		&imp.Error, &imp.Attempts, &imp.QueuedAt, &imp.StartedAt, &imp.FinishedAt)
	if err != nil {
		return imp, err
	}
	imp.ID = id.String()
	imp.Status = domain.ImportStatus(status)
	return imp, nil
}

// Enqueue records a queued import of the given source directory.
func (db *DB) Enqueue(ctx context.Context, source string) (domain.CatalogImport, error) {
	id := uuid.New()
	return scanImport(db.Pool.QueryRow(ctx, `
		INSERT INTO catalog_imports (id, source) VALUES ($1, $2)
		RETURNING `+importColumns, id, source))
}

func (db *DB) Get(ctx context.Context, importID string) (domain.CatalogImport, error) {
	id, err := uuid.Parse(importID)
	if err != nil {
		return domain.CatalogImport{}, fmt.Errorf("import %q: %w", importID, domain.ErrNotFound)
	}
	imp, err := scanImport(db.Pool.QueryRow(ctx, `SELECT `+importColumns+` FROM catalog_imports WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return imp, fmt.Errorf("import %q: %w", importID, domain.ErrNotFound)
	}
	return imp, err
}

// ClaimNext selects the oldest queued import using SKIP LOCKED and marks it running.
func (db *DB) ClaimNext(ctx context.Context) (imp domain.CatalogImport, found bool, err error) {
	tx, err := db.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return imp, false, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			err = tx.Commit(ctx)
		}
	}()

	var id uuid.UUID
	err = tx.QueryRow(ctx, `
		SELECT id FROM catalog_imports
		WHERE status = 'queued'
		ORDER BY queued_at
		FOR UPDATE SKIP LOCKED
		LIMIT 1
	`).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return imp, false, nil
	}
	if err != nil {
		return imp, false, err
	}

	imp, err = scanImport(tx.QueryRow(ctx, `
		UPDATE catalog_imports SET status='running', started_at=now(), attempts=attempts+1
		WHERE id=$1
		RETURNING `+importColumns, id))
	if err != nil {
		return imp, false, err
	}
	return imp, true, nil
}

// StartImport marks a specific queued import as running. It fails with domain.ErrNotFound when
// the import does not exist or a worker already claimed it.
func (db *DB) StartImport(ctx context.Context, importID string) (err error) {
	id, err := uuid.Parse(importID)
	if err != nil {
		return fmt.Errorf("import %q: %w", importID, domain.ErrNotFound)
	}
	tx, err := db.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			err = tx.Commit(ctx)
		}
	}()

	err = tx.QueryRow(ctx, `
		SELECT id FROM catalog_imports
		WHERE id = $1 AND status = 'queued'
		FOR UPDATE SKIP LOCKED
	`, id).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("queued import %q: %w", importID, domain.ErrNotFound)
	}
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx, `UPDATE catalog_imports SET status='running', started_at=now(), attempts=attempts+1 WHERE id=$1`, id)
	return err
}

func (db *DB) MarkCompleted(ctx context.Context, importID string, res domain.ImportResult) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return db.finish(ctx, importID, `
		UPDATE catalog_imports
		SET status='completed', wallets=$2, entities=$3, warnings=$4, error=NULL, finished_at=now()
		WHERE id=$1`, res.Wallets, res.Entities, res.Warnings)
}

func (db *DB) MarkFailed(ctx context.Context, importID string, reason string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return db.finish(ctx, importID, `
		UPDATE catalog_imports SET status='failed', error=$2, finished_at=now() WHERE id=$1`, reason)
}

func (db *DB) Requeue(ctx context.Context, importID string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return db.finish(ctx, importID, `
		UPDATE catalog_imports SET status='queued', started_at=NULL WHERE id=$1 AND status='running'`)
}

// RequeueStale puts back imports whose worker died mid-run.
func (db *DB) RequeueStale(ctx context.Context, olderThan time.Duration) (int64, error) {
	tag, err := db.Pool.Exec(ctx, `
		UPDATE catalog_imports SET status='queued', started_at=NULL
		WHERE status='running' AND started_at < now() - make_interval(secs => $1)`, olderThan.Seconds())
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (db *DB) finish(ctx context.Context, importID, query string, args ...any) error {
	id, err := uuid.Parse(importID)
	if err != nil {
		return fmt.Errorf("import %q: %w", importID, domain.ErrNotFound)
	}
	tag, err := db.Pool.Exec(ctx, query, append([]any{id}, args...)...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("import %q: %w", importID, domain.ErrNotFound)
	}
	return nil
}
