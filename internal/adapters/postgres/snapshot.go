package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"walletcat/internal/domain"
)

// ReplaceSnapshot swaps the stored catalog for the given documents in one transaction and
// bumps the snapshot version. Wallets are stored with their entity references expanded.
func (db *DB) ReplaceSnapshot(ctx context.Context, wallets []*domain.Wallet, entities []*domain.Entity) (err error) {
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

	if _, err = tx.Exec(ctx, `DELETE FROM wallets`); err != nil {
		return err
	}
	if _, err = tx.Exec(ctx, `DELETE FROM entities`); err != nil {
		return err
	}

	batch := &pgx.Batch{}
	for _, e := range entities {
		doc, merr := json.Marshal(e)
		if merr != nil {
			return fmt.Errorf("entity %s: %w", e.ID, merr)
		}
		batch.Queue(`INSERT INTO entities (id, name, document) VALUES ($1, $2, $3)`, e.ID, e.Name, doc)
	}
	for _, w := range wallets {
		doc, merr := json.Marshal(w)
		if merr != nil {
			return fmt.Errorf("wallet %s: %w", w.ID(), merr)
		}
		var updated *time.Time
		if !w.Metadata.LastUpdated.IsZero() {
			t := w.Metadata.LastUpdated.Time
			updated = &t
		}
		batch.Queue(`INSERT INTO wallets (id, display_name, last_updated, document) VALUES ($1, $2, $3, $4)`,
			w.ID(), w.Metadata.DisplayName, updated, doc)
	}
	if err = tx.SendBatch(ctx, batch).Close(); err != nil {
		return err
	}
	_, err = tx.Exec(ctx, `UPDATE catalog_snapshot SET version = version + 1, replaced_at = now()`)
	return err
}

// SnapshotVersion counts the snapshot replacements so far, across every process sharing the database.
func (db *DB) SnapshotVersion(ctx context.Context) (int64, error) {
	var version int64
	err := db.Pool.QueryRow(ctx, `SELECT version FROM catalog_snapshot`).Scan(&version)
	return version, err
}

func (db *DB) ListWallets(ctx context.Context) ([]*domain.Wallet, error) {
	rows, err := db.Pool.Query(ctx, `SELECT document FROM wallets ORDER BY id`)
	if err != nil {
		return nil, err
	}
	return collectDocuments[domain.Wallet](rows)
}

func (db *DB) GetWallet(ctx context.Context, id string) (*domain.Wallet, error) {
	var doc []byte
	err := db.Pool.QueryRow(ctx, `SELECT document FROM wallets WHERE id = $1`, id).Scan(&doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("wallet %q: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	var w domain.Wallet
	if err := json.Unmarshal(doc, &w); err != nil {
		return nil, fmt.Errorf("wallet %q: %w", id, err)
	}
	return &w, nil
}

func (db *DB) ListEntities(ctx context.Context) ([]*domain.Entity, error) {
	rows, err := db.Pool.Query(ctx, `SELECT document FROM entities ORDER BY id`)
	if err != nil {
		return nil, err
	}
	return collectDocuments[domain.Entity](rows)
}

func (db *DB) GetEntity(ctx context.Context, id string) (*domain.Entity, error) {
	var doc []byte
	err := db.Pool.QueryRow(ctx, `SELECT document FROM entities WHERE id = $1`, id).Scan(&doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("entity %q: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	var e domain.Entity
	if err := json.Unmarshal(doc, &e); err != nil {
		return nil, fmt.Errorf("entity %q: %w", id, err)
	}
	return &e, nil
}

func collectDocuments[T any](rows pgx.Rows) ([]*T, error) {
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (*T, error) {
		var doc []byte
		if err := row.Scan(&doc); err != nil {
			return nil, err
		}
		var v T
		if err := json.Unmarshal(doc, &v); err != nil {
			return nil, err
		}
		return &v, nil
	})
}
