package postgres

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"walletcat/internal/catalog"
	"walletcat/internal/domain"
)

// Set WALLETCAT_TEST_DATABASE_URL to a disposable database to run these.
func testDB(t *testing.T) *DB {
	t.Helper()
	url := os.Getenv("WALLETCAT_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("WALLETCAT_TEST_DATABASE_URL not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	db, err := Connect(ctx, url)
	require.NoError(t, err)
	t.Cleanup(db.Close)

	version, err := db.Migrate(ctx, nil)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, version, int64(1))
	_, err = db.Pool.Exec(ctx, `TRUNCATE wallets, entities, catalog_imports`)
	require.NoError(t, err)
	return db
}

func TestSnapshotRoundTrip(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	snap, issues, err := catalog.NewLoader("../../catalog/testdata/catalog", nil).Load(ctx)
	require.NoError(t, err)
	require.False(t, issues.HasErrors())

	before, err := db.SnapshotVersion(ctx)
	require.NoError(t, err)
	require.NoError(t, db.ReplaceSnapshot(ctx, snap.Wallets, snap.Entities))
	after, err := db.SnapshotVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, before+1, after)

	got, err := db.GetWallet(ctx, "rabby")
	require.NoError(t, err)
	want, _ := snap.Wallet("rabby")
	wantJSON, err := json.Marshal(want)
	require.NoError(t, err)
	gotJSON, err := json.Marshal(got)
	require.NoError(t, err)
	assert.JSONEq(t, string(wantJSON), string(gotJSON))
	require.NotEmpty(t, got.Features.Security.PublicSecurityAudits)
	assert.NotNil(t, got.Features.Security.PublicSecurityAudits[0].Auditor.Entity, "linked entities are embedded")

	wallets, err := db.ListWallets(ctx)
	require.NoError(t, err)
	assert.Len(t, wallets, len(snap.Wallets))
	entities, err := db.ListEntities(ctx)
	require.NoError(t, err)
	assert.Len(t, entities, len(snap.Entities))

	_, err = db.GetWallet(ctx, "metamask")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = db.GetEntity(ctx, "nobody")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, db.ReplaceSnapshot(ctx, snap.Wallets[:1], nil))
	wallets, err = db.ListWallets(ctx)
	require.NoError(t, err)
	assert.Len(t, wallets, 1, "replace drops documents missing from the new snapshot")
}

func TestImportQueue(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	first, err := db.Enqueue(ctx, "first")
	require.NoError(t, err)
	assert.Equal(t, domain.ImportQueued, first.Status)
	second, err := db.Enqueue(ctx, "second")
	require.NoError(t, err)

	claimed, found, err := db.ClaimNext(ctx)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, first.ID, claimed.ID)
	assert.Equal(t, domain.ImportRunning, claimed.Status)
	assert.Equal(t, 1, claimed.Attempts)
	assert.NotNil(t, claimed.StartedAt)

	require.NoError(t, db.StartImport(ctx, second.ID))
	assert.ErrorIs(t, db.StartImport(ctx, second.ID), domain.ErrNotFound, "already running")

	_, found, err = db.ClaimNext(ctx)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, db.Requeue(ctx, second.ID))
	requeued, err := db.Get(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ImportQueued, requeued.Status)
	assert.Nil(t, requeued.StartedAt)
	assert.ErrorIs(t, db.Requeue(ctx, second.ID), domain.ErrNotFound, "only running imports are requeued")

	require.NoError(t, db.StartImport(ctx, second.ID))
	n, err := db.RequeueStale(ctx, 10*time.Minute)
	require.NoError(t, err)
	assert.Zero(t, n, "fresh imports stay with their worker")
	_, err = db.Pool.Exec(ctx, `UPDATE catalog_imports SET started_at = now() - interval '1 hour' WHERE id = $1`, second.ID)
	require.NoError(t, err)
	n, err = db.RequeueStale(ctx, 10*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	require.NoError(t, db.StartImport(ctx, second.ID))

	require.NoError(t, db.MarkCompleted(ctx, first.ID, domain.ImportResult{Wallets: 2, Entities: 3, Warnings: []string{"w"}}))
	require.NoError(t, db.MarkFailed(ctx, second.ID, "boom"))

	done, err := db.Get(ctx, first.ID)
	require.NoError(t, err)
	want := domain.CatalogImport{ID: first.ID, Source: "first", Status: domain.ImportCompleted,
		Wallets: 2, Entities: 3, Warnings: []string{"w"}, Attempts: 1}
	if diff := cmp.Diff(want, done, cmpopts.IgnoreFields(domain.CatalogImport{}, "QueuedAt", "StartedAt", "FinishedAt")); diff != "" {
		t.Errorf("completed import mismatch (-want +got):\n%s", diff)
	}
	assert.NotNil(t, done.FinishedAt)

	failed, err := db.Get(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ImportFailed, failed.Status)
	assert.Equal(t, "boom", failed.Error)

	_, err = db.Get(ctx, "not-a-uuid")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, db.MarkFailed(ctx, "00000000-0000-0000-0000-000000000000", "x"), domain.ErrNotFound)
}
