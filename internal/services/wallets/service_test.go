package wallets

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"walletcat/internal/catalog"
	"walletcat/internal/domain"
	"walletcat/internal/services/references"
)

func newService(t *testing.T) (*Service, *catalog.Catalog) {
	t.Helper()
	var wallets []*domain.Wallet
	for _, name := range []string{"rabby.json", "keystone.json"} {
		b, err := os.ReadFile(filepath.Join("testdata", name))
		require.NoError(t, err)
		var w domain.Wallet
		require.NoError(t, json.Unmarshal(b, &w))
		wallets = append(wallets, &w)
	}
	entities := []*domain.Entity{
		{ID: "debank", Name: "DeBank"},
		{ID: "leastauthority", Name: "Least Authority"},
		{ID: "slowmist", Name: "SlowMist"},
	}
	snap, issues := catalog.NewSnapshot(wallets, entities)
	require.Empty(t, issues)
	c := catalog.FromSnapshot(snap)

	svc, err := New(c, references.New(nil, nil), 16, nil)
	require.NoError(t, err)
	svc.now = func() time.Time { return time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC) }
	return svc, c
}

// replacingStore serves one wallet that a test can swap out, the way another process
// replaces a shared snapshot.
type replacingStore struct {
	version int64
	wallet  *domain.Wallet
}

func (r *replacingStore) replace(w *domain.Wallet) { r.wallet, r.version = w, r.version+1 }

func (r *replacingStore) SnapshotVersion(context.Context) (int64, error) { return r.version, nil }
func (r *replacingStore) ListWallets(context.Context) ([]*domain.Wallet, error) {
	return []*domain.Wallet{r.wallet}, nil
}
func (r *replacingStore) GetWallet(_ context.Context, id string) (*domain.Wallet, error) {
	if id != r.wallet.ID() {
		return nil, domain.ErrNotFound
	}
	return r.wallet, nil
}
func (r *replacingStore) ListEntities(context.Context) ([]*domain.Entity, error) { return nil, nil }
func (r *replacingStore) GetEntity(context.Context, string) (*domain.Entity, error) {
	return nil, domain.ErrNotFound
}

func walletWithPolicy(policy string) *domain.Wallet {
	return &domain.Wallet{
		Metadata: domain.Metadata{ID: "w"},
		Variants: domain.Variants{domain.VariantMobile: true},
		Features: domain.WalletFeatures{Privacy: domain.PrivacyFeatures{PrivacyPolicy: domain.Single(policy)}},
	}
}

func TestService_FeaturesFollowSnapshotReplacement(t *testing.T) {
	ctx := context.Background()
	store := &replacingStore{}
	store.replace(walletWithPolicy("https://old"))
	svc, err := New(store, references.New(nil, nil), 16, nil)
	require.NoError(t, err)

	f, err := svc.Features(ctx, "w", "")
	require.NoError(t, err)
	require.NotNil(t, f.Privacy.PrivacyPolicy)
	assert.Equal(t, "https://old", *f.Privacy.PrivacyPolicy)

	store.replace(walletWithPolicy("https://new"))
	f, err = svc.Features(ctx, "w", "")
	require.NoError(t, err)
	assert.Equal(t, "https://new", *f.Privacy.PrivacyPolicy, "no Invalidate call needed")
}

func TestService_List(t *testing.T) {
	svc, _ := newService(t)
	got, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "keystone", got[0].ID)
	assert.Equal(t, []domain.Variant{domain.VariantHardware}, got[0].Variants)
	assert.Equal(t, []domain.VariantForm{{
		Variant: domain.VariantHardware, Name: "Hardware", RunsOn: "as a hardware wallet", Tooltip: "Hardware-only wallet",
	}}, got[0].Forms)
	assert.Empty(t, got[0].License)
	assert.False(t, got[0].OpenSource)

	rabby := got[1]
	assert.Equal(t, "Rabby", rabby.DisplayName)
	assert.Equal(t, "MIT", rabby.License)
	assert.True(t, rabby.OpenSource)
	require.Len(t, rabby.Forms, 3)
	assert.Equal(t, domain.VariantForm{
		Variant: domain.VariantBrowser, Name: "Browser", RunsOn: "as a browser extension",
		Tooltip: "View browser version", Query: "?browser",
	}, rabby.Forms[1])
}

func TestService_Features(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	f, err := svc.Features(ctx, "rabby", "")
	require.NoError(t, err)
	assert.Equal(t, domain.VariantMobile, f.Variant)

	f, err = svc.Features(ctx, "rabby", domain.VariantDesktop)
	require.NoError(t, err)
	require.NotNil(t, f.Security.HardwareWalletSupport)
	assert.Equal(t, 2, svc.resolved.Len())

	again, err := svc.Features(ctx, "rabby", domain.VariantDesktop)
	require.NoError(t, err)
	assert.Equal(t, f, again)
	assert.Equal(t, 2, svc.resolved.Len())

	_, err = svc.Features(ctx, "rabby", domain.VariantHardware)
	assert.ErrorIs(t, err, domain.ErrUnsupportedVariant)
	_, err = svc.Features(ctx, "metamask", "")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	svc.Invalidate()
	assert.Equal(t, 0, svc.resolved.Len())
}

func TestService_AttributeReferences(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	got, err := svc.AttributeReferences(ctx, "rabby", "", references.ScamPrevention)
	require.NoError(t, err)
	assert.Equal(t, domain.VariantMobile, got.Variant)
	require.Len(t, got.References, 1)
	assert.Equal(t, "warns", got.References[0].Explanation)
	assert.Equal(t, "Rabby's security engine flags known scam addresses.", got.Note)

	audits, err := svc.AttributeReferences(ctx, "rabby", domain.VariantDesktop, references.SecurityAudits)
	require.NoError(t, err)
	require.Len(t, audits.References, 1)
	assert.Equal(t, "Least Authority Audit Report", audits.References[0].URLs[0].Label, "auditors are linked")
	assert.Empty(t, audits.Note)

	_, err = svc.AttributeReferences(ctx, "keystone", domain.VariantMobile, references.SecurityAudits)
	assert.ErrorIs(t, err, domain.ErrUnsupportedVariant)
}

func TestService_Leaks(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	rep, err := svc.Leaks(ctx, "rabby", domain.VariantBrowser, domain.LeakIPAddress, domain.LeakAlways)
	require.NoError(t, err)
	assert.True(t, rep.Known)
	require.Len(t, rep.Entities, 1)
	assert.Equal(t, "DeBank", rep.Entities[0].Name)
	assert.Equal(t, domain.LeakAlways, rep.Entities[0].Level)
	require.Len(t, rep.Entities[0].References, 1)

	rep, err = svc.Leaks(ctx, "rabby", domain.VariantBrowser, domain.LeakCexAccount, domain.LeakOptIn)
	require.NoError(t, err)
	assert.Empty(t, rep.Entities, "NEVER is below any threshold")

	rep, err = svc.Leaks(ctx, "rabby", domain.VariantMobile, domain.LeakIPAddress, domain.LeakOptIn)
	require.NoError(t, err)
	assert.False(t, rep.Known)
	assert.NotNil(t, rep.Entities)
}

func TestService_Audits(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	rep, err := svc.Audits(ctx, "rabby", domain.VariantMobile)
	require.NoError(t, err)
	assert.True(t, rep.Checked)
	require.Len(t, rep.Audits, 2)
	assert.Equal(t, "leastauthority", rep.Audits[0].Auditor.ID)
	assert.Equal(t, "slowmist", rep.Audits[1].Auditor.ID)
	require.NotNil(t, rep.MostRecent)
	assert.Equal(t, "2024-12-12", rep.MostRecent.String())
	assert.True(t, rep.AuditedWithinYear)
	assert.False(t, rep.HasUnaddressedFlaws)

	desktop, err := svc.Audits(ctx, "rabby", domain.VariantDesktop)
	require.NoError(t, err)
	assert.Len(t, desktop.Audits, 1)

	hw, err := svc.Audits(ctx, "keystone", "")
	require.NoError(t, err)
	assert.False(t, hw.Checked)
	assert.Nil(t, hw.MostRecent)
	assert.NotNil(t, hw.Audits)
	assert.Empty(t, hw.Audits)
}
