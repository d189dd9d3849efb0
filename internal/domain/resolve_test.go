package domain

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadWallet(t *testing.T, name string) *Wallet {
	t.Helper()
	b, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	var w Wallet
	require.NoError(t, json.Unmarshal(b, &w))
	return &w
}

func TestResolveFeatures_AuditsFilteredByScope(t *testing.T) {
	w := loadWallet(t, "wallet_multi.json")

	desktop := ResolveFeatures(w.Features, VariantDesktop)
	require.Len(t, desktop.Security.PublicSecurityAudits, 1)
	assert.Equal(t, "leastauthority", desktop.Security.PublicSecurityAudits[0].Auditor.ID)

	mobile := ResolveFeatures(w.Features, VariantMobile)
	require.Len(t, mobile.Security.PublicSecurityAudits, 2)
	assert.Equal(t, "slowmist", mobile.Security.PublicSecurityAudits[0].Auditor.ID, "authored order is kept")
}

func TestResolveFeatures_NilAuditsStayNil(t *testing.T) {
	w := loadWallet(t, "wallet_hardware.json")

	got := ResolveFeatures(w.Features, VariantHardware)
	assert.Nil(t, got.Security.PublicSecurityAudits)

	w.Features.Security.PublicSecurityAudits = []SecurityAudit{}
	got = ResolveFeatures(w.Features, VariantHardware)
	assert.NotNil(t, got.Security.PublicSecurityAudits)
	assert.Empty(t, got.Security.PublicSecurityAudits)
}

func TestResolveFeatures_SingleValuesApplyToEveryVariant(t *testing.T) {
	w := loadWallet(t, "wallet_multi.json")

	for _, v := range AllVariants {
		got := ResolveFeatures(w.Features, v)
		assert.Equal(t, v, got.Variant)
		require.NotNil(t, got.Privacy.PrivacyPolicy, v)
		assert.Equal(t, "https://rabby.io/docs/privacy", *got.Privacy.PrivacyPolicy)
		require.NotNil(t, got.ChainConfigurability, v)
		assert.True(t, got.ChainConfigurability.CustomChains)
		require.NotNil(t, got.MultiAddress)
		assert.True(t, got.MultiAddress.IsSupported())
	}
}

func TestResolveFeatures_PerVariantLeaves(t *testing.T) {
	w := loadWallet(t, "wallet_multi.json")

	desktop := ResolveFeatures(w.Features, VariantDesktop)
	require.NotNil(t, desktop.Security.HardwareWalletSupport)
	assert.Equal(t, []HardwareWalletType{HardwareLedger, HardwareTrezor}, desktop.Security.HardwareWalletSupport.Supported())
	assert.Nil(t, desktop.Privacy.DataCollection)

	browser := ResolveFeatures(w.Features, VariantBrowser)
	assert.Nil(t, browser.Security.HardwareWalletSupport)
	require.NotNil(t, browser.Privacy.DataCollection)
	assert.Len(t, browser.Privacy.DataCollection.CollectedByEntities, 1)
}

func TestResolveFeatures_HardwareOnlyWallet(t *testing.T) {
	w := loadWallet(t, "wallet_hardware.json")

	hw, err := w.Resolve(VariantHardware)
	require.NoError(t, err)
	require.NotNil(t, hw.Security.HardwareWalletClearSigning)
	assert.Equal(t, ClearSigningFull, hw.Security.HardwareWalletClearSigning.ClearSigningSupport.Level)
	require.NotNil(t, hw.Security.BugBountyProgram)

	_, err = w.Resolve(VariantMobile)
	assert.ErrorIs(t, err, ErrUnsupportedVariant)

	mobile := ResolveFeatures(w.Features, VariantMobile)
	assert.Nil(t, mobile.Security.HardwareWalletClearSigning)
	assert.Nil(t, mobile.Security.ScamAlerts)
	assert.Nil(t, mobile.AccountSupport)
}

func TestWallet_PickVariant(t *testing.T) {
	w := loadWallet(t, "wallet_multi.json")

	v, err := w.PickVariant("")
	require.NoError(t, err)
	assert.Equal(t, VariantMobile, v)

	_, err = w.PickVariant(VariantHardware)
	assert.ErrorIs(t, err, ErrUnsupportedVariant)

	empty := &Wallet{Variants: Variants{VariantMobile: false}}
	_, err = empty.PickVariant("")
	assert.ErrorIs(t, err, ErrNoVariants)
}

func TestWallet_DecodesMetadataAndOverrides(t *testing.T) {
	w := loadWallet(t, "wallet_multi.json")

	assert.Equal(t, "rabby", w.ID())
	assert.Equal(t, []Contributor{{Name: "polymutex"}, {Name: "nconsigny", URL: "https://github.com/nconsigny"}}, w.Metadata.Contributors)
	assert.Equal(t, "2024-12-15", w.Metadata.LastUpdated.String())
	assert.Equal(t, "Rabby's security engine flags known scam addresses.", w.OverrideNote("security", "scamPrevention"))
	assert.Equal(t, "", w.OverrideNote("security", "securityAudits"))

	require.NotNil(t, w.Features.Integration.Browser)
	assert.True(t, w.Features.Integration.Browser.EIP6963.IsSupported())

	m := w.Features.Monetization.Resolve(VariantMobile)
	require.NotNil(t, m)
	active := m.Strategies.Active()
	require.Len(t, active, 2)
	assert.Equal(t, "ventureCapital", active[0].Strategy)
	require.Len(t, m.Ref, 1)
	assert.Len(t, m.Ref[0].URLs, 2)
}

func TestWalletFeatures_EntityRefsAndLeaves(t *testing.T) {
	w := loadWallet(t, "wallet_multi.json")

	refs := w.Features.EntityRefs()
	ids := make([]string, 0, len(refs))
	for _, r := range refs {
		ids = append(ids, r.ID)
	}
	assert.Equal(t, []string{"slowmist", "leastauthority", "debank"}, ids)

	refs[2].Entity = &Entity{ID: "debank", Name: "DeBank"}
	dc := w.Features.Privacy.DataCollection.Resolve(VariantBrowser)
	require.NotNil(t, dc)
	assert.Equal(t, "DeBank", dc.CollectedByEntities[0].Entity.Name("?"))

	perVariant := map[string][]Variant{}
	for _, leaf := range w.Features.Leaves() {
		if keys, ok := leaf.Leaf.VariantKeys(); ok {
			perVariant[leaf.Path] = keys
		}
	}
	assert.Equal(t, map[string][]Variant{
		"security.hardwareWalletSupport": {VariantDesktop},
		"privacy.dataCollection":         {VariantBrowser},
	}, perVariant)
}

func TestWallet_SnapshotRoundTrip(t *testing.T) {
	w := loadWallet(t, "wallet_multi.json")
	w.Features.Security.PublicSecurityAudits[0].Auditor.Entity = &Entity{ID: "slowmist", Name: "SlowMist"}

	b, err := json.Marshal(w)
	require.NoError(t, err)

	var back Wallet
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, ResolveFeatures(w.Features, VariantDesktop), ResolveFeatures(back.Features, VariantDesktop))
	assert.Equal(t, "SlowMist", back.Features.Security.PublicSecurityAudits[0].Auditor.Name(""))
}
