package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseVariant(t *testing.T) {
	v, err := ParseVariant(" Mobile ")
	require.NoError(t, err)
	assert.Equal(t, VariantMobile, v)

	_, err = ParseVariant("tablet")
	assert.ErrorIs(t, err, ErrUnknownVariant)
}

func TestVariants_Helpers(t *testing.T) {
	var vs Variants
	require.NoError(t, json.Unmarshal([]byte(`{"hardware": false, "desktop": true, "mobile": true, "browser": false}`), &vs))

	assert.Equal(t, []Variant{VariantMobile, VariantDesktop}, vs.List())
	assert.Equal(t, VariantMobile, vs.Default())
	assert.False(t, vs.Single())
	assert.Equal(t, "View desktop version", vs.Tooltip(VariantDesktop))
	assert.Equal(t, "?desktop", vs.URLQuery(VariantDesktop))
	assert.Equal(t, "", vs.URLQuery(VariantBrowser))

	got, ok := vs.FromURLQuery("?desktop")
	assert.True(t, ok)
	assert.Equal(t, VariantDesktop, got)
	_, ok = vs.FromURLQuery("browser")
	assert.False(t, ok)

	single := Variants{VariantHardware: true}
	assert.True(t, single.Single())
	assert.Equal(t, "Hardware-only wallet", single.Tooltip(VariantHardware))
	assert.Equal(t, "", single.URLQuery(VariantHardware))
}

func TestVariants_RejectsUnknownKey(t *testing.T) {
	var vs Variants
	err := json.Unmarshal([]byte(`{"tablet": true}`), &vs)
	assert.ErrorIs(t, err, ErrUnknownVariant)
}

func TestVariant_Names(t *testing.T) {
	assert.Equal(t, "Browser", VariantBrowser.Name(true))
	assert.Equal(t, "browser", VariantBrowser.Name(false))
	assert.Equal(t, "as a browser extension", VariantBrowser.RunsOn())
	assert.Equal(t, "on mobile", VariantMobile.RunsOn())
}

func TestVariantFeature_Single(t *testing.T) {
	var f VariantFeature[string]
	require.NoError(t, json.Unmarshal([]byte(`"https://example.com/privacy"`), &f))

	assert.False(t, f.IsPerVariant())
	for _, v := range AllVariants {
		got := f.Resolve(v)
		require.NotNil(t, got, v)
		assert.Equal(t, "https://example.com/privacy", *got)
	}
	_, perVariant := f.VariantKeys()
	assert.False(t, perVariant)
}

func TestVariantFeature_PerVariant(t *testing.T) {
	var f VariantFeature[string]
	require.NoError(t, json.Unmarshal([]byte(`{"mobile": "m", "desktop": null}`), &f))

	assert.True(t, f.IsPerVariant())
	require.NotNil(t, f.Resolve(VariantMobile))
	assert.Equal(t, "m", *f.Resolve(VariantMobile))
	assert.Nil(t, f.Resolve(VariantDesktop))
	assert.Nil(t, f.Resolve(VariantBrowser))

	keys, ok := f.VariantKeys()
	assert.True(t, ok)
	assert.Equal(t, []Variant{VariantMobile, VariantDesktop}, keys)
	assert.Len(t, f.Values(), 1)
}

func TestVariantFeature_ObjectValueIsNotPerVariant(t *testing.T) {
	var f VariantFeature[ChainConfigurability]
	require.NoError(t, json.Unmarshal([]byte(`{"l1RpcEndpoint": "NO", "otherRpcEndpoints": "NO", "customChains": true}`), &f))

	assert.False(t, f.IsPerVariant())
	got := f.Resolve(VariantEmbedded)
	require.NotNil(t, got)
	assert.True(t, got.CustomChains)
	assert.Equal(t, RPCNo, got.L1RPCEndpoint)
}

func TestVariantFeature_Unknown(t *testing.T) {
	var f VariantFeature[ChainConfigurability]
	require.NoError(t, json.Unmarshal([]byte(`null`), &f))

	assert.True(t, f.IsUnknown())
	assert.Nil(t, f.Resolve(VariantMobile))
	assert.Empty(t, f.Values())
}

func TestVariantFeature_ResolveReturnsCopy(t *testing.T) {
	f := Single(ChainConfigurability{CustomChains: true})

	got := f.Resolve(VariantMobile)
	got.CustomChains = false

	assert.True(t, f.Resolve(VariantMobile).CustomChains)
}

func TestVariantFeature_MarshalRoundTrip(t *testing.T) {
	m := "m"
	f := PerVariant(map[Variant]*string{VariantMobile: &m, VariantBrowser: nil})

	b, err := json.Marshal(f)
	require.NoError(t, err)
	assert.JSONEq(t, `{"mobile": "m", "browser": null}`, string(b))

	var back VariantFeature[string]
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, f, back)
}
