package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"walletcat/internal/catalog"
	"walletcat/internal/domain"
	"walletcat/internal/services/references"
	"walletcat/internal/workers/importrunner"
)

const testData = "../../internal/catalog/testdata/catalog"

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	logger = zap.NewNop().Sugar()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestValidateCmd(t *testing.T) {
	out, err := runCLI(t, "--data", testData, "validate")
	require.NoError(t, err)
	assert.Contains(t, out, "2 wallets, 3 entities")
	assert.Contains(t, out, "0 errors, 4 warnings")

	_, err = runCLI(t, "--data", testData, "validate", "--strict")
	assert.Error(t, err)

	out, err = runCLI(t, "validate", "../../internal/catalog/testdata/broken")
	assert.ErrorIs(t, err, catalog.ErrInvalid)
	assert.Contains(t, out, "duplicate entity id")
}

func TestResolveCmd(t *testing.T) {
	out, err := runCLI(t, "--data", testData, "resolve", "rabby", "--variant", "desktop")
	require.NoError(t, err)
	var f domain.ResolvedFeatures
	require.NoError(t, json.Unmarshal([]byte(out), &f))
	assert.Equal(t, domain.VariantDesktop, f.Variant)

	_, err = runCLI(t, "--data", testData, "resolve", "rabby", "--variant", "hardware")
	assert.ErrorIs(t, err, domain.ErrUnsupportedVariant)
	_, err = runCLI(t, "--data", testData, "resolve", "rabby", "--variant", "fridge")
	assert.ErrorIs(t, err, domain.ErrUnknownVariant)
	_, err = runCLI(t, "--data", testData, "resolve", "metamask")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRefsCmd(t *testing.T) {
	out, err := runCLI(t, "--data", testData, "refs", "rabby", "security/scamPrevention")
	require.NoError(t, err)
	var got []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "Rabby's security engine flags known scam addresses.", got[0]["note"])

	out, err = runCLI(t, "--data", testData, "refs", "rabby")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Greater(t, len(got), 1)

	_, err = runCLI(t, "--data", testData, "refs", "rabby", "security/vibes")
	assert.ErrorIs(t, err, references.ErrUnknownAttribute)
	_, err = runCLI(t, "--data", testData, "refs", "rabby", "vibes")
	assert.ErrorIs(t, err, references.ErrUnknownAttribute)
}

func TestDatabaseCmdsNeedURL(t *testing.T) {
	_, err := runCLI(t, "migrate", "--database-url", "")
	assert.ErrorIs(t, err, errNoDatabase)
	_, err = runCLI(t, "--data", testData, "import", "--database-url", "")
	assert.ErrorIs(t, err, errNoDatabase)
}

func TestImportCmdChecksSourceFirst(t *testing.T) {
	_, err := runCLI(t, "--data", testData, "import", "wallet", "--database-url", "postgres://unused")
	assert.ErrorIs(t, err, importrunner.ErrBadSource)
}
