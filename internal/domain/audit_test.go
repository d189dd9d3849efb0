package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const auditsJSON = `[
	{
		"auditor": "slowmist",
		"auditDate": "2021-06-18",
		"ref": "https://example.com/2021.pdf",
		"variantsScope": {"mobile": true},
		"codeSnapshot": {"date": "2021-06-23"},
		"unpatchedFlaws": "ALL_FIXED"
	},
	{
		"auditor": "cure53",
		"auditDate": "2024-10-22",
		"ref": "https://example.com/2024.pdf",
		"variantsScope": "ALL_VARIANTS",
		"codeSnapshot": {"date": "2024-09-08", "commit": "a8dea5d"},
		"unpatchedFlaws": [
			{"name": "RBY-01-001", "severityAtAuditPublication": "HIGH", "presentStatus": "NOT_FIXED"}
		]
	},
	{
		"auditor": "leastauthority",
		"auditDate": "2023-07-20",
		"ref": "https://example.com/2023.pdf",
		"variantsScope": "ALL_VARIANTS",
		"codeSnapshot": {"date": "2023-06-19", "commit": "f622169", "tag": "v0.91.0"},
		"unpatchedFlaws": "NONE_FOUND"
	}
]`

func loadAudits(t *testing.T) []SecurityAudit {
	t.Helper()
	var audits []SecurityAudit
	require.NoError(t, json.Unmarshal([]byte(auditsJSON), &audits))
	return audits
}

func TestSecurityAudit_Unmarshal(t *testing.T) {
	audits := loadAudits(t)
	require.Len(t, audits, 3)

	assert.Equal(t, "slowmist", audits[0].Auditor.ID)
	assert.Equal(t, "2021-06-18", audits[0].AuditDate.String())
	assert.True(t, audits[0].VariantsScope.Includes(VariantMobile))
	assert.False(t, audits[0].VariantsScope.Includes(VariantDesktop))
	assert.Equal(t, OutcomeAllFixed, audits[0].UnpatchedFlaws.Kind)

	assert.True(t, audits[1].VariantsScope.All)
	assert.Equal(t, OutcomeFlaws, audits[1].UnpatchedFlaws.Kind)
	assert.Equal(t, "High", audits[1].UnpatchedFlaws.Flaws[0].SeverityAtAuditPublication.Name())
	assert.Equal(t, "cure53-2024-10-22-a8dea5d", audits[1].ID())
	assert.Equal(t, "slowmist-2021-06-18", audits[0].ID())
}

func TestAuditOutcome_Rejects(t *testing.T) {
	var o AuditOutcome
	assert.Error(t, json.Unmarshal([]byte(`[]`), &o))
	assert.Error(t, json.Unmarshal([]byte(`"MOSTLY_FIXED"`), &o))

	var s AuditScope
	assert.Error(t, json.Unmarshal([]byte(`"SOME_VARIANTS"`), &s))
}

func TestAudits_Helpers(t *testing.T) {
	audits := loadAudits(t)

	sorted := SortAuditsNewestFirst(audits)
	assert.Equal(t, "cure53", sorted[0].Auditor.ID)
	assert.Equal(t, "leastauthority", sorted[1].Auditor.ID)
	assert.Equal(t, "slowmist", sorted[2].Auditor.ID)
	assert.Equal(t, "slowmist", audits[0].Auditor.ID, "input order is untouched")

	latest, ok := MostRecentAudit(audits)
	require.True(t, ok)
	assert.Equal(t, "2024-10-22", latest.AuditDate.String())

	_, ok = MostRecentAudit(nil)
	assert.False(t, ok)

	now := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	assert.True(t, AuditedWithin(audits, now, 365*24*time.Hour))
	assert.False(t, AuditedWithin(audits[:1], now, 365*24*time.Hour))

	assert.True(t, HasUnaddressedFlaws(audits))
	assert.False(t, HasUnaddressedFlaws([]SecurityAudit{audits[0], audits[2]}))
}

func TestSecurityAudit_MarshalRoundTrip(t *testing.T) {
	audits := loadAudits(t)

	b, err := json.Marshal(audits)
	require.NoError(t, err)

	var back []SecurityAudit
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, audits, back)
}

func TestDate(t *testing.T) {
	_, err := ParseDate("2024-13-01")
	assert.Error(t, err)

	var d Date
	require.NoError(t, json.Unmarshal([]byte(`"2024-12-15"`), &d))
	b, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, `"2024-12-15"`, string(b))
}
