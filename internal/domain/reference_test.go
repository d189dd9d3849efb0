package domain

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeRefs(t *testing.T, raw string) References {
	t.Helper()
	var rs References
	require.NoError(t, json.Unmarshal([]byte(raw), &rs))
	return rs
}

func TestReferences_UnmarshalShapes(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want References
	}{
		{"null", `null`, nil},
		{"bare_url", `"https://example.com/a"`, References{{URLs: []LabeledURL{{URL: "https://example.com/a"}}}}},
		{
			"object",
			`{"url": "https://x", "explanation": "warns"}`,
			References{{URLs: []LabeledURL{{URL: "https://x"}}, Explanation: "warns"}},
		},
		{
			"object_with_label",
			`{"url": "https://x", "label": "Code"}`,
			References{{URLs: []LabeledURL{{URL: "https://x", Label: "Code"}}}},
		},
		{
			"mixed_array",
			`["https://a", {"url": "https://b", "explanation": "b"}]`,
			References{
				{URLs: []LabeledURL{{URL: "https://a"}}},
				{URLs: []LabeledURL{{URL: "https://b"}}, Explanation: "b"},
			},
		},
		{
			"nested_labeled_urls",
			`[{"explanation": "Funded by VC.", "url": [{"label": "Series A", "url": "https://cb/a"}, {"label": "Series B", "url": "https://cb/b"}]}]`,
			References{{
				URLs:        []LabeledURL{{URL: "https://cb/a", Label: "Series A"}, {URL: "https://cb/b", Label: "Series B"}},
				Explanation: "Funded by VC.",
			}},
		},
		{
			"url_string_array",
			`{"explanation": "Paymaster.", "url": ["https://p/1"]}`,
			References{{URLs: []LabeledURL{{URL: "https://p/1"}}, Explanation: "Paymaster."}},
		},
		{
			"canonical",
			`{"urls": [{"url": "https://c", "label": "C"}], "explanation": "e"}`,
			References{{URLs: []LabeledURL{{URL: "https://c", Label: "C"}}, Explanation: "e"}},
		},
		{"drops_unknown_shapes", `[42, true, "https://ok"]`, References{{URLs: []LabeledURL{{URL: "https://ok"}}}}},
		{"drops_object_without_url", `{"explanation": "no link"}`, nil},
		{"number", `42`, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := decodeRefs(t, tt.raw)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("references mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestReferences_NormalizeIsIdempotent(t *testing.T) {
	first := decodeRefs(t, `[{"explanation": "x", "url": [{"label": "A", "url": "https://a"}, "https://b"]}, "https://c"]`)

	b, err := json.Marshal(first)
	require.NoError(t, err)
	second := decodeRefs(t, string(b))

	assert.Empty(t, cmp.Diff(first, second))
}

func TestReferences_ShapesQualifyTheSame(t *testing.T) {
	shapes := []string{
		`"https://docs.example.org/guide"`,
		`{"url": "https://docs.example.org/guide"}`,
		`["https://docs.example.org/guide"]`,
		`[{"url": "https://docs.example.org/guide"}]`,
	}
	want := []FullyQualifiedReference{{
		URLs:        []LabeledURL{{URL: "https://docs.example.org/guide", Label: "example.org"}},
		Explanation: "fallback",
	}}
	for _, raw := range shapes {
		got := decodeRefs(t, raw).Qualify("", "fallback")
		assert.Equal(t, want, got, raw)
	}
}

func TestReference_QualifyKeepsAuthoredText(t *testing.T) {
	rs := References{
		{URLs: []LabeledURL{{URL: "https://x", Label: "Mine"}}, Explanation: "authored"},
		{URLs: []LabeledURL{{URL: "https://y"}}},
		{URLs: []LabeledURL{{URL: "  "}}},
	}

	got := rs.Qualify("Default", "generated")

	require.Len(t, got, 2)
	assert.Equal(t, "Mine", got[0].URLs[0].Label)
	assert.Equal(t, "authored", got[0].Explanation)
	assert.Equal(t, "Default", got[1].URLs[0].Label)
	assert.Equal(t, "generated", got[1].Explanation)
}

func TestURLLabel(t *testing.T) {
	assert.Equal(t, "github.com", URLLabel("https://www.github.com/RabbyHub/Rabby"))
	assert.Equal(t, "rabby.io", URLLabel("https://docs.rabby.io/privacy"))
	assert.Equal(t, "Reference", URLLabel("not a url"))
}

func TestWithRef_Flatten(t *testing.T) {
	w := WithRef{Ref: decodeRefs(t, `["https://a", {"url": ["https://b", "https://c"]}]`)}

	urls := RefsOf(w).Flatten()

	require.Len(t, urls, 3)
	assert.Equal(t, "https://c", urls[2].URL)
}
