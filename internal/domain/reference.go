package domain

import (
	"bytes"
	"encoding/json"
	"net/url"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/net/publicsuffix"
)

// LabeledURL is one link of a citation.
type LabeledURL struct {
	URL   string `json:"url"`
	Label string `json:"label,omitempty"`
}

// Reference is a citation: one or more URLs sharing one explanation.
type Reference struct {
	URLs        []LabeledURL `json:"urls"`
	Explanation string       `json:"explanation,omitempty"`
}

// FullyQualifiedReference has a non-empty URL list, non-empty labels and a non-empty explanation.
type FullyQualifiedReference struct {
	URLs        []LabeledURL `json:"urls"`
	Explanation string       `json:"explanation"`
}

// References is the normalized form of every authored "ref" field.
type References []Reference

// Ref builds a single-URL reference.
func Ref(u, explanation string) Reference {
	return Reference{URLs: []LabeledURL{{URL: u}}, Explanation: explanation}
}

// WithRef is embedded by feature details that carry citations.
type WithRef struct {
	Ref References `json:"ref,omitempty"`
}

func (w WithRef) References() References { return w.Ref }

// Referenced is implemented by any value that can cite its sources.
type Referenced interface {
	References() References
}

// RefsOf collects the references of v, if it carries any.
func RefsOf(v any) References {
	if r, ok := v.(Referenced); ok && r != nil {
		return r.References()
	}
	return nil
}

var diag = zap.NewNop().Sugar()

// SetDiagnosticsLogger sets where load-time normalization diagnostics go.
func SetDiagnosticsLogger(l *zap.SugaredLogger) {
	if l == nil {
		l = zap.NewNop().Sugar()
	}
	diag = l
}

// UnmarshalJSON accepts a bare URL, a reference object, or an array mixing both.
// Shapes it cannot interpret are dropped with a diagnostic rather than failing the document.
func (rs *References) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*rs = nil
		return nil
	}
	var items []json.RawMessage
	if trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &items); err != nil {
			diag.Warnw("dropping malformed reference list", "raw", string(trimmed), "error", err)
			*rs = nil
			return nil
		}
	} else {
		items = []json.RawMessage{trimmed}
	}
	out := make(References, 0, len(items))
	for _, item := range items {
		if ref, ok := decodeReference(item); ok {
			out = append(out, ref)
		}
	}
	if len(out) == 0 {
		*rs = nil
		return nil
	}
	*rs = out
	return nil
}

// UnmarshalJSON on a single Reference accepts the same shapes as one element of References.
func (r *Reference) UnmarshalJSON(data []byte) error {
	ref, _ := decodeReference(data)
	*r = ref
	return nil
}

type referenceObject struct {
	URLs        json.RawMessage `json:"urls"`
	URL         json.RawMessage `json:"url"`
	Label       string          `json:"label"`
	Explanation any             `json:"explanation"`
}

func decodeReference(raw json.RawMessage) (Reference, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return Reference{}, false
	}
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil || strings.TrimSpace(s) == "" {
			diag.Warnw("dropping empty reference url", "raw", string(raw))
			return Reference{}, false
		}
		return Reference{URLs: []LabeledURL{{URL: strings.TrimSpace(s)}}}, true
	case '{':
		var obj referenceObject
		if err := json.Unmarshal(raw, &obj); err != nil {
			diag.Warnw("dropping malformed reference object", "raw", string(raw), "error", err)
			return Reference{}, false
		}
		ref := Reference{Explanation: explanationString(obj.Explanation)}
		if len(obj.URLs) > 0 && !isNull(obj.URLs) {
			ref.URLs = decodeURLs(obj.URLs, "")
		}
		if len(obj.URL) > 0 && !isNull(obj.URL) {
			ref.URLs = append(ref.URLs, decodeURLs(obj.URL, obj.Label)...)
		}
		if len(ref.URLs) == 0 {
			diag.Warnw("dropping reference without url", "raw", string(raw))
			return Reference{}, false
		}
		return ref, true
	}
	diag.Warnw("dropping reference of unexpected shape", "raw", string(raw))
	return Reference{}, false
}

// decodeURLs handles url fields that are a string, a {url,label} object, or a list of either.
func decodeURLs(raw json.RawMessage, label string) []LabeledURL {
	raw = bytes.TrimSpace(raw)
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err == nil && strings.TrimSpace(s) != "" {
			return []LabeledURL{{URL: strings.TrimSpace(s), Label: label}}
		}
	case '{':
		var lu struct {
			URL   string `json:"url"`
			Label string `json:"label"`
		}
		if err := json.Unmarshal(raw, &lu); err == nil && strings.TrimSpace(lu.URL) != "" {
			if lu.Label == "" {
				lu.Label = label
			}
			return []LabeledURL{{URL: strings.TrimSpace(lu.URL), Label: lu.Label}}
		}
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err == nil {
			var out []LabeledURL
			for _, item := range items {
				if len(bytes.TrimSpace(item)) == 0 || isNull(item) {
					continue
				}
				out = append(out, decodeURLs(item, label)...)
			}
			return out
		}
	}
	diag.Warnw("dropping url of unexpected shape", "raw", string(raw))
	return nil
}

func explanationString(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case nil:
		return ""
	default:
		b, _ := json.Marshal(t)
		return string(b)
	}
}

// Qualify turns references into fully qualified ones. Empty labels get defaultLabel, or the
// registrable domain of the URL when defaultLabel is empty. Empty explanations get fallback.
func (rs References) Qualify(defaultLabel, fallback string) []FullyQualifiedReference {
	out := make([]FullyQualifiedReference, 0, len(rs))
	for _, r := range rs {
		if fq, ok := r.Qualify(defaultLabel, fallback); ok {
			out = append(out, fq)
		}
	}
	return out
}

func (r Reference) Qualify(defaultLabel, fallback string) (FullyQualifiedReference, bool) {
	urls := make([]LabeledURL, 0, len(r.URLs))
	for _, u := range r.URLs {
		if strings.TrimSpace(u.URL) == "" {
			continue
		}
		label := u.Label
		if label == "" {
			label = defaultLabel
		}
		if label == "" {
			label = URLLabel(u.URL)
		}
		urls = append(urls, LabeledURL{URL: u.URL, Label: label})
	}
	if len(urls) == 0 {
		return FullyQualifiedReference{}, false
	}
	explanation := r.Explanation
	if explanation == "" {
		explanation = fallback
	}
	return FullyQualifiedReference{URLs: urls, Explanation: explanation}, true
}

// URLLabel derives a short label from a URL: its registrable domain, else its host.
func URLLabel(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Hostname() == "" {
		return "Reference"
	}
	host := strings.TrimPrefix(u.Hostname(), "www.")
	if registrable, err := publicsuffix.EffectiveTLDPlusOne(host); err == nil {
		return registrable
	}
	return host
}

// Flatten returns every URL of every reference, in order.
func (rs References) Flatten() []LabeledURL {
	var out []LabeledURL
	for _, r := range rs {
		out = append(out, r.URLs...)
	}
	return out
}
