package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// Variant is a runtime form a wallet ships as.
type Variant string

const (
	VariantMobile   Variant = "mobile"
	VariantBrowser  Variant = "browser"
	VariantDesktop  Variant = "desktop"
	VariantEmbedded Variant = "embedded"
	VariantHardware Variant = "hardware"
)

// AllVariants lists every variant in canonical order.
var AllVariants = []Variant{VariantMobile, VariantBrowser, VariantDesktop, VariantEmbedded, VariantHardware}

func ParseVariant(s string) (Variant, error) {
	v := Variant(strings.ToLower(strings.TrimSpace(s)))
	if !v.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownVariant, s)
	}
	return v, nil
}

func (v Variant) Valid() bool {
	switch v {
	case VariantMobile, VariantBrowser, VariantDesktop, VariantEmbedded, VariantHardware:
		return true
	}
	return false
}

func (v Variant) order() int {
	for i, c := range AllVariants {
		if c == v {
			return i
		}
	}
	return len(AllVariants)
}

// Name returns the human-readable variant name.
func (v Variant) Name(titleCase bool) string {
	name := string(v)
	if titleCase && name != "" {
		return strings.ToUpper(name[:1]) + name[1:]
	}
	return name
}

// RunsOn fits in a sentence like "This wallet runs <RunsOn>".
func (v Variant) RunsOn() string {
	switch v {
	case VariantBrowser:
		return "as a browser extension"
	case VariantDesktop:
		return "as a desktop application"
	case VariantMobile:
		return "on mobile"
	case VariantEmbedded:
		return "within other applications"
	case VariantHardware:
		return "as a hardware wallet"
	}
	return ""
}

// Variants is the set of runtime forms a wallet declares.
type Variants map[Variant]bool

// List returns the declared variants in canonical order.
func (vs Variants) List() []Variant {
	out := make([]Variant, 0, len(vs))
	for _, v := range AllVariants {
		if vs[v] {
			out = append(out, v)
		}
	}
	return out
}

func (vs Variants) Has(v Variant) bool { return vs[v] }

func (vs Variants) Single() bool { return len(vs.List()) == 1 }

// Default is the first declared variant, or "" if none.
func (vs Variants) Default() Variant {
	if l := vs.List(); len(l) > 0 {
		return l[0]
	}
	return ""
}

// Tooltip is the label of a variant picker entry.
func (vs Variants) Tooltip(v Variant) string {
	if vs.Single() {
		return v.Name(true) + "-only wallet"
	}
	return "View " + v.Name(false) + " version"
}

// URLQuery returns a "?<variant>" query string when v is meaningful for this set.
func (vs Variants) URLQuery(v Variant) string {
	if v == "" || vs.Single() || !vs.Has(v) {
		return ""
	}
	return "?" + string(v)
}

// FromURLQuery parses the raw query of a wallet page ("mobile" or "?mobile").
func (vs Variants) FromURLQuery(rawQuery string) (Variant, bool) {
	q := strings.TrimPrefix(rawQuery, "?")
	if q == "" {
		return "", false
	}
	if unescaped, err := url.QueryUnescape(q); err == nil {
		q = unescaped
	}
	v := Variant(q)
	if !v.Valid() || !vs.Has(v) {
		return "", false
	}
	return v, true
}

func (vs *Variants) UnmarshalJSON(data []byte) error {
	var raw map[string]bool
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("variants: %w", err)
	}
	out := make(Variants, len(raw))
	for k, on := range raw {
		v, err := ParseVariant(k)
		if err != nil {
			return err
		}
		out[v] = on
	}
	*vs = out
	return nil
}

type featureKind uint8

const (
	featureUnknown featureKind = iota
	featureSingle
	featurePerVariant
)

// VariantFeature holds a feature value that may depend on the wallet variant.
// The zero value is the unknown feature ("not yet evaluated").
type VariantFeature[F any] struct {
	kind       featureKind
	single     F
	perVariant map[Variant]*F
}

// Single wraps a value that applies to all variants.
func Single[F any](v F) VariantFeature[F] {
	return VariantFeature[F]{kind: featureSingle, single: v}
}

// PerVariant wraps per-variant values. A nil entry means "not evaluated for this variant".
func PerVariant[F any](m map[Variant]*F) VariantFeature[F] {
	cp := make(map[Variant]*F, len(m))
	for k, v := range m {
		cp[k] = v
	}
	return VariantFeature[F]{kind: featurePerVariant, perVariant: cp}
}

func (f VariantFeature[F]) IsUnknown() bool    { return f.kind == featureUnknown }
func (f VariantFeature[F]) IsPerVariant() bool { return f.kind == featurePerVariant }

// Resolve returns the value for v, or nil when unknown or absent for v.
func (f VariantFeature[F]) Resolve(v Variant) *F {
	switch f.kind {
	case featureSingle:
		val := f.single
		return &val
	case featurePerVariant:
		p, ok := f.perVariant[v]
		if !ok || p == nil {
			return nil
		}
		val := *p
		return &val
	}
	return nil
}

// VariantKeys lists the variants with an explicit entry, in canonical order.
// It reports false when the feature is not in per-variant form.
func (f VariantFeature[F]) VariantKeys() ([]Variant, bool) {
	if f.kind != featurePerVariant {
		return nil, false
	}
	keys := make([]Variant, 0, len(f.perVariant))
	for k := range f.perVariant {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].order() < keys[j].order() })
	return keys, true
}

// Values returns pointers to the stored values so the loader can link them in place.
func (f *VariantFeature[F]) Values() []*F {
	switch f.kind {
	case featureSingle:
		return []*F{&f.single}
	case featurePerVariant:
		keys, _ := f.VariantKeys()
		out := make([]*F, 0, len(keys))
		for _, k := range keys {
			if p := f.perVariant[k]; p != nil {
				out = append(out, p)
			}
		}
		return out
	}
	return nil
}

// UnmarshalJSON accepts null, a bare value, or an object whose keys are all variant names.
func (f *VariantFeature[F]) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*f = VariantFeature[F]{}
		return nil
	}
	if trimmed[0] == '{' {
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &obj); err == nil && len(obj) > 0 && allVariantKeys(obj) {
			m := make(map[Variant]*F, len(obj))
			for k, raw := range obj {
				if isNull(raw) {
					m[Variant(k)] = nil
					continue
				}
				var v F
				if err := json.Unmarshal(raw, &v); err != nil {
					return fmt.Errorf("variant %s: %w", k, err)
				}
				m[Variant(k)] = &v
			}
			*f = VariantFeature[F]{kind: featurePerVariant, perVariant: m}
			return nil
		}
	}
	var v F
	if err := json.Unmarshal(trimmed, &v); err != nil {
		return err
	}
	*f = Single(v)
	return nil
}

func (f VariantFeature[F]) MarshalJSON() ([]byte, error) {
	switch f.kind {
	case featureSingle:
		return json.Marshal(f.single)
	case featurePerVariant:
		out := make(map[string]*F, len(f.perVariant))
		for k, v := range f.perVariant {
			out[string(k)] = v
		}
		return json.Marshal(out)
	}
	return []byte("null"), nil
}

func allVariantKeys(obj map[string]json.RawMessage) bool {
	for k := range obj {
		if !Variant(k).Valid() {
			return false
		}
	}
	return true
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
