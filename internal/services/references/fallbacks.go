package references

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"walletcat/internal/domain"
)

type fallbackKey struct {
	wallet    string
	attribute Attribute
}

// FallbackTable holds per-wallet references used when a wallet's data cites nothing for an
// attribute. A table is not modified after it is built.
type FallbackTable struct {
	entries map[fallbackKey]fqRefs
}

// Lookup returns a copy of the fallback references for a wallet attribute.
func (t *FallbackTable) Lookup(walletID string, a Attribute) fqRefs {
	if t == nil {
		return nil
	}
	refs := t.entries[fallbackKey{walletID, a}]
	if len(refs) == 0 {
		return nil
	}
	out := make(fqRefs, len(refs))
	for i, r := range refs {
		out[i] = domain.FullyQualifiedReference{URLs: append([]domain.LabeledURL(nil), r.URLs...), Explanation: r.Explanation}
	}
	return out
}

func (t *FallbackTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}

func (t *FallbackTable) with(walletID string, a Attribute, refs fqRefs) *FallbackTable {
	t.entries[fallbackKey{walletID, a}] = refs
	return t
}

func single(u, label, explanation string) fqRefs {
	return fqRefs{{URLs: []domain.LabeledURL{{URL: u, Label: label}}, Explanation: explanation}}
}

// DefaultFallbacks is the built-in table.
func DefaultFallbacks() *FallbackTable {
	t := &FallbackTable{entries: make(map[fallbackKey]fqRefs)}
	return t.
		with("daimo", OpenSource, single("https://github.com/daimo-eth/daimo/blob/master/LICENSE",
			"Daimo License File", "Daimo uses the GPL-3.0 license for its source code")).
		with("rainbow", OpenSource, single("https://github.com/rainbow-me/rainbow/blob/develop/LICENSE",
			"Rainbow License File", "Rainbow uses the GPL-3.0 license for its source code")).
		with("coinbase", OpenSource, single("https://github.com/coinbase/wallet-mobile/blob/master/LICENSE.md",
			"Coinbase Wallet License File", "Coinbase Wallet uses the BSD-3-Clause license for its source code")).
		with("coinbase", SecurityAudits, single("https://coinbase.com/security",
			"Coinbase Security", "Coinbase Wallet has undergone a recent security audit with all faults addressed.")).
		with("daimo", ScamPrevention, single("https://github.com/daimo-eth/daimo/blob/a960ddbbc0cb486f21b8460d22cebefc6376aac9/apps/daimo-mobile/src/view/screen/send/SendTransferScreen.tsx#L234-L238",
			"Daimo code on GitHub", "Daimo shows a warning when sending funds to a user that you have not sent funds to in the past.")).
		with("rabby", ScamPrevention, single("https://github.com/RabbyHub/rabby-security-engine",
			"Rabby Security engine", "Rabby security engine provides scam protection features."))
}

type fallbackFile struct {
	Fallbacks []fallbackEntry `yaml:"fallbacks"`
}

type fallbackEntry struct {
	Wallet     string          `yaml:"wallet"`
	Category   string          `yaml:"category"`
	Attribute  string          `yaml:"attribute"`
	References []fallbackRefIn `yaml:"references"`
}

type fallbackRefIn struct {
	URLs []struct {
		URL   string `yaml:"url"`
		Label string `yaml:"label"`
	} `yaml:"urls"`
	Explanation string `yaml:"explanation"`
}

// ParseFallbacks reads a fallbacks document and applies it on top of base. An entry with no
// references removes the base entry.
func ParseFallbacks(r io.Reader, base *FallbackTable) (*FallbackTable, error) {
	var doc fallbackFile
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("fallbacks: %w", err)
	}
	out := &FallbackTable{entries: make(map[fallbackKey]fqRefs, base.Len()+len(doc.Fallbacks))}
	if base != nil {
		for k, v := range base.entries {
			out.entries[k] = v
		}
	}
	for i, e := range doc.Fallbacks {
		a, err := ParseAttribute(e.Category, e.Attribute)
		if err != nil {
			return nil, fmt.Errorf("fallbacks[%d]: %w", i, err)
		}
		if strings.TrimSpace(e.Wallet) == "" {
			return nil, fmt.Errorf("fallbacks[%d]: wallet is required", i)
		}
		key := fallbackKey{e.Wallet, a}
		if len(e.References) == 0 {
			delete(out.entries, key)
			continue
		}
		refs := make(fqRefs, 0, len(e.References))
		for j, in := range e.References {
			r := domain.Reference{Explanation: in.Explanation}
			for _, u := range in.URLs {
				r.URLs = append(r.URLs, domain.LabeledURL{URL: u.URL, Label: u.Label})
			}
			fq, ok := r.Qualify("", "")
			if !ok || fq.Explanation == "" {
				return nil, fmt.Errorf("fallbacks[%d].references[%d]: needs at least one url and an explanation", i, j)
			}
			refs = append(refs, fq)
		}
		out.entries[key] = refs
	}
	return out, nil
}

// LoadFallbackFile applies the file at path on top of the built-in table. A missing file
// yields the built-in table.
func LoadFallbackFile(path string) (*FallbackTable, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return DefaultFallbacks(), nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseFallbacks(f, DefaultFallbacks())
}
