package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

type OnchainLeaks struct {
	Pseudonym Leak `json:"pseudonym,omitempty"`
	WithRef
}

// EntityLeaks is what one entity learns about the user.
type EntityLeaks struct {
	Entity EntityRef `json:"entity"`
	Leaks  Leaks     `json:"leaks"`
}

type DataCollection struct {
	Onchain             OnchainLeaks  `json:"onchain"`
	CollectedByEntities []EntityLeaks `json:"collectedByEntities"`
}

// EntitiesLeaking returns the entries whose leak level for field is at least min.
// With min = LeakAlways only unconditional leaks match; LeakOptIn also matches conditional ones.
func (d DataCollection) EntitiesLeaking(field LeakField, min Leak) []EntityLeaks {
	var out []EntityLeaks
	for _, e := range d.CollectedByEntities {
		if e.Leaks.Level(field).AtLeast(min) {
			out = append(out, e)
		}
	}
	return out
}

// WithMultiAddressPolicy returns the entries that state how they handle multiple addresses.
func (d DataCollection) WithMultiAddressPolicy() []EntityLeaks {
	var out []EntityLeaks
	for _, e := range d.CollectedByEntities {
		if e.Leaks.MultiAddress != nil {
			out = append(out, e)
		}
	}
	return out
}

type L2SupportLevel string

const (
	L2SupportedWithForceInclusion L2SupportLevel = "SUPPORTED_WITH_FORCE_INCLUSION_OF_L2_TRANSACTIONS"
	L2SupportedNoForceInclusion   L2SupportLevel = "SUPPORTED_BUT_NO_FORCE_INCLUSION"
	L2NotSupportedByDefault       L2SupportLevel = "NOT_SUPPORTED_BY_WALLET_BY_DEFAULT"
)

// L2Inclusion is authored either as a bare level or as {level, ref}.
type L2Inclusion struct {
	Level L2SupportLevel
	Ref   References
}

func (l L2Inclusion) References() References { return l.Ref }

func (l *L2Inclusion) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*l = L2Inclusion{Level: L2SupportLevel(s)}
		return nil
	}
	var obj struct {
		Level L2SupportLevel `json:"level"`
		Ref   References     `json:"ref"`
	}
	if err := json.Unmarshal(trimmed, &obj); err != nil {
		return fmt.Errorf("l2 support: %w", err)
	}
	*l = L2Inclusion{Level: obj.Level, Ref: obj.Ref}
	return nil
}

func (l L2Inclusion) MarshalJSON() ([]byte, error) {
	if len(l.Ref) == 0 {
		return json.Marshal(string(l.Level))
	}
	return json.Marshal(struct {
		Level L2SupportLevel `json:"level"`
		Ref   References     `json:"ref"`
	}{l.Level, l.Ref})
}

type L1Submission struct {
	SelfBroadcastViaDirectGossip   RefSupport `json:"selfBroadcastViaDirectGossip"`
	SelfBroadcastViaSelfHostedNode RefSupport `json:"selfBroadcastViaSelfHostedNode"`
}

type L2Submission struct {
	Arbitrum *L2Inclusion `json:"arbitrum"`
	OpStack  *L2Inclusion `json:"opStack"`
}

type TransactionSubmission struct {
	L1 L1Submission `json:"l1"`
	L2 L2Submission `json:"l2"`
	WithRef
}
