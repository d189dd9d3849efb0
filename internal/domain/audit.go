package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"
)

type SecurityFlawSeverity string

const (
	SeverityCritical SecurityFlawSeverity = "CRITICAL"
	SeverityHigh     SecurityFlawSeverity = "HIGH"
	SeverityMedium   SecurityFlawSeverity = "MEDIUM"
	SeverityLow      SecurityFlawSeverity = "LOW"
)

// Name is the human-readable severity.
func (s SecurityFlawSeverity) Name() string {
	switch s {
	case SeverityCritical:
		return "Critical"
	case SeverityHigh:
		return "High"
	case SeverityMedium:
		return "Medium"
	case SeverityLow:
		return "Low"
	}
	return string(s)
}

type FlawStatus string

const (
	FlawFixed    FlawStatus = "FIXED"
	FlawNotFixed FlawStatus = "NOT_FIXED"
)

type SecurityFlaw struct {
	Name                       string               `json:"name"`
	SeverityAtAuditPublication SecurityFlawSeverity `json:"severityAtAuditPublication"`
	PresentStatus              FlawStatus           `json:"presentStatus"`
}

type OutcomeKind string

const (
	OutcomeAllFixed  OutcomeKind = "ALL_FIXED"
	OutcomeNoneFound OutcomeKind = "NONE_FOUND"
	OutcomeFlaws     OutcomeKind = "FLAWS"
)

// AuditOutcome is ALL_FIXED, NONE_FOUND, or a non-empty flaw list.
type AuditOutcome struct {
	Kind  OutcomeKind
	Flaws []SecurityFlaw
}

func (o AuditOutcome) HasUnfixed() bool {
	for _, f := range o.Flaws {
		if f.PresentStatus == FlawNotFixed {
			return true
		}
	}
	return false
}

func (o *AuditOutcome) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var flaws []SecurityFlaw
		if err := json.Unmarshal(trimmed, &flaws); err != nil {
			return fmt.Errorf("unpatched flaws: %w", err)
		}
		if len(flaws) == 0 {
			return fmt.Errorf("unpatched flaws: empty list, use NONE_FOUND")
		}
		*o = AuditOutcome{Kind: OutcomeFlaws, Flaws: flaws}
		return nil
	}
	var s string
	if err := json.Unmarshal(trimmed, &s); err != nil {
		return fmt.Errorf("unpatched flaws: %w", err)
	}
	switch OutcomeKind(s) {
	case OutcomeAllFixed, OutcomeNoneFound:
		*o = AuditOutcome{Kind: OutcomeKind(s)}
		return nil
	}
	return fmt.Errorf("unpatched flaws: unknown value %q", s)
}

func (o AuditOutcome) MarshalJSON() ([]byte, error) {
	if o.Kind == OutcomeFlaws {
		return json.Marshal(o.Flaws)
	}
	return json.Marshal(string(o.Kind))
}

const allVariantsScope = "ALL_VARIANTS"

// AuditScope is ALL_VARIANTS or a per-variant map.
type AuditScope struct {
	All      bool
	Variants map[Variant]bool
}

func AllVariantsScope() AuditScope { return AuditScope{All: true} }

func (s AuditScope) Includes(v Variant) bool {
	return s.All || s.Variants[v]
}

func (s *AuditScope) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		if str != allVariantsScope {
			return fmt.Errorf("variants scope: unknown value %q", str)
		}
		*s = AuditScope{All: true}
		return nil
	}
	var vs Variants
	if err := json.Unmarshal(data, &vs); err != nil {
		return fmt.Errorf("variants scope: %w", err)
	}
	*s = AuditScope{Variants: vs}
	return nil
}

func (s AuditScope) MarshalJSON() ([]byte, error) {
	if s.All {
		return json.Marshal(allVariantsScope)
	}
	out := make(map[string]bool, len(s.Variants))
	for k, v := range s.Variants {
		out[string(k)] = v
	}
	return json.Marshal(out)
}

type CodeSnapshot struct {
	Date   Date   `json:"date"`
	Commit string `json:"commit,omitempty"`
	Tag    string `json:"tag,omitempty"`
}

// SecurityAudit is one authored audit event.
type SecurityAudit struct {
	Auditor        EntityRef    `json:"auditor"`
	AuditDate      Date         `json:"auditDate"`
	Ref            References   `json:"ref"`
	VariantsScope  AuditScope   `json:"variantsScope"`
	CodeSnapshot   CodeSnapshot `json:"codeSnapshot"`
	UnpatchedFlaws AuditOutcome `json:"unpatchedFlaws"`
}

func (a SecurityAudit) References() References { return a.Ref }

// ID is stable across loads: auditor, date and snapshot commit.
func (a SecurityAudit) ID() string {
	parts := []string{a.Auditor.ID, a.AuditDate.String()}
	if a.CodeSnapshot.Commit != "" {
		parts = append(parts, a.CodeSnapshot.Commit)
	}
	return strings.Join(parts, "-")
}

// SortAuditsNewestFirst returns a sorted copy. Audits with equal dates keep authored order.
func SortAuditsNewestFirst(audits []SecurityAudit) []SecurityAudit {
	out := append([]SecurityAudit(nil), audits...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].AuditDate.After(out[j].AuditDate.Time)
	})
	return out
}

// MostRecentAudit returns the newest audit, if any.
func MostRecentAudit(audits []SecurityAudit) (SecurityAudit, bool) {
	if len(audits) == 0 {
		return SecurityAudit{}, false
	}
	return SortAuditsNewestFirst(audits)[0], true
}

// AuditedWithin reports whether the newest audit is no older than d at now.
func AuditedWithin(audits []SecurityAudit, now time.Time, d time.Duration) bool {
	latest, ok := MostRecentAudit(audits)
	if !ok {
		return false
	}
	return now.Sub(latest.AuditDate.Time) <= d
}

// HasUnaddressedFlaws reports whether any audit still lists a NOT_FIXED flaw.
func HasUnaddressedFlaws(audits []SecurityAudit) bool {
	for _, a := range audits {
		if a.UnpatchedFlaws.HasUnfixed() {
			return true
		}
	}
	return false
}
