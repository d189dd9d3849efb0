package catalog

import (
	"fmt"
	"strings"

	"walletcat/internal/domain"
)

type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue is one problem found while loading. Errors block a snapshot from being served,
// warnings do not.
type Issue struct {
	Severity Severity `json:"severity"`
	File     string   `json:"file,omitempty"`
	Subject  string   `json:"subject,omitempty"`
	Path     string   `json:"path,omitempty"`
	Message  string   `json:"message"`
}

func (i Issue) String() string {
	var b strings.Builder
	b.WriteString(string(i.Severity))
	if i.File != "" {
		b.WriteString(" " + i.File)
	}
	if i.Subject != "" {
		b.WriteString(" [" + i.Subject + "]")
	}
	if i.Path != "" {
		b.WriteString(" " + i.Path)
	}
	b.WriteString(": " + i.Message)
	return b.String()
}

type Issues []Issue

// Errors returns only the blocking issues.
func (is Issues) Errors() Issues {
	var out Issues
	for _, i := range is {
		if i.Severity == SeverityError {
			out = append(out, i)
		}
	}
	return out
}

func (is Issues) HasErrors() bool { return len(is.Errors()) > 0 }

// Summary joins up to n issues into one line.
func (is Issues) Summary(n int) string {
	parts := make([]string, 0, n)
	for i, issue := range is {
		if i == n {
			parts = append(parts, fmt.Sprintf("and %d more", len(is)-n))
			break
		}
		parts = append(parts, issue.String())
	}
	return strings.Join(parts, "; ")
}

// ValidateWallet checks a decoded wallet against its declared variants.
func ValidateWallet(w *domain.Wallet) Issues {
	var issues Issues
	declared := w.Variants.List()
	if len(declared) == 0 {
		issues = append(issues, Issue{Severity: SeverityError, Subject: w.ID(), Message: "no variant declared"})
		return issues
	}
	if w.Metadata.DisplayName == "" {
		issues = append(issues, Issue{Severity: SeverityWarning, Subject: w.ID(), Path: "metadata.displayName", Message: "missing display name"})
	}

	for _, leaf := range w.Features.Leaves() {
		keys, perVariant := leaf.Leaf.VariantKeys()
		if !perVariant {
			continue
		}
		have := make(map[domain.Variant]bool, len(keys))
		for _, k := range keys {
			have[k] = true
			if !w.Variants.Has(k) {
				issues = append(issues, Issue{Severity: SeverityWarning, Subject: w.ID(), Path: leaf.Path,
					Message: fmt.Sprintf("entry for undeclared variant %s", k)})
			}
		}
		for _, v := range declared {
			if !have[v] {
				issues = append(issues, Issue{Severity: SeverityWarning, Subject: w.ID(), Path: leaf.Path,
					Message: fmt.Sprintf("no entry for declared variant %s", v)})
			}
		}
	}

	for _, a := range w.Features.Security.PublicSecurityAudits {
		if a.AuditDate.IsZero() {
			issues = append(issues, Issue{Severity: SeverityError, Subject: w.ID(), Path: "security.publicSecurityAudits",
				Message: fmt.Sprintf("audit by %s has no date", a.Auditor.ID)})
		}
		if a.VariantsScope.All {
			continue
		}
		for _, v := range domain.AllVariants {
			if a.VariantsScope.Variants[v] && !w.Variants.Has(v) {
				issues = append(issues, Issue{Severity: SeverityWarning, Subject: w.ID(), Path: "security.publicSecurityAudits",
					Message: fmt.Sprintf("audit %s is scoped to undeclared variant %s", a.ID(), v)})
			}
		}
	}
	return issues
}
