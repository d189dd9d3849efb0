package domain

import "time"

// Records persisted alongside the catalog snapshot. Authored documents are the
// source of truth; these track how they got into the store.

type ImportStatus string

const (
	ImportQueued    ImportStatus = "queued"
	ImportRunning   ImportStatus = "running"
	ImportCompleted ImportStatus = "completed"
	ImportFailed    ImportStatus = "failed"
)

// CatalogImport is one run of loading a data directory into the snapshot store.
type CatalogImport struct {
	ID         string       `json:"id"`
	Source     string       `json:"source"`
	Status     ImportStatus `json:"status"`
	Wallets    int          `json:"wallets"`
	Entities   int          `json:"entities"`
	Warnings   []string     `json:"warnings,omitempty"`
	Error      string       `json:"error,omitempty"`
	Attempts   int          `json:"attempts"`
	QueuedAt   time.Time    `json:"queuedAt"`
	StartedAt  *time.Time   `json:"startedAt,omitempty"`
	FinishedAt *time.Time   `json:"finishedAt,omitempty"`
}

// Done reports whether the import reached a terminal state.
func (i CatalogImport) Done() bool {
	return i.Status == ImportCompleted || i.Status == ImportFailed
}

// ImportResult is what a successful import reports back to the queue.
type ImportResult struct {
	Wallets  int
	Entities int
	Warnings []string
}

// WalletSummary is the list view of a wallet.
type WalletSummary struct {
	ID          string        `json:"id"`
	DisplayName string        `json:"displayName"`
	Variants    []Variant     `json:"variants"`
	Forms       []VariantForm `json:"forms"`
	License     string        `json:"license,omitempty"`
	OpenSource  bool          `json:"openSource"` // free and open source license
	LastUpdated Date          `json:"lastUpdated"`
}

// VariantForm describes one declared variant for a variant picker.
type VariantForm struct {
	Variant Variant `json:"variant"`
	Name    string  `json:"name"`
	RunsOn  string  `json:"runsOn"`
	Tooltip string  `json:"tooltip"`
	Query   string  `json:"query,omitempty"` // empty for single-variant wallets
}

func SummarizeWallet(w *Wallet) WalletSummary {
	sum := WalletSummary{
		ID:          w.Metadata.ID,
		DisplayName: w.Metadata.DisplayName,
		Variants:    w.Variants.List(),
		Forms:       []VariantForm{},
		LastUpdated: w.Metadata.LastUpdated,
	}
	for _, v := range sum.Variants {
		sum.Forms = append(sum.Forms, VariantForm{
			Variant: v,
			Name:    v.Name(true),
			RunsOn:  v.RunsOn(),
			Tooltip: w.Variants.Tooltip(v),
			Query:   w.Variants.URLQuery(v),
		})
	}
	if v := w.Variants.Default(); v != "" {
		if lic := w.Features.License.Resolve(v); lic != nil {
			sum.License = lic.Value.Name()
			sum.OpenSource = lic.Value.IsFOSS()
		}
	}
	return sum
}
