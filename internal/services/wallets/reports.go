package wallets

import (
	"context"
	"fmt"
	"time"

	"walletcat/internal/domain"
)

// LeakingEntity is one entity that receives a piece of user data.
type LeakingEntity struct {
	ID         string                           `json:"id"`
	Name       string                           `json:"name"`
	Level      domain.Leak                      `json:"level"`
	References []domain.FullyQualifiedReference `json:"references"`
}

type LeakReport struct {
	Wallet  string           `json:"wallet"`
	Variant domain.Variant   `json:"variant"`
	Field   domain.LeakField `json:"field"`
	Min     domain.Leak      `json:"min"`
	// Known is false when the wallet's data collection is not documented for the variant.
	Known    bool            `json:"known"`
	Entities []LeakingEntity `json:"entities"`
}

// Leaks lists the entities that learn field at level min or worse.
func (s *Service) Leaks(ctx context.Context, id string, v domain.Variant, field domain.LeakField, min domain.Leak) (LeakReport, error) {
	f, err := s.Features(ctx, id, v)
	if err != nil {
		return LeakReport{}, err
	}
	rep := LeakReport{Wallet: id, Variant: f.Variant, Field: field, Min: min, Entities: []LeakingEntity{}}
	dc := f.Privacy.DataCollection
	if dc == nil {
		return rep, nil
	}
	rep.Known = true
	for _, e := range dc.EntitiesLeaking(field, min) {
		name := e.Entity.Name(e.Entity.ID)
		rep.Entities = append(rep.Entities, LeakingEntity{
			ID:         e.Entity.ID,
			Name:       name,
			Level:      e.Leaks.Level(field),
			References: e.Leaks.Ref.Qualify(name, fmt.Sprintf("What %s collects", name)),
		})
	}
	return rep, nil
}

type AuditReport struct {
	Wallet  string         `json:"wallet"`
	Variant domain.Variant `json:"variant"`
	// Checked is false when nobody has looked for audits yet.
	Checked             bool                   `json:"checked"`
	AuditedWithinYear   bool                   `json:"auditedWithinYear"`
	HasUnaddressedFlaws bool                   `json:"hasUnaddressedFlaws"`
	MostRecent          *domain.Date           `json:"mostRecent,omitempty"`
	Audits              []domain.SecurityAudit `json:"audits"`
}

const year = 365 * 24 * time.Hour

// Audits lists the audits covering a variant, newest first.
func (s *Service) Audits(ctx context.Context, id string, v domain.Variant) (AuditReport, error) {
	f, err := s.Features(ctx, id, v)
	if err != nil {
		return AuditReport{}, err
	}
	audits := f.Security.PublicSecurityAudits
	rep := AuditReport{
		Wallet:              id,
		Variant:             f.Variant,
		Checked:             audits != nil,
		AuditedWithinYear:   domain.AuditedWithin(audits, s.now(), year),
		HasUnaddressedFlaws: domain.HasUnaddressedFlaws(audits),
		Audits:              domain.SortAuditsNewestFirst(audits),
	}
	if rep.Audits == nil {
		rep.Audits = []domain.SecurityAudit{}
	}
	if latest, ok := domain.MostRecentAudit(audits); ok {
		d := latest.AuditDate
		rep.MostRecent = &d
	}
	return rep, nil
}
