package entities

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"walletcat/internal/catalog"
	"walletcat/internal/domain"
)

func TestService_Get(t *testing.T) {
	w := &domain.Wallet{
		Metadata: domain.Metadata{ID: "rabby"},
		Variants: domain.Variants{domain.VariantBrowser: true},
	}
	w.Features.Security.PublicSecurityAudits = []domain.SecurityAudit{{Auditor: domain.EntityRef{ID: "slowmist"}}}
	other := &domain.Wallet{Metadata: domain.Metadata{ID: "daimo"}, Variants: domain.Variants{domain.VariantMobile: true}}

	snap, issues := catalog.NewSnapshot(
		[]*domain.Wallet{w, other},
		[]*domain.Entity{{ID: "slowmist", Name: "SlowMist", Type: domain.EntityType{SecurityAuditor: true, Corporate: true}}, {ID: "pimlico", Name: "Pimlico"}},
	)
	require.Empty(t, issues)
	svc := New(catalog.FromSnapshot(snap))
	ctx := context.Background()

	d, err := svc.Get(ctx, "slowmist")
	require.NoError(t, err)
	assert.Equal(t, "SlowMist", d.Name)
	assert.Equal(t, []string{"corporate", "securityAuditor"}, d.Roles)
	assert.Equal(t, []string{"rabby"}, d.ReferencedBy)

	p, err := svc.Get(ctx, "pimlico")
	require.NoError(t, err)
	assert.Empty(t, p.ReferencedBy)
	assert.NotNil(t, p.Roles)

	_, err = svc.Get(ctx, "nobody")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	all, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
