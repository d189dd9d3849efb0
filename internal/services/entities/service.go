package entities

import (
	"context"
	"sort"

	"walletcat/internal/domain"
	"walletcat/internal/ports"
)

type Service struct {
	store ports.CatalogReader
}

func New(store ports.CatalogReader) *Service { return &Service{store: store} }

func (s *Service) List(ctx context.Context) ([]*domain.Entity, error) {
	return s.store.ListEntities(ctx)
}

// Detail is an entity together with the wallets whose data mentions it.
type Detail struct {
	*domain.Entity
	Roles        []string `json:"roles"`
	ReferencedBy []string `json:"referencedBy"`
}

func (s *Service) Get(ctx context.Context, id string) (Detail, error) {
	e, err := s.store.GetEntity(ctx, id)
	if err != nil {
		return Detail{}, err
	}
	ws, err := s.store.ListWallets(ctx)
	if err != nil {
		return Detail{}, err
	}
	d := Detail{Entity: e, Roles: e.Type.Roles(), ReferencedBy: []string{}}
	if d.Roles == nil {
		d.Roles = []string{}
	}
	for _, w := range ws {
		for _, ref := range w.Features.EntityRefs() {
			if ref.ID == id {
				d.ReferencedBy = append(d.ReferencedBy, w.ID())
				break
			}
		}
	}
	sort.Strings(d.ReferencedBy)
	return d, nil
}
