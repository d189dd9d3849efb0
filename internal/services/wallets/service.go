package wallets

import (
	"context"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"walletcat/internal/domain"
	"walletcat/internal/logging"
	"walletcat/internal/ports"
	"walletcat/internal/services/references"
	"walletcat/internal/telemetry"
)

type Service struct {
	store    ports.CatalogReader
	refs     *references.Extractor
	resolved *lru.Cache[string, domain.ResolvedFeatures]
	log      *zap.SugaredLogger
	now      func() time.Time
}

func New(store ports.CatalogReader, refs *references.Extractor, cacheSize int, log *zap.SugaredLogger) (*Service, error) {
	cache, err := lru.New[string, domain.ResolvedFeatures](cacheSize)
	if err != nil {
		return nil, err
	}
	return &Service{store: store, refs: refs, resolved: cache, log: logging.OrNop(log), now: time.Now}, nil
}

// Invalidate drops every cached view. Call it after the catalog changes.
func (s *Service) Invalidate() {
	s.resolved.Purge()
	s.log.Debugw("resolved feature cache purged")
}

func (s *Service) List(ctx context.Context) ([]domain.WalletSummary, error) {
	ws, err := s.store.ListWallets(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.WalletSummary, 0, len(ws))
	for _, w := range ws {
		out = append(out, domain.SummarizeWallet(w))
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Wallet, error) {
	return s.store.GetWallet(ctx, id)
}

// Features resolves a wallet for one of its declared variants; empty means the default variant.
// Cached views are keyed by snapshot version, so a replaced snapshot is never served from cache.
func (s *Service) Features(ctx context.Context, id string, v domain.Variant) (domain.ResolvedFeatures, error) {
	version, err := s.store.SnapshotVersion(ctx)
	if err != nil {
		return domain.ResolvedFeatures{}, err
	}
	w, err := s.store.GetWallet(ctx, id)
	if err != nil {
		return domain.ResolvedFeatures{}, err
	}
	picked, err := w.PickVariant(v)
	if err != nil {
		return domain.ResolvedFeatures{}, err
	}
	key := fmt.Sprintf("%d|%s|%s", version, id, picked)
	if cached, ok := s.resolved.Get(key); ok {
		telemetry.ResolveCache.WithLabelValues("hit").Inc()
		return cached, nil
	}
	telemetry.ResolveCache.WithLabelValues("miss").Inc()
	f := domain.ResolveFeatures(w.Features, picked)
	s.resolved.Add(key, f)
	return f, nil
}

// VariantFromQuery reads a wallet page query such as "?desktop". A variant the wallet does not
// declare yields "", which selects the default.
func (s *Service) VariantFromQuery(ctx context.Context, id, rawQuery string) (domain.Variant, error) {
	w, err := s.store.GetWallet(ctx, id)
	if err != nil {
		return "", err
	}
	v, _ := w.Variants.FromURLQuery(rawQuery)
	return v, nil
}

// AttributeReferences is the citation list for one attribute, with the author's note if any.
type AttributeReferences struct {
	Wallet     string                           `json:"wallet"`
	Variant    domain.Variant                   `json:"variant,omitempty"`
	Attribute  references.Attribute             `json:"attribute"`
	References []domain.FullyQualifiedReference `json:"references"`
	Note       string                           `json:"note,omitempty"`
}

func (s *Service) AttributeReferences(ctx context.Context, id string, v domain.Variant, attr references.Attribute) (AttributeReferences, error) {
	w, err := s.store.GetWallet(ctx, id)
	if err != nil {
		return AttributeReferences{}, err
	}
	if v != "" {
		if v, err = w.PickVariant(v); err != nil {
			return AttributeReferences{}, err
		}
	} else {
		v = w.Variants.Default()
	}
	return AttributeReferences{
		Wallet:     w.ID(),
		Variant:    v,
		Attribute:  attr,
		References: s.refs.AttributeReferences(w, v, attr),
		Note:       w.OverrideNote(string(attr.Category), attr.ID),
	}, nil
}
