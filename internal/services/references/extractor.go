// Package references finds the citations behind each rated attribute of a wallet.
package references

import (
	"sync/atomic"

	"go.uber.org/zap"

	"walletcat/internal/domain"
	"walletcat/internal/logging"
	"walletcat/internal/telemetry"
)

type Extractor struct {
	fallbacks atomic.Pointer[FallbackTable]
	log       *zap.SugaredLogger
}

// New builds an extractor. A nil table means the built-in fallbacks.
func New(fallbacks *FallbackTable, log *zap.SugaredLogger) *Extractor {
	e := &Extractor{log: logging.OrNop(log)}
	e.SetFallbacks(fallbacks)
	return e
}

// SetFallbacks swaps the fallback table used by later lookups.
func (e *Extractor) SetFallbacks(t *FallbackTable) {
	if t == nil {
		t = DefaultFallbacks()
	}
	e.fallbacks.Store(t)
}

// AttributeReferences returns the fully qualified references backing attr for wallet w.
// An empty variant selects the wallet's default variant. The result is never nil; a
// wallet with nothing to cite yields an empty list.
func (e *Extractor) AttributeReferences(w *domain.Wallet, v domain.Variant, attr Attribute) []domain.FullyQualifiedReference {
	out := e.attributeReferences(w, v, attr)
	if out == nil {
		out = []domain.FullyQualifiedReference{}
	}
	return out
}

func (e *Extractor) attributeReferences(w *domain.Wallet, v domain.Variant, attr Attribute) fqRefs {
	s, ok := strategies[attr]
	if !ok || w == nil {
		return nil
	}
	if v == "" {
		v = w.Variants.Default()
	}
	in := input{wallet: w}
	if v != "" {
		in.f = domain.ResolveFeatures(w.Features, v)
	}

	if s.applies != nil && (v == "" || !s.applies(in)) {
		telemetry.ReferenceLookups.WithLabelValues(attr.String(), "none").Inc()
		return nil
	}

	if v != "" {
		if out := e.run(attr, s.primary, in); len(out) > 0 {
			telemetry.ReferenceLookups.WithLabelValues(attr.String(), "data").Inc()
			return out
		}
	}
	if out := e.fallbacks.Load().Lookup(w.ID(), attr); len(out) > 0 {
		telemetry.ReferenceLookups.WithLabelValues(attr.String(), "fallback").Inc()
		return out
	}
	if s.guess != nil && v != "" {
		if out := e.run(attr, s.guess, in); len(out) > 0 {
			telemetry.ReferenceLookups.WithLabelValues(attr.String(), "guess").Inc()
			return out
		}
	}
	telemetry.ReferenceLookups.WithLabelValues(attr.String(), "none").Inc()
	return nil
}

// run calls h, turning a panic on unexpected data into an empty result.
func (e *Extractor) run(attr Attribute, h handler, in input) (out fqRefs) {
	defer func() {
		if r := recover(); r != nil {
			telemetry.ReferenceFailures.WithLabelValues(attr.String()).Inc()
			e.log.Errorw("reference handler failed", "wallet", in.wallet.ID(), "attribute", attr.String(), "panic", r)
			out = nil
		}
	}()
	return h(in)
}
