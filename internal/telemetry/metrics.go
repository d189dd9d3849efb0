package telemetry

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// ReferenceLookups counts attribute reference extractions by attribute and outcome.
	ReferenceLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "walletcat",
			Name:      "reference_lookups_total",
			Help:      "Attribute reference extractions by attribute and source",
		},
		[]string{"attribute", "source"},
	)

	// ReferenceFailures counts handlers that hit data they could not interpret.
	ReferenceFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "walletcat",
			Name:      "reference_failures_total",
			Help:      "Attribute reference handlers that recovered from unexpected data",
		},
		[]string{"attribute"},
	)

	// CatalogLoads counts catalog loads by result.
	CatalogLoads = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "walletcat",
			Name:      "catalog_loads_total",
			Help:      "Catalog loads from a data directory",
		},
		[]string{"result"},
	)

	// LoadIssues counts validation issues found while loading, by severity.
	LoadIssues = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "walletcat",
			Name:      "catalog_load_issues_total",
			Help:      "Validation issues reported while loading the catalog",
		},
		[]string{"severity"},
	)

	// ResolveCache counts resolved-feature cache lookups.
	ResolveCache = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "walletcat",
			Name:      "resolve_cache_total",
			Help:      "Resolved feature cache lookups",
		},
		[]string{"result"},
	)

	// Imports counts finished catalog imports by status.
	Imports = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "walletcat",
			Name:      "imports_total",
			Help:      "Catalog imports that reached a terminal state",
		},
		[]string{"status"},
	)

	once sync.Once
)

// InitMetrics registers the metrics with the default registry. Safe to call more than once.
func InitMetrics() {
	once.Do(func() {
		prometheus.MustRegister(ReferenceLookups, ReferenceFailures, CatalogLoads, LoadIssues, ResolveCache, Imports)
	})
}
