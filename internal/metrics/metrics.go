// Package metrics exposes Prometheus collectors for the quote pipeline
// and the trade ledger. Everything registers on the default registry
// and is served by the /metrics endpoint.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SourceAttempts counts individual fetch attempts, including retries.
	SourceAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stockfolio_source_attempts_total",
		Help: "Quote fetch attempts per source, retries included.",
	}, []string{"source"})

	// SourceFailures counts failed attempts by source and failure kind
	// (unavailable, parse, rate_limited).
	SourceFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stockfolio_source_failures_total",
		Help: "Failed quote fetch attempts per source and failure kind.",
	}, []string{"source", "kind"})

	// SyntheticFallbacks counts quotes served by the synthetic generator.
	SyntheticFallbacks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stockfolio_synthetic_fallbacks_total",
		Help: "Quotes fabricated after every live source failed.",
	})

	// FetchDuration observes end-to-end acquisition latency per outcome
	// (real, synthetic, cache).
	FetchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "stockfolio_quote_fetch_duration_seconds",
		Help:    "End-to-end quote acquisition latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"outcome"})

	// CacheHits counts lookups answered from Redis before any source ran.
	CacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stockfolio_quote_cache_hits_total",
		Help: "Quote lookups served from the Redis cache.",
	})

	// TradesAppended counts ledger appends by action.
	TradesAppended = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stockfolio_trades_appended_total",
		Help: "Trades appended to the ledger.",
	}, []string{"action"})

	// TradesRejected counts appends rejected by validation.
	TradesRejected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stockfolio_trades_rejected_total",
		Help: "Trade submissions rejected before reaching the ledger.",
	})
)
