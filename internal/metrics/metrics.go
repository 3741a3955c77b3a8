package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Settlement instrumentation. Matched carries "true" when the donation
// drew from a matching pool.
var (
	DonationsSettled = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kindnesshome_donations_settled_total",
		Help: "Completed campaign donation settlements.",
	}, []string{"matched"})

	SettlementFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kindnesshome_settlement_failures_total",
		Help: "Settlement attempts rejected or rolled back.",
	}, []string{"reason"})

	SettlementDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "kindnesshome_settlement_duration_seconds",
		Help:    "Wall time of the settlement transaction.",
		Buckets: prometheus.DefBuckets,
	})

	MatchedDollars = promauto.NewCounter(prometheus.CounterOpts{
		Name: "kindnesshome_matched_dollars_total",
		Help: "Total dollars paid out of matching pools.",
	})

	ReceiptsIssued = promauto.NewCounter(prometheus.CounterOpts{
		Name: "kindnesshome_tax_receipts_issued_total",
		Help: "Tax receipts generated for completed donations.",
	})
)

// RegisterCacheStats exposes the read cache's hit/miss counters as
// gauges polled on scrape. Called once at server startup.
func RegisterCacheStats(stats func() (hits, misses int64)) {
	promauto.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "kindnesshome_cache_hits",
		Help: "Read cache hits since startup.",
	}, func() float64 {
		h, _ := stats()
		return float64(h)
	})
	promauto.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "kindnesshome_cache_misses",
		Help: "Read cache misses since startup.",
	}, func() float64 {
		_, m := stats()
		return float64(m)
	})
}
