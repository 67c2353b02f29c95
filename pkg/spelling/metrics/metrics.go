// Package metrics registers the spelling subsystem's Prometheus
// instruments against the default registry, the same one the teacher
// mounts at /metrics via promhttp.Handler() in internal/app/http.go.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WordsIndexed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "spelld_words_indexed_total",
		Help: "Words that transitioned from absent to present in a fragment index, across all groups.",
	})

	FragmentsPending = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "spelld_fragments_pending",
		Help: "Buffered but uncommitted fragment-index changes in the current write session: fragment keys (trigram engine) or words (FastSS engine).",
	})

	CorruptPostings = promauto.NewCounter(prometheus.CounterOpts{
		Name: "spelld_corrupt_postings_total",
		Help: "Corrupt posting-list findings of the fsck sweep: malformed sizes and entries referencing an id with no WI mapping.",
	})

	FlushDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "spelld_flush_duration_seconds",
		Help:    "Wall-clock time spent in Session.Commit, from frequency flush through batch commit.",
		Buckets: prometheus.DefBuckets,
	})
)
