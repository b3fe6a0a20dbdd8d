// Package metrics exposes Prometheus collectors for ingestion, search and delivery.
package metrics

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "mediabot"

// Recorder groups the application collectors. A nil Recorder is valid and records nothing.
type Recorder struct {
	ingest   *prometheus.CounterVec
	search   *prometheus.CounterVec
	delivery *prometheus.CounterVec
	records  prometheus.Gauge
}

// NewRecorder registers the collectors on reg. A nil registerer yields a no-op recorder.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	if reg == nil {
		return &Recorder{}
	}
	ingest := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "ingest_total",
		Help:      "Inbound media submissions by result.",
	}, []string{"result"})
	search := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "search_total",
		Help:      "Keyword searches by source.",
	}, []string{"source"})
	delivery := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "delivery_total",
		Help:      "Per-record delivery outcomes.",
	}, []string{"status"})
	records := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "store_records",
		Help:      "Records currently held by the media store.",
	})
	reg.MustRegister(ingest, search, delivery, records)
	return &Recorder{
		ingest:   ingest,
		search:   search,
		delivery: delivery,
		records:  records,
	}
}

// IncIngest counts one ingestion with the given result (saved, rejected, persist_failed).
func (r *Recorder) IncIngest(result string) {
	if r == nil || r.ingest == nil {
		return
	}
	r.ingest.WithLabelValues(normalizeLabel(result)).Inc()
}

// IncSearch counts one search from the given source (bot, http).
func (r *Recorder) IncSearch(source string) {
	if r == nil || r.search == nil {
		return
	}
	r.search.WithLabelValues(normalizeLabel(source)).Inc()
}

// IncDelivery counts one delivery outcome.
func (r *Recorder) IncDelivery(status string) {
	if r == nil || r.delivery == nil {
		return
	}
	r.delivery.WithLabelValues(normalizeLabel(status)).Inc()
}

// SetRecords sets the store size gauge.
func (r *Recorder) SetRecords(n int) {
	if r == nil || r.records == nil {
		return
	}
	r.records.Set(float64(n))
}

func normalizeLabel(value string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return "unknown"
	}
	return value
}
