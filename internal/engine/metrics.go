package engine

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics are the engine's prometheus collectors. A nil *Metrics records
// nothing.
type Metrics struct {
	RemoteCalls *prometheus.CounterVec
	CacheWrites *prometheus.CounterVec
	Reconciles  *prometheus.HistogramVec
	Records     *prometheus.GaugeVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RemoteCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "parentlink",
			Name:      "remote_calls_total",
			Help:      "Remote gateway calls by collection, operation and result.",
		}, []string{"collection", "op", "result"}),
		CacheWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "parentlink",
			Name:      "cache_writes_total",
			Help:      "Snapshot writes to the durable cache by result.",
		}, []string{"collection", "result"}),
		Reconciles: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "parentlink",
			Name:      "reconcile_duration_seconds",
			Help:      "Duration of remote list plus merge.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"collection"}),
		Records: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "parentlink",
			Name:      "records",
			Help:      "Records held in memory by origin.",
		}, []string{"collection", "origin"}),
	}
	reg.MustRegister(m.RemoteCalls, m.CacheWrites, m.Reconciles, m.Records)
	return m
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// ObserveRemote counts one remote call.
func (m *Metrics) ObserveRemote(collection, op string, err error) {
	if m == nil {
		return
	}
	m.RemoteCalls.WithLabelValues(collection, op, result(err)).Inc()
}

func (m *Metrics) observeWrite(collection string, err error) {
	if m == nil {
		return
	}
	m.CacheWrites.WithLabelValues(collection, result(err)).Inc()
}

func (m *Metrics) observeReconcile(collection string, d time.Duration) {
	if m == nil {
		return
	}
	m.Reconciles.WithLabelValues(collection).Observe(d.Seconds())
}

func (m *Metrics) setRecords(collection string, total, pending, failed int) {
	if m == nil {
		return
	}
	m.Records.WithLabelValues(collection, "confirmed").Set(float64(total - pending - failed))
	m.Records.WithLabelValues(collection, "pending").Set(float64(pending))
	m.Records.WithLabelValues(collection, "failed").Set(float64(failed))
}
