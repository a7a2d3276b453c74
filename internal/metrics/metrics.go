// Package metrics exposes Prometheus collectors for the reconciliation engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "gameshop"

type Metrics struct {
	Checkouts           *prometheus.CounterVec
	ItemsSold           prometheus.Counter
	CartSignals         *prometheus.CounterVec
	SyncFailures        *prometheus.CounterVec
	SyncDropped         prometheus.Counter
	PersistenceFailures *prometheus.CounterVec
	RemoteOnline        prometheus.Gauge
}

// New registers the collectors on reg. A nil reg yields unregistered
// collectors, which is what tests use.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Checkouts: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checkouts_total",
			Help:      "Checkout attempts by outcome.",
		}, []string{"outcome"}),
		ItemsSold: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "items_sold_total",
			Help:      "Units decremented from stock by committed checkouts.",
		}),
		CartSignals: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cart_signals_total",
			Help:      "Advisory signals emitted by cart mutations.",
		}, []string{"signal"}),
		SyncFailures: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "remote_sync_failures_total",
			Help:      "Remote catalog calls that failed or timed out.",
		}, []string{"op"}),
		SyncDropped: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "remote_sync_dropped_total",
			Help:      "Remote sync tasks dropped because the queue was full or closed.",
		}),
		PersistenceFailures: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "persistence_failures_total",
			Help:      "Local save or load failures.",
		}, []string{"op"}),
		RemoteOnline: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "remote_online",
			Help:      "1 when the last remote catalog call succeeded.",
		}),
	}
}
