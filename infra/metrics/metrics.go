// Package metrics holds the Prometheus collectors of the engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "matchcore"

var (
	// CommandsTotal counts write commands by type (match|modify|cancel) and
	// result (ok|error|not_found).
	CommandsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "commands_total",
		Help:      "Write commands processed.",
	}, []string{"type", "result"})

	FillsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "fills_total",
		Help:      "Resting orders filled, fully or partially.",
	})

	RestingOrders = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "resting_orders",
		Help:      "Orders resting on both sides of the book.",
	})

	CommandDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "command_duration_seconds",
		Help:      "Latency of write commands including journalling.",
		Buckets:   prometheus.ExponentialBuckets(0.000005, 2, 16), // 5µs -> ~160ms
	}, []string{"type"})

	WALAppendErrors = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "wal_append_errors_total",
		Help:      "Failed journal appends.",
	})

	ReplayedRecords = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "wal_replayed_records_total",
		Help:      "Journal records applied during recovery.",
	})

	OutboxWrites = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "outbox_writes_total",
		Help:      "Events written to the outbox.",
	}, []string{"result"})

	OutboxPublish = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "outbox_publish_total",
		Help:      "Outbox delivery attempts by result.",
	}, []string{"result"})

	SnapshotsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "snapshots_total",
		Help:      "Book snapshots written.",
	}, []string{"result"})
)
