package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/iota-uz/org-reshape/pkg/reshape"
	"github.com/iota-uz/org-reshape/pkg/tabular"
)

var (
	reshapeRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "org_reshape",
		Name:      "runs_total",
		Help:      "Total number of reshape runs broken down by result.",
	}, []string{"result"})

	reshapeRecords = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "org_reshape",
		Name:      "records",
		Help:      "Number of long records produced per successful run.",
		Buckets:   prometheus.ExponentialBuckets(1, 4, 10),
	})

	reshapeDropped = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "org_reshape",
		Name:      "dropped_rows_total",
		Help:      "Rows dropped because their organization was empty.",
	})

	reshapeLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "org_reshape",
		Name:      "latency_seconds",
		Help:      "Latency distribution for reading and reshaping one upload.",
		Buckets: []float64{
			0.001, 0.002, 0.005,
			0.01, 0.02, 0.05,
			0.1, 0.2, 0.5,
			1, 2, 5, 10,
		},
	})
)

// Result classifies a run outcome for the result label.
func Result(err error) string {
	if err == nil {
		return "ok"
	}
	var se *reshape.SchemaError
	if errors.As(err, &se) {
		return "schema_error"
	}
	var ie *tabular.IOError
	if errors.As(err, &ie) {
		return "io_error"
	}
	return "error"
}

// ObserveReshape records one run started at start.
func ObserveReshape(start time.Time, stats reshape.Stats, err error) {
	reshapeRuns.WithLabelValues(Result(err)).Inc()
	reshapeLatency.Observe(time.Since(start).Seconds())
	if err != nil {
		return
	}
	reshapeRecords.Observe(float64(stats.Records))
	reshapeDropped.Add(float64(stats.Dropped))
}
