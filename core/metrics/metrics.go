package metrics

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcomes recorded for cleanup runs.
const (
	OutcomePlanned = "planned"
	OutcomeApplied = "applied"
	OutcomeDryRun  = "dry_run"
	OutcomeFailed  = "failed"
)

var (
	runsMetric = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "site_cleaner",
		Subsystem: "cleanup",
		Name:      "runs_total",
		Help:      "Number of cleanup runs by outcome",
	}, []string{"outcome"})
	removedMetric = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "site_cleaner",
		Subsystem: "cleanup",
		Name:      "paths_removed_total",
		Help:      "Number of obsolete paths removed from destination roots",
	})
	reclaimedMetric = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "site_cleaner",
		Subsystem: "cleanup",
		Name:      "bytes_reclaimed_total",
		Help:      "Bytes of plain files removed from destination roots",
	})
)

// ObserveRun records one cleanup run. removed and reclaimed count what was actually
// deleted, which a failed run may have done before stopping.
func ObserveRun(outcome string, removed int, reclaimed int64) {
	runsMetric.WithLabelValues(outcome).Inc()
	removedMetric.Add(float64(removed))
	reclaimedMetric.Add(float64(reclaimed))
}

// Handler serves the default registry in the Prometheus text format.
func Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
