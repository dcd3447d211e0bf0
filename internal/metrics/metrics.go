package metrics

import (
	"context"
	"log/slog"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"cvgate/internal/db"
)

var (
	cvRequestsDesc = prometheus.NewDesc(
		"cvgate_cv_requests",
		"CV request count by status",
		[]string{"status"},
		nil,
	)
	activeBlocksDesc = prometheus.NewDesc(
		"cvgate_rate_limit_active_blocks",
		"Identifiers currently hard-blocked by the rate limiter",
		nil,
		nil,
	)

	dispatchFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cvgate_email_dispatch_failures_total",
		Help: "Notification emails that failed to send",
	})
)

// RequestCollector is a custom Prometheus collector that reads CV request
// and rate-limit state from the database on each scrape.
type RequestCollector struct {
	db *db.DB
}

// Describe sends the metric descriptors to the channel.
func (c *RequestCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- cvRequestsDesc
	ch <- activeBlocksDesc
}

// Collect queries the database and emits the current counts.
func (c *RequestCollector) Collect(ch chan<- prometheus.Metric) {
	ctx := context.Background()

	counts, err := c.db.CountCVRequestsByStatus(ctx)
	if err != nil {
		slog.Error("failed to collect cv request metrics", "error", err)
	} else {
		for status, n := range counts {
			ch <- prometheus.MustNewConstMetric(
				cvRequestsDesc, prometheus.GaugeValue, float64(n), status,
			)
		}
	}

	blocks, err := c.db.CountActiveBlocks(ctx)
	if err != nil {
		slog.Error("failed to collect rate limit metrics", "error", err)
		return
	}
	ch <- prometheus.MustNewConstMetric(
		activeBlocksDesc, prometheus.GaugeValue, float64(blocks),
	)
}

var initOnce sync.Once

// Init registers the collectors. Must be called once at startup.
func Init(database *db.DB) {
	initOnce.Do(func() {
		prometheus.MustRegister(&RequestCollector{db: database})
		prometheus.MustRegister(dispatchFailures)
	})
}

// RecordDispatchFailure counts a failed notification send.
func RecordDispatchFailure() {
	dispatchFailures.Inc()
}
