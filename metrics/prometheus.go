package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	recordsProcessedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "import_records_processed_total",
			Help: "Total number of feed records read from the source.",
		},
	)
	entitiesUpsertedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "import_entities_upserted_total",
			Help: "Total number of entities upserted, by entity kind.",
		},
		[]string{"kind"},
	)
	categoriesSynthesizedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "import_categories_synthesized_total",
			Help: "Total number of category nodes synthesized for missing ancestors.",
		},
	)
	warningsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "import_warnings_total",
			Help: "Total number of skip-and-warn conditions encountered.",
		},
	)
	batchFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "import_batch_failures_total",
			Help: "Total number of batches rolled back due to a persistence error.",
		},
	)
	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests served by the process.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)

func init() {
	prometheus.MustRegister(recordsProcessedTotal)
	prometheus.MustRegister(entitiesUpsertedTotal)
	prometheus.MustRegister(categoriesSynthesizedTotal)
	prometheus.MustRegister(warningsTotal)
	prometheus.MustRegister(batchFailuresTotal)
	prometheus.MustRegister(httpRequestDuration)
}

func RecordRequest(method, path string, status int, duration time.Duration) {
	httpRequestDuration.WithLabelValues(method, path, strconv.Itoa(status)).Observe(duration.Seconds())
}

func RecordProcessed() {
	recordsProcessedTotal.Inc()
}

func EntitiesUpserted(kind string, n int) {
	entitiesUpsertedTotal.WithLabelValues(kind).Add(float64(n))
}

func CategoriesSynthesized(n int) {
	categoriesSynthesizedTotal.Add(float64(n))
}

func Warning() {
	warningsTotal.Inc()
}

func BatchFailure() {
	batchFailuresTotal.Inc()
}

// MetricsHandler returns the HTTP handler exporting Prometheus metrics.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
