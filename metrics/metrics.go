package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	VisitsRecorded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "visits_recorded_total",
			Help: "Total number of recorded visits",
		},
		[]string{"status"},
	)

	EnrichmentFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "enrichment_failures_total",
			Help: "Total number of failed enrichment lookups",
		},
		[]string{"kind"},
	)

	RecordDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "record_duration_seconds",
			Help:    "Duration of visit recording",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"status"},
	)
)

func init() {
	prometheus.MustRegister(VisitsRecorded)
	prometheus.MustRegister(EnrichmentFailures)
	prometheus.MustRegister(RecordDuration)
}

func StartMetricsServer(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			panic(err)
		}
	}()
}
