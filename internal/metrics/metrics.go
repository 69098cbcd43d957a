package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"net/http"
	"sync"
)

var (
	ErrorsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "collector_errors_total",
			Help: "Total number of occurred errors.",
		},
		[]string{"type"},
	)
	RunsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "collector_runs_total",
			Help: "Total number of collection runs by final state.",
		},
		[]string{"state"},
	)
	RunDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "collector_run_duration_seconds",
			Help:    "Duration of each collection run in seconds.",
			Buckets: []float64{5, 15, 30, 60, 120, 300, 900},
		},
	)
	StageDuration = prometheus.NewSummaryVec(
		prometheus.SummaryOpts{
			Name:       "collector_stage_duration_seconds",
			Help:       "Duration of each stage of a collection run.",
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
		},
		[]string{"stage"},
	)
	FetchedPostingsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "collector_postings_fetched_total",
			Help: "Total number of raw postings returned by each source.",
		},
		[]string{"source"},
	)
	SkippedItemsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "collector_items_skipped_total",
			Help: "Total number of malformed or unusable source items.",
		},
		[]string{"source"},
	)
	AdapterErrorsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "collector_adapter_errors_total",
			Help: "Total number of failed source fetches by error kind.",
		},
		[]string{"source", "kind"},
	)
	CanonicalPostingsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "collector_canonical_postings_total",
			Help: "Total number of canonical postings written, by outcome.",
		},
		[]string{"outcome"},
	)
	AmbiguousMatchesCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "collector_company_matches_ambiguous_total",
			Help: "Total number of company matches queued for review.",
		},
	)
)

var registerOnce sync.Once

func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(ErrorsCounter)
		prometheus.MustRegister(RunsCounter)
		prometheus.MustRegister(RunDuration)
		prometheus.MustRegister(StageDuration)
		prometheus.MustRegister(FetchedPostingsCounter)
		prometheus.MustRegister(SkippedItemsCounter)
		prometheus.MustRegister(AdapterErrorsCounter)
		prometheus.MustRegister(CanonicalPostingsCounter)
		prometheus.MustRegister(AmbiguousMatchesCounter)
	})
}

// StartMetricsServer serves /metrics on address. An empty address only registers the collectors.
func StartMetricsServer(address string) {

	Register()
	if address == "" {
		return
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	go func() {
		log.Fatal(http.ListenAndServe(address, mux))
	}()
}
