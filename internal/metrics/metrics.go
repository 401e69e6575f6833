package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
)

var (
	// Registry holds the application collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "confessions",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "confessions",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "confessions",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12), // 5ms to ~10s, tips wait on settlement
		},
		[]string{"method", "path"},
	)

	storiesCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "confessions",
			Subsystem: "ledger",
			Name:      "stories_created_total",
			Help:      "Stories accepted by the ledger.",
		},
		[]string{"story_type"},
	)

	tipsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "confessions",
			Subsystem: "ledger",
			Name:      "tips_total",
			Help:      "Tip attempts by outcome.",
		},
		[]string{"outcome"},
	)

	tippedAmount = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "confessions",
			Subsystem: "ledger",
			Name:      "tipped_amount_total",
			Help:      "Sum of accepted tip amounts.",
		},
	)

	settlementDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "confessions",
			Subsystem: "settlement",
			Name:      "duration_seconds",
			Help:      "Time spent waiting on tip settlement.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
		},
	)
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		storiesCreated,
		tipsTotal,
		tippedAmount,
		settlementDuration,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler exposes the registered collectors.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// Instrument records request count, latency and in-flight gauge. Paths are
// labelled by route template so story ids do not blow up cardinality.
func Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}

		rec := NewStatusRecorder(w)
		start := time.Now()

		httpInFlight.Inc()
		defer httpInFlight.Dec()

		next.ServeHTTP(rec, r)

		path := r.URL.Path
		if route := mux.CurrentRoute(r); route != nil {
			if tpl, err := route.GetPathTemplate(); err == nil {
				path = tpl
			}
		}
		httpRequests.WithLabelValues(r.Method, path, strconv.Itoa(rec.Status())).Inc()
		httpDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
	})
}

func RecordStory(storyType string) {
	storiesCreated.WithLabelValues(storyType).Inc()
}

func RecordTip(outcome string, amount decimal.Decimal) {
	tipsTotal.WithLabelValues(outcome).Inc()
	if outcome == "accepted" {
		f, _ := amount.Float64()
		tippedAmount.Add(f)
	}
}

func RecordSettlement(d time.Duration) {
	settlementDuration.Observe(d.Seconds())
}

// StatusRecorder remembers the status code written through it.
type StatusRecorder struct {
	http.ResponseWriter
	status int
}

func NewStatusRecorder(w http.ResponseWriter) *StatusRecorder {
	return &StatusRecorder{ResponseWriter: w, status: http.StatusOK}
}

func (r *StatusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *StatusRecorder) Status() int { return r.status }
