package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"confessions/internal/metrics"
)

type RouteOptions struct {
	CORSOrigins []string
	Limiter     *RateLimiter
}

// Routes builds the full HTTP stack. CORS, logging and recovery wrap the
// router so they also see preflight and unmatched requests.
func (h *Handler) Routes(log logrus.FieldLogger, opts RouteOptions) http.Handler {
	r := mux.NewRouter()
	r.Use(metrics.Instrument)

	r.HandleFunc("/stories", h.ListStories).Methods(http.MethodGet)
	r.HandleFunc("/stories", h.CreateStory).Methods(http.MethodPost)
	r.HandleFunc("/stories/{id}", h.GetStory).Methods(http.MethodGet)
	r.HandleFunc("/tips", h.ListTips).Methods(http.MethodGet)
	r.HandleFunc("/tips", h.CreateTip).Methods(http.MethodPost)

	r.HandleFunc("/healthz", h.Health).Methods(http.MethodGet)
	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	r.NotFoundHandler = http.HandlerFunc(h.NotFound)
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Method Not Allowed")
	})

	var next http.Handler = r
	if opts.Limiter != nil {
		next = opts.Limiter.Limit(next)
	}
	next = NewCORS(opts.CORSOrigins).Handler(next)
	next = RequestLogger(log)(next)
	return WithRecover(next, log)
}
