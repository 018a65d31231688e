// internal/app/system/metrics/metrics.go
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

// Join request outcomes.
const (
	OutcomeCreated  = "created"
	OutcomeApproved = "approved"
	OutcomeRejected = "rejected"
	OutcomeConflict = "conflict"
)

// Metrics holds the service counters. A nil *Metrics, or one built with a
// nil registerer, records nothing.
type Metrics struct {
	joinRequests     *prometheus.CounterVec
	chatSyncFailures prometheus.Counter
	chatMessages     prometheus.Counter
	dismissed        prometheus.Counter
	httpDuration     *prometheus.HistogramVec
}

// New registers the service metrics on the provided registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		return &Metrics{}
	}
	m := &Metrics{
		joinRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "voyager_join_requests_total",
			Help: "Join request workflow outcomes.",
		}, []string{"outcome"}),
		chatSyncFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "voyager_chat_sync_failures_total",
			Help: "Approvals whose group chat membership could not be applied.",
		}),
		chatMessages: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "voyager_chat_messages_total",
			Help: "Messages appended to group chats.",
		}),
		dismissed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "voyager_notifications_dismissed_total",
			Help: "Resolved join requests dismissed by their requester.",
		}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "voyager_http_request_duration_seconds",
			Help:    "HTTP request latency by route pattern.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method", "status"}),
	}
	reg.MustRegister(m.joinRequests, m.chatSyncFailures, m.chatMessages, m.dismissed, m.httpDuration)
	return m
}

// JoinRequest counts a workflow outcome.
func (m *Metrics) JoinRequest(outcome string) {
	if m == nil || m.joinRequests == nil {
		return
	}
	m.joinRequests.WithLabelValues(outcome).Inc()
}

// JoinRequestCounter exposes the counter for one outcome, for tests.
func (m *Metrics) JoinRequestCounter(outcome string) prometheus.Counter {
	return m.joinRequests.WithLabelValues(outcome)
}

func (m *Metrics) ChatSyncFailure() {
	if m == nil || m.chatSyncFailures == nil {
		return
	}
	m.chatSyncFailures.Inc()
}

func (m *Metrics) ChatMessage() {
	if m == nil || m.chatMessages == nil {
		return
	}
	m.chatMessages.Inc()
}

func (m *Metrics) NotificationDismissed() {
	if m == nil || m.dismissed == nil {
		return
	}
	m.dismissed.Inc()
}

// Middleware records request latency labelled with the chi route pattern
// (not the raw path) so ids do not explode label cardinality.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil || m.httpDuration == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.httpDuration.WithLabelValues(route, r.Method, strconv.Itoa(status)).Observe(time.Since(start).Seconds())
	})
}
