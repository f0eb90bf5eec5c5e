package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Auth event labels.
const (
	AuthRegister       = "register"
	AuthDuplicateEmail = "duplicate_email"
	AuthLogin          = "login"
	AuthLoginFailed    = "login_failed"
	AuthLogout         = "logout"
	AuthForbidden      = "forbidden"
)

// Metrics holds the blog's domain counters. The zero value of *Metrics is
// usable: every method is a no-op on a nil receiver.
type Metrics struct {
	AuthEvents    *prometheus.CounterVec
	PostWrites    *prometheus.CounterVec
	CommentWrites prometheus.Counter
}

// NewMetrics registers the domain metrics on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		AuthEvents: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "blog_auth_events_total",
			Help: "Authentication events by outcome",
		}, []string{"event"}),
		PostWrites: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "blog_post_writes_total",
			Help: "Committed blog post writes by operation",
		}, []string{"operation"}),
		CommentWrites: factory.NewCounter(prometheus.CounterOpts{
			Name: "blog_comment_writes_total",
			Help: "Committed comments",
		}),
	}
}

// AuthEvent counts one authentication event.
func (m *Metrics) AuthEvent(event string) {
	if m == nil {
		return
	}
	m.AuthEvents.WithLabelValues(event).Inc()
}

// PostWritten counts one committed post write ("create", "update", "delete").
func (m *Metrics) PostWritten(operation string) {
	if m == nil {
		return
	}
	m.PostWrites.WithLabelValues(operation).Inc()
}

// CommentWritten counts one committed comment.
func (m *Metrics) CommentWritten() {
	if m == nil {
		return
	}
	m.CommentWrites.Inc()
}
