// Package metrics defines and registers all custom Prometheus metrics for the
// Connectly support API. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics are registered with the default Prometheus registry at package
// initialisation through promauto.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "connectly"

// Result label values shared by the counters below.
const (
	ResultSuccess  = "success"
	ResultFailure  = "failure"
	ResultRejected = "rejected"
	ResultDropped  = "dropped"
)

// ── Auth metrics ──────────────────────────────────────────────────────────────

// AuthAttemptsTotal counts register and login attempts.
// Labels:
//   - operation: "register" or "login"
//   - result: "success", "rejected" (client error) or "failure" (server error)
var AuthAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_attempts_total",
		Help:      "Total number of authentication attempts, by operation and result.",
	},
	[]string{"operation", "result"},
)

// ── Chat metrics ──────────────────────────────────────────────────────────────

// MessagesSentTotal counts messages stored through the API.
var MessagesSentTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "messages_sent_total",
		Help:      "Total number of chat messages stored.",
	},
)

// ChatEventsPublishedTotal counts chat event deliveries.
// Label:
//   - result: "success", "failure" or "dropped" (shard queue full)
var ChatEventsPublishedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "chat_events_published_total",
		Help:      "Total number of chat events handed to the broker, by result.",
	},
	[]string{"result"},
)

// ChatEventQueueDepth tracks the number of events waiting in each worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var ChatEventQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "chat_event_queue_depth",
		Help:      "Current number of chat events pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// ChatEventPublishDuration measures a single broker publish.
// Label:
//   - result: "success" or "failure"
var ChatEventPublishDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "chat_event_publish_duration_seconds",
		Help:      "Duration of a chat event publish, from dequeue to broker ack.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"result"},
)

// ChatEventRecorder reports event dispatcher activity on the chat event
// metrics above.
type ChatEventRecorder struct{}

func (ChatEventRecorder) EventQueued(worker int) {
	ChatEventQueueDepth.WithLabelValues(strconv.Itoa(worker)).Inc()
}

func (ChatEventRecorder) EventDequeued(worker int) {
	ChatEventQueueDepth.WithLabelValues(strconv.Itoa(worker)).Dec()
}

func (ChatEventRecorder) EventDropped() {
	ChatEventsPublishedTotal.WithLabelValues(ResultDropped).Inc()
}

func (ChatEventRecorder) EventDelivered(err error, elapsed time.Duration) {
	result := ResultSuccess
	if err != nil {
		result = ResultFailure
	}
	ChatEventPublishDuration.WithLabelValues(result).Observe(elapsed.Seconds())
	ChatEventsPublishedTotal.WithLabelValues(result).Inc()
}
