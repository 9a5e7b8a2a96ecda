// Package metrics registers the bot's prometheus collectors and exposes them
// over HTTP.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "validator_bot"

// Outcome labels shared by all counters.
const (
	OutcomeOK       = "ok"
	OutcomeError    = "error"
	OutcomeRejected = "rejected"
	OutcomeIgnored  = "ignored"
)

var (
	commandsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "commands_total",
		Help:      "Chat commands handled, by command and outcome.",
	}, []string{"command", "outcome"})

	callbacksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "callbacks_total",
		Help:      "Callback queries handled, by action and outcome.",
	}, []string{"action", "outcome"})

	upstreamRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "upstream_requests_total",
		Help:      "Requests sent to the stats API, by endpoint and outcome.",
	}, []string{"endpoint", "outcome"})

	upstreamRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "upstream_request_duration_seconds",
		Help:      "Latency of requests sent to the stats API.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"endpoint"})

	webhookRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "webhook_requests_total",
		Help:      "Webhook deliveries received, by outcome.",
	}, []string{"outcome"})
)

// ObserveCommand counts one handled chat command.
func ObserveCommand(command, outcome string) {
	commandsTotal.WithLabelValues(command, outcome).Inc()
}

// ObserveCallback counts one handled callback query.
func ObserveCallback(action, outcome string) {
	callbacksTotal.WithLabelValues(action, outcome).Inc()
}

// ObserveUpstream records one stats API request.
func ObserveUpstream(endpoint, outcome string, elapsed time.Duration) {
	upstreamRequestsTotal.WithLabelValues(endpoint, outcome).Inc()
	upstreamRequestDuration.WithLabelValues(endpoint).Observe(elapsed.Seconds())
}

// ObserveWebhook counts one webhook delivery.
func ObserveWebhook(outcome string) {
	webhookRequestsTotal.WithLabelValues(outcome).Inc()
}

// Handler serves the default registry in the prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}
