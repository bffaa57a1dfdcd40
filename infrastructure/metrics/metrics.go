package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the prometheus collectors for the service. A nil *Metrics
// is valid and records nothing, so wiring stays simple when metrics are
// disabled.
type Metrics struct {
	commandsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	replayDiverged  prometheus.Counter
}

func New(registerer prometheus.Registerer) *Metrics {
	factory := promauto.With(registerer)
	return &Metrics{
		commandsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ativus_lifecycle_commands_total",
			Help: "Lifecycle commands processed, by command and outcome.",
		}, []string{"command", "outcome"}),
		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ativus_http_request_duration_seconds",
			Help:    "HTTP request latency by route, method and status.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method", "status"}),
		replayDiverged: factory.NewCounter(prometheus.CounterOpts{
			Name: "ativus_replay_divergence_total",
			Help: "Projection verifications where replay did not match the stored state.",
		}),
	}
}

func (m *Metrics) ObserveCommand(command string, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.commandsTotal.WithLabelValues(command, outcome).Inc()
}

func (m *Metrics) ObserveRequest(route, method string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requestDuration.WithLabelValues(route, method, strconv.Itoa(status)).Observe(elapsed.Seconds())
}

func (m *Metrics) ObserveReplayDivergence() {
	if m == nil {
		return
	}
	m.replayDiverged.Inc()
}
