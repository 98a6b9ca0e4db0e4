// Package metrics exposes Prometheus instruments for admission, dispatch and the control loops.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry is the private registry all chatdesk metrics live on
var Registry = prometheus.NewRegistry()

var factory = promauto.With(Registry)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// =============================================================================
// ADMISSION
// =============================================================================

// SessionsAdmitted counts sessions accepted into a lane, by team.
var SessionsAdmitted = factory.NewCounterVec(prometheus.CounterOpts{
	Namespace: "chatdesk",
	Name:      "sessions_admitted_total",
	Help:      "Sessions accepted into an intake lane",
}, []string{"team"})

// SessionsRejected counts rejections by reason: capacity or queue_full.
var SessionsRejected = factory.NewCounterVec(prometheus.CounterOpts{
	Namespace: "chatdesk",
	Name:      "sessions_rejected_total",
	Help:      "Sessions rejected at admission",
}, []string{"reason"})

// IntakeDepth tracks the number of ids waiting in each intake lane.
var IntakeDepth = factory.NewGaugeVec(prometheus.GaugeOpts{
	Namespace: "chatdesk",
	Name:      "intake_depth",
	Help:      "Session ids held by each intake lane",
}, []string{"lane"})

// =============================================================================
// DISPATCH AND CONTROL LOOPS
// =============================================================================

// SessionsAssigned counts sessions bound to an agent, by team.
var SessionsAssigned = factory.NewCounterVec(prometheus.CounterOpts{
	Namespace: "chatdesk",
	Name:      "sessions_assigned_total",
	Help:      "Sessions bound to an agent by the dispatcher",
}, []string{"team"})

// SessionsReclaimed counts sessions marked inactive; held_capacity tells whether an agent was released.
var SessionsReclaimed = factory.NewCounterVec(prometheus.CounterOpts{
	Namespace: "chatdesk",
	Name:      "sessions_reclaimed_total",
	Help:      "Sessions marked inactive by the inactivity loop",
}, []string{"held_capacity"})

// ShiftsExpired counts agents whose accepting flag was cleared at shift end.
var ShiftsExpired = factory.NewCounter(prometheus.CounterOpts{
	Namespace: "chatdesk",
	Name:      "shifts_expired_total",
	Help:      "Agents taken off assignment because their shift ended",
})

// OverflowEnabled is 1 while the overflow workforce accepts work.
var OverflowEnabled = factory.NewGauge(prometheus.GaugeOpts{
	Namespace: "chatdesk",
	Name:      "overflow_enabled",
	Help:      "Whether overflow agents are currently accepting work",
})

// TeamBacklog tracks the number of live sessions per team as seen by the last overflow tick.
var TeamBacklog = factory.NewGaugeVec(prometheus.GaugeOpts{
	Namespace: "chatdesk",
	Name:      "team_backlog",
	Help:      "Queued, assigned and active sessions per team",
}, []string{"team"})

// LoopTickDuration times each control loop tick.
var LoopTickDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: "chatdesk",
	Name:      "loop_tick_duration_seconds",
	Help:      "Time taken by one tick of a control loop",
	Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
}, []string{"loop"})

// LoopTickErrors counts ticks that returned an error or panicked.
var LoopTickErrors = factory.NewCounterVec(prometheus.CounterOpts{
	Namespace: "chatdesk",
	Name:      "loop_tick_errors_total",
	Help:      "Control loop ticks that failed",
}, []string{"loop"})

// =============================================================================
// HTTP
// =============================================================================

// HTTPRequests counts API requests by route pattern and status code.
var HTTPRequests = factory.NewCounterVec(prometheus.CounterOpts{
	Namespace: "chatdesk",
	Name:      "http_requests_total",
	Help:      "HTTP requests served",
}, []string{"route", "code"})

// Handler serves the registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{Registry: Registry})
}
