package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus instruments for the service. Services receive
// a *Metrics via option and treat a nil receiver field check as "metrics
// disabled" so unit tests don't need a registry.
type Metrics struct {
	CasesCreated       prometheus.Counter
	StageTransitions   *prometheus.CounterVec
	TransitionDenied   prometheus.Counter
	AnchorsSubmitted   prometheus.Counter
	AnchorsFailed      prometheus.Counter
	NotificationsSent  prometheus.Counter
	NotificationErrors prometheus.Counter
	AuditDropped       prometheus.Counter
}

// New creates and registers all instruments on the default registry.
func New() *Metrics {
	return &Metrics{
		CasesCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "docket_cases_created_total",
			Help: "Total number of cases created.",
		}),
		StageTransitions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "docket_stage_transitions_total",
			Help: "Successful case stage transitions by target stage.",
		}, []string{"stage"}),
		TransitionDenied: promauto.NewCounter(prometheus.CounterOpts{
			Name: "docket_stage_transitions_denied_total",
			Help: "Stage transition requests denied by the workflow table.",
		}),
		AnchorsSubmitted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "docket_ledger_anchors_total",
			Help: "Successful ledger anchor submissions.",
		}),
		AnchorsFailed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "docket_ledger_anchor_failures_total",
			Help: "Failed ledger anchor submissions.",
		}),
		NotificationsSent: promauto.NewCounter(prometheus.CounterOpts{
			Name: "docket_notifications_created_total",
			Help: "Notification records created by fan-out.",
		}),
		NotificationErrors: promauto.NewCounter(prometheus.CounterOpts{
			Name: "docket_notification_failures_total",
			Help: "Per-recipient notification creation failures.",
		}),
		AuditDropped: promauto.NewCounter(prometheus.CounterOpts{
			Name: "docket_audit_events_dropped_total",
			Help: "Audit events dropped because the recorder inbox was full.",
		}),
	}
}
