package auth

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Guard stages, used as the stage label.
const (
	stageToken        = "token"
	stageTenant       = "tenant"
	stageSubscription = "subscription"
	stagePermission   = "permission"
	stageOrgAdmin     = "org_admin"
	stageSuperAdmin   = "super_admin"
)

const (
	outcomeAllowed = "allowed"
	outcomeDenied  = "denied"
	outcomeError   = "error"
)

var guardDecisions = promauto.NewCounterVec( //nolint:gochecknoglobals
	prometheus.CounterOpts{
		Namespace: "authgate",
		Name:      "guard_decisions_total",
		Help:      "Number of guard decisions, differentiated by stage and outcome.",
	},
	[]string{"stage", "outcome"},
)

func observe(stage, outcome string) {
	guardDecisions.WithLabelValues(stage, outcome).Inc()
}
