package guard

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	monitoredDashboards = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "guest_dashboard_guard_monitored_dashboards",
		Help: "Dashboards seen in the last successful cycle.",
	})
	guestUsers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "guest_dashboard_guard_guest_users",
		Help: "Guest accounts resolved in the last successful cycle.",
	})
	accessViolations = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "guest_dashboard_guard_access_violations",
		Help: "Violations reported by the last successful cycle.",
	})
	cyclesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "guest_dashboard_guard_cycles_total",
			Help: "Guard cycles by outcome.",
		},
		[]string{"status"},
	)
	notificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "guest_dashboard_guard_notifications_total",
			Help: "Notification deliveries by status.",
		},
		[]string{"status"},
	)
	revokeTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "guest_dashboard_guard_revoke_attempts_total",
			Help: "Access revocation attempts by result.",
		},
		[]string{"result"},
	)
)
