package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	AutoupdateRunsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "passtrack_autoupdate_runs_total",
		Help: "Total number of autoupdate runs started.",
	})

	AutoupdateRunsAborted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "passtrack_autoupdate_runs_aborted_total",
		Help: "Total number of runs aborted by the upstream timeout circuit breaker.",
	})

	OrdersCheckedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "passtrack_orders_checked_total",
		Help: "Total number of orders polled against the upstream.",
	})

	OrdersUpdatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "passtrack_orders_updated_total",
		Help: "Total number of orders whose status actually changed.",
	})

	OrdersErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "passtrack_orders_errors_total",
		Help: "Total number of per-order failures during autoupdate runs.",
	},
		[]string{"reason"},
	)

	MidpassRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "passtrack_midpass_requests_total",
		Help: "Total number of upstream status requests per endpoint and result.",
	},
		[]string{"endpoint", "result"},
	)

	NotificationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "passtrack_notifications_total",
		Help: "Total number of status notifications per delivery result.",
	},
		[]string{"result"},
	)

	AutoupdateDurationSeconds = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "passtrack_autoupdate_duration_seconds",
		Help: "Duration of the last completed autoupdate run.",
	})
)
