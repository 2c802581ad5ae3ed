package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type metrics struct {
	requests    *prometheus.CounterVec
	applies     *prometheus.CounterVec
	changedKeys *prometheus.CounterVec
	restarts    prometheus.Counter
}

func newMetrics(reg prometheus.Registerer) *metrics {
	factory := promauto.With(reg)
	return &metrics{
		requests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ctmagent_config_http_requests_total",
				Help: "HTTP requests by handler and status code",
			},
			[]string{"handler", "code"},
		),
		applies: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ctmagent_config_applies_total",
				Help: "Apply requests by outcome",
			},
			[]string{"outcome"},
		),
		changedKeys: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ctmagent_config_changed_keys_total",
				Help: "Settings written by apply requests",
			},
			[]string{"key"},
		),
		restarts: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "ctmagent_config_restart_required_total",
				Help: "Apply requests that changed a setting needing an agent restart",
			},
		),
	}
}
