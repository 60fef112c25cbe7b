// Package metrics holds the portal's Prometheus counters. A nil *Metrics is
// valid and records nothing.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	SessionValidations *prometheus.CounterVec
	AccessDecisions    *prometheus.CounterVec
	Confirmations      *prometheus.CounterVec
	Notifications      *prometheus.CounterVec
}

// New registers the counters on reg (prometheus.DefaultRegisterer in services).
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		SessionValidations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "portal_session_validations_total",
			Help: "Session credential validations by result.",
		}, []string{"result"}),
		AccessDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "portal_access_decisions_total",
			Help: "Single-item access decisions by kind and result.",
		}, []string{"kind", "result"}),
		Confirmations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "portal_confirmations_total",
			Help: "Confirmation flow outcomes by stage and result.",
		}, []string{"stage", "result"}),
		Notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "portal_notifications_total",
			Help: "Notification dispatches by type and result.",
		}, []string{"type", "result"}),
	}
	reg.MustRegister(m.SessionValidations, m.AccessDecisions, m.Confirmations, m.Notifications)
	return m
}

func (m *Metrics) Session(result string) {
	if m != nil {
		m.SessionValidations.WithLabelValues(result).Inc()
	}
}

func (m *Metrics) Access(kind string, allowed bool) {
	if m != nil {
		result := "deny"
		if allowed {
			result = "allow"
		}
		m.AccessDecisions.WithLabelValues(kind, result).Inc()
	}
}

func (m *Metrics) Confirmation(stage, result string) {
	if m != nil {
		m.Confirmations.WithLabelValues(stage, result).Inc()
	}
}

func (m *Metrics) Notification(typ string, err error) {
	if m != nil {
		result := "ok"
		if err != nil {
			result = "error"
		}
		m.Notifications.WithLabelValues(typ, result).Inc()
	}
}
