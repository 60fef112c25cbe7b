package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCounters(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.Session("ok")
	m.Session("ok")
	m.Access("flow", false)
	m.Confirmation("redeem", "expired")
	m.Notification("event", errors.New("boom"))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.SessionValidations.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AccessDecisions.WithLabelValues("flow", "deny")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Confirmations.WithLabelValues("redeem", "expired")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Notifications.WithLabelValues("event", "error")))
}

func TestNilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.Session("ok")
		m.Access("post", true)
		m.Confirmation("request", "issued")
		m.Notification("event", nil)
	})
}
