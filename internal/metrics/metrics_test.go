package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	reg := prometheus.NewRegistry()
	require.NotPanics(t, func() { Register(reg) })

	CouponsIssued.Inc()
	HTTPRequestsTotal.WithLabelValues("POST", "/api/coupons", "201").Inc()
	Notifications.WithLabelValues(OutcomeFailed).Inc()

	families, err := reg.Gather()
	require.NoError(t, err)

	names := make(map[string]bool, len(families))
	for _, mf := range families {
		names[mf.GetName()] = true
	}
	assert.True(t, names["coupons_issued_total"])
	assert.True(t, names["coupon_notifications_total"])
	assert.True(t, names["http_requests_total"])
	assert.True(t, names["http_requests_in_flight"])
	assert.True(t, names["go_goroutines"])
}

func TestRegister_Twice(t *testing.T) {
	reg := prometheus.NewRegistry()
	Register(reg)
	assert.Panics(t, func() { Register(reg) }, "duplicate registration should panic")
}

func TestNotifications_ByOutcome(t *testing.T) {
	before := testutil.ToFloat64(Notifications.WithLabelValues(OutcomeSent))
	Notifications.WithLabelValues(OutcomeSent).Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(Notifications.WithLabelValues(OutcomeSent)))
}
