package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.OrderCreated(5)
	m.OrderCreated(2)
	m.OrderRejected(ReasonInsufficientStock)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.OrdersCreatedTotal))
	assert.Equal(t, 7.0, testutil.ToFloat64(m.StockUnitsReserved))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.OrdersRejectedTotal.WithLabelValues(ReasonInsufficientStock)))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.OrdersRejectedTotal.WithLabelValues(ReasonError)))
}

func TestObserveRequest(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveRequest("GET", "/products/{id}", "200", 0.01)

	expected := `
# HELP inventory_orders_http_requests_total HTTP requests by method, route pattern and status code.
# TYPE inventory_orders_http_requests_total counter
inventory_orders_http_requests_total{method="GET",route="/products/{id}",status="200"} 1
`
	err := testutil.GatherAndCompare(reg, strings.NewReader(expected), "inventory_orders_http_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 1, testutil.CollectAndCount(m.HTTPRequestDuration))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.OrderCreated(1)
		m.OrderRejected(ReasonError)
		m.ObserveRequest("GET", "/", "200", 0)
	})
}
