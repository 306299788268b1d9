package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/iudanet/scholarkeeper/internal/server/metrics"
)

func TestMetricsMiddleware(t *testing.T) {
	const route = "GET /test/metrics/{id}"
	counter := metrics.HTTPRequestsTotal.WithLabelValues(http.MethodGet, route, "404")
	before := testutil.ToFloat64(counter)

	handler := MetricsMiddleware(route)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	for range 3 {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/test/metrics/1", nil))
	}

	assert.InDelta(t, before+3, testutil.ToFloat64(counter), 0.001)
}
