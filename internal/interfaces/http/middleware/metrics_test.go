package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestHTTPMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(t.Context()) })

	mw, err := HTTPMetrics(provider.Meter("test"))
	require.NoError(t, err)

	router := gin.New()
	router.Use(mw)
	router.GET("/empresas/:id", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	serve(router, httptest.NewRequest(http.MethodGet, "/empresas/1", nil))
	serve(router, httptest.NewRequest(http.MethodGet, "/empresas/2", nil))
	serve(router, httptest.NewRequest(http.MethodGet, "/wp-admin", nil))

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(t.Context(), &rm))
	require.Len(t, rm.ScopeMetrics, 1)

	counts := map[string]int64{}
	var histogramCount uint64
	for _, m := range rm.ScopeMetrics[0].Metrics {
		switch data := m.Data.(type) {
		case metricdata.Sum[int64]:
			assert.Equal(t, MetricHTTPRequests, m.Name)
			for _, dp := range data.DataPoints {
				route, _ := dp.Attributes.Value(attribute.Key("http.route"))
				counts[route.AsString()] += dp.Value
			}
		case metricdata.Histogram[float64]:
			assert.Equal(t, MetricHTTPRequestDuration, m.Name)
			for _, dp := range data.DataPoints {
				histogramCount += dp.Count
			}
		}
	}

	assert.Equal(t, map[string]int64{"/empresas/:id": 2, "unmatched": 1}, counts)
	assert.Equal(t, uint64(3), histogramCount)
}
