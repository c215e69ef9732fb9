package observability

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	metrics := NewMetrics(NewRegistry())

	router := gin.New()
	router.Use(metrics.Middleware())
	router.GET("/courses/:id", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/metrics", metrics.Handler())

	for _, path := range []string{"/courses/1", "/courses/2", "/missing"} {
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.HTTPRequestsTotal.WithLabelValues("GET", "/courses/:id", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.HTTPRequestsTotal.WithLabelValues("GET", "unmatched", "404")))
	assert.Equal(t, 0.0, testutil.ToFloat64(metrics.HTTPInFlight))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "marketplace_http_requests_total"))
	assert.True(t, strings.Contains(w.Body.String(), "go_goroutines"))
}
