package utils

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestContextAndRequestLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var buf bytes.Buffer
	logger := NewSlogLogger(slog.New(slog.NewJSONHandler(&buf, nil)))

	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("request_id", "req-42")
		c.Next()
	})
	router.Use(ContextLogger(logger), LoggerMiddleware(logger))
	router.GET("/ping", func(c *gin.Context) {
		FromContext(c.Request.Context(), logger).Info("handling ping")
		c.Status(http.StatusNoContent)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

	assert.Equal(t, http.StatusNoContent, w.Code)
	out := buf.String()
	assert.Contains(t, out, `"msg":"handling ping"`)
	assert.Contains(t, out, `"request_id":"req-42"`)
	assert.Contains(t, out, `"msg":"Request completed"`)
	assert.Contains(t, out, `"status":204`)
}
