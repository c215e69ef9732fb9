package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/SAP-F-2025/course-marketplace/internal/observability"
	"github.com/SAP-F-2025/course-marketplace/internal/utils"
)

// MiddlewareConfig configures the shared middleware stack
type MiddlewareConfig struct {
	// AllowedOrigin is echoed in CORS responses; empty allows any origin
	AllowedOrigin string
	Metrics       *observability.Metrics
}

// SetupMiddleware sets up common middleware for the Gin router
func SetupMiddleware(router *gin.Engine, logger utils.Logger, cfg MiddlewareConfig) {
	router.Use(RequestIDMiddleware())

	if cfg.Metrics != nil {
		router.Use(cfg.Metrics.Middleware())
	}

	router.Use(CORSMiddleware(cfg.AllowedOrigin))

	// Recovery middleware
	router.Use(gin.Recovery())

	// Context logger middleware (adds logger with request_id to context)
	router.Use(utils.ContextLogger(logger))

	router.Use(utils.LoggerMiddleware(logger))

	router.Use(SecurityMiddleware())
}

// SecurityMiddleware adds security headers
func SecurityMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Header("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		c.Next()
	}
}

// RequestIDMiddleware generates a unique request ID for each request
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Header("X-Request-ID", requestID)
		c.Set("request_id", requestID)
		c.Next()
	}
}

// CORSMiddleware provides CORS support
func CORSMiddleware(allowedOrigin string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := allowedOrigin
		if origin == "" {
			origin = "*"
		}
		c.Header("Access-Control-Allow-Origin", origin)
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")
		c.Header("Access-Control-Expose-Headers", "Content-Length, Content-Disposition, X-Request-ID")
		if origin != "*" {
			c.Header("Access-Control-Allow-Credentials", "true")
		}
		c.Header("Access-Control-Max-Age", "43200")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
