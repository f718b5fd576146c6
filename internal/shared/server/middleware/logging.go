package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"diabetes-backend/internal/shared/metrics"
	"diabetes-backend/internal/shared/telemetry"
)

// PredictionIDKey is set by handlers that store a prediction.
const PredictionIDKey = "predictionId"

// Logging emits one structured line per request and counts it by route.
func Logging() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		status := c.Writer.Status()
		route := c.FullPath()
		metrics.IncRequest(route, status)

		fields := map[string]any{
			"request_id":  RequestIDFromContext(c),
			"method":      c.Request.Method,
			"route":       route,
			"path":        c.Request.URL.Path,
			"status":      status,
			"duration_ms": float64(time.Since(start).Microseconds()) / 1000.0,
			"client_ip":   c.ClientIP(),
			"user_agent":  c.Request.UserAgent(),
		}
		if id := c.GetString(PredictionIDKey); id != "" {
			fields["prediction_id"] = id
		}
		if len(c.Errors) > 0 {
			fields["errors"] = c.Errors.String()
		}

		switch {
		case status >= http.StatusInternalServerError:
			telemetry.Error("request.complete", fields)
		case status >= http.StatusBadRequest:
			telemetry.Warn("request.complete", fields)
		default:
			telemetry.Info("request.complete", fields)
		}
	}
}
