package respond

import (
	"github.com/gin-gonic/gin"

	"diabetes-backend/internal/shared/telemetry"
)

// requestIDKey mirrors the key the RequestID middleware stores.
const requestIDKey = "requestId"

// ErrorBody is the error object of non-prediction endpoints.
type ErrorBody struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Details   any    `json:"details,omitempty"`
	RequestID string `json:"requestId,omitempty"`
}

// ErrorResponse wraps ErrorBody.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// Error logs at warn (4xx) or error (5xx) and aborts with an ErrorResponse.
// Errors collected with c.Error are included in the log line only.
func Error(c *gin.Context, status int, code, message string, details any) {
	reqID := c.GetString(requestIDKey)
	fields := map[string]any{
		"status":     status,
		"code":       code,
		"method":     c.Request.Method,
		"route":      c.FullPath(),
		"path":       c.Request.URL.Path,
		"request_id": reqID,
	}
	if len(c.Errors) > 0 {
		fields["errors"] = c.Errors.String()
	}
	if status >= 500 {
		telemetry.Error("http.error", fields)
	} else {
		telemetry.Warn("http.error", fields)
	}

	c.AbortWithStatusJSON(status, ErrorResponse{
		Error: ErrorBody{Code: code, Message: message, Details: details, RequestID: reqID},
	})
}
