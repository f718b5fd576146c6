package predictions

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"diabetes-backend/internal/shared/server/middleware"
	"diabetes-backend/internal/shared/server/respond"
	"diabetes-backend/internal/shared/telemetry"
)

const (
	PredictRoute = "/api/predict/"
	maxBodyBytes = 64 << 10
)

// Handler exposes the prediction API.
type Handler struct {
	Svc *Service
	// PredictLimit guards POST /api/predict/; nil means unlimited.
	PredictLimit gin.HandlerFunc
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches API routes to r.
func (h *Handler) RegisterRoutes(r gin.IRoutes) {
	predict := []gin.HandlerFunc{h.predict}
	if h.PredictLimit != nil {
		predict = append([]gin.HandlerFunc{h.PredictLimit}, predict...)
	}
	r.POST(PredictRoute, predict...)
	r.GET("/api/history/", h.history)
	r.GET("/api/predictions/:id", h.get)
}

// PredictRateLimited writes the rejection in the prediction body shape.
func PredictRateLimited(c *gin.Context, _ time.Duration) {
	c.JSON(http.StatusTooManyRequests, failureResponse{
		Success: false,
		Error:   "Too many prediction requests. Please wait and try again.",
	})
}

// MethodNotAllowed answers requests whose path exists under another method.
func MethodNotAllowed(c *gin.Context) {
	c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "Method not allowed"})
}

func (h *Handler) predict(c *gin.Context) {
	f, err := readFeatures(c)
	if err != nil {
		h.fail(c, http.StatusBadRequest, err)
		return
	}

	p, err := h.Svc.Predict(c.Request.Context(), f)
	if err != nil {
		status := http.StatusBadRequest
		if !errors.Is(err, ErrInvalidInput) {
			status = http.StatusInternalServerError
		}
		h.fail(c, status, err)
		return
	}

	c.Set(middleware.PredictionIDKey, p.ID)
	respond.OK(c, toPredictResponse(p))
}

func (h *Handler) fail(c *gin.Context, status int, err error) {
	telemetry.Warn("prediction.rejected", map[string]any{
		"request_id": middleware.RequestIDFromContext(c),
		"status":     status,
		"error":      err,
	})
	message := PublicMessage(err)
	if status >= http.StatusInternalServerError {
		message = "Prediction could not be stored"
	}
	c.JSON(status, failureResponse{Success: false, Error: message})
}

// PublicMessage strips the sentinel prefix from an input error.
func PublicMessage(err error) string {
	msg := strings.TrimPrefix(err.Error(), ErrInvalidInput.Error()+": ")
	return strings.ReplaceAll(msg, "\n", "; ")
}

// readFeatures binds a JSON body, or form fields for any other content type.
func readFeatures(c *gin.Context) (Features, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes)
	var req PredictRequest
	if c.ContentType() == gin.MIMEJSON {
		if err := c.ShouldBindJSON(&req); err != nil {
			return Features{}, fmt.Errorf("%w: body must be a JSON object", ErrInvalidInput)
		}
	} else if err := c.ShouldBindWith(&req, binding.Form); err != nil {
		return Features{}, fmt.Errorf("%w: invalid form body", ErrInvalidInput)
	}
	return req.Features()
}

func (h *Handler) history(c *gin.Context) {
	limit := DefaultHistoryLimit
	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			respond.Error(c, http.StatusBadRequest, "validation_error", "limit must be a positive integer", nil)
			return
		}
		limit = n
	}

	items, err := h.Svc.History(c.Request.Context(), limit)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal", "failed to load history", nil)
		return
	}
	respond.OK(c, toHistoryResponse(items))
}

func (h *Handler) get(c *gin.Context) {
	p, err := h.Svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "prediction not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal", "failed to load prediction", nil)
		return
	}
	respond.OK(c, toPredictionResponse(p))
}
