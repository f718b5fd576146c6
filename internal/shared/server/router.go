package server

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"diabetes-backend/internal/predictions"
	"diabetes-backend/internal/services/health"
	"diabetes-backend/internal/shared/config"
	"diabetes-backend/internal/shared/metrics"
	"diabetes-backend/internal/shared/server/middleware"
	"diabetes-backend/internal/shared/server/respond"
	"diabetes-backend/internal/web"
)

// RouterDeps carries the handlers mounted by NewRouter.
type RouterDeps struct {
	Config            config.Config
	Health            *health.Service
	PredictionHandler *predictions.Handler
	WebHandler        *web.Handler
	// Limiter backs the prediction rate limit; nil allocates one.
	Limiter *middleware.RateLimiter
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) (*gin.Engine, error) {
	cfg := deps.Config
	if gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.NoMethod(predictions.MethodNotAllowed)
	r.NoRoute(func(c *gin.Context) {
		respond.Error(c, http.StatusNotFound, "not_found", "Not found", nil)
	})

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(cfg.CORSAllowOrigin),
		middleware.CSRF(middleware.CSRFConfig{
			Enforce: cfg.CSRFEnabled,
			Secure:  !config.IsDevLike(cfg.Env),
			Exempt:  []string{predictions.PredictRoute},
		}),
	)

	r.GET("/api/health", func(c *gin.Context) {
		if deps.Health == nil {
			respond.OK(c, gin.H{"ok": true})
			return
		}
		st := deps.Health.Check(c.Request.Context())
		status := http.StatusOK
		if !st.OK {
			status = http.StatusServiceUnavailable
		}
		respond.JSON(c, status, st)
	})
	r.GET("/metrics", metrics.Handler())

	if h := deps.PredictionHandler; h != nil {
		if h.PredictLimit == nil && cfg.PredictRate > 0 {
			h.PredictLimit = middleware.RateLimit(middleware.RateLimitConfig{
				Rule:    middleware.RateLimitRule{Rate: cfg.PredictRate, Burst: cfg.PredictBurst},
				Limiter: deps.Limiter,
				Group:   "predict",
				OnLimit: predictions.PredictRateLimited,
			})
		}
		h.RegisterRoutes(r)
	}
	if deps.WebHandler != nil {
		if err := web.Install(r); err != nil {
			return nil, fmt.Errorf("load templates: %w", err)
		}
		deps.WebHandler.RegisterRoutes(r)
	}

	return r, nil
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
