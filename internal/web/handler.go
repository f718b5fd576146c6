package web

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"diabetes-backend/internal/predictform"
	"diabetes-backend/internal/predictions"
	"diabetes-backend/internal/shared/server/middleware"
	"diabetes-backend/internal/shared/server/respond"
	"diabetes-backend/internal/shared/telemetry"
)

const historyLimit = predictions.DefaultHistoryLimit

// Handler serves the HTML pages.
type Handler struct {
	Svc    *predictions.Service
	Fields []predictform.FieldSpec
}

// NewHandler constructs a Handler over the default questionnaire.
func NewHandler(svc *predictions.Service) *Handler {
	return &Handler{Svc: svc, Fields: predictform.DefaultFields}
}

// Install parses the templates into r and mounts the static assets.
func Install(r *gin.Engine) error {
	tmpl, err := Templates()
	if err != nil {
		return err
	}
	r.SetHTMLTemplate(tmpl)
	r.StaticFS("/static", http.FS(Static()))
	return nil
}

// RegisterRoutes attaches page routes to r.
func (h *Handler) RegisterRoutes(r gin.IRoutes) {
	r.GET("/", h.static("home.html", "Home"))
	r.GET("/about/", h.static("about.html", "About"))
	r.GET("/services/", h.static("services.html", "Services"))
	r.GET("/predict/", h.predictForm)
	r.POST("/predict/", h.predictSubmit)
	r.GET("/history/", h.history)
}

func (h *Handler) static(name, title string) gin.HandlerFunc {
	return func(c *gin.Context) {
		respond.HTML(c, http.StatusOK, name, basePage{Title: title})
	}
}

func (h *Handler) predictForm(c *gin.Context) {
	form := predictform.NewForm(h.Fields, middleware.CSRFTokenFromContext(c))
	page := predictform.NewPage()
	respond.HTML(c, http.StatusOK, "predict.html",
		newPredictPage(form, page.Snapshot(), predictform.IsDevHost(c.Request.Host)))
}

func (h *Handler) predictSubmit(c *gin.Context) {
	form := predictform.NewForm(h.Fields, middleware.CSRFTokenFromContext(c))
	for _, spec := range h.Fields {
		if v, ok := c.GetPostForm(spec.Name); ok {
			_ = form.Set(spec.Name, v)
		}
	}

	page := predictform.NewPage()
	ctrl, err := predictform.New(predictform.Options{
		Form:      form,
		View:      page,
		Predictor: predictions.LocalPredictor{Svc: h.Svc},
		Notifier:  page,
		Scheduler: &predictform.SyncScheduler{},
		Host:      c.Request.Host,
	})
	if err != nil {
		_ = c.Error(err)
		respond.Error(c, http.StatusInternalServerError, "internal", "internal error", nil)
		return
	}

	switch c.PostForm("action") {
	case "reset":
		ctrl.Reset()
	case "demo":
		if err := ctrl.FillDemoData(); errors.Is(err, predictform.ErrDemoUnavailable) {
			page.Notify("Demo data is only available on localhost.", predictform.KindError)
		}
	default:
		h.submit(c.Request.Context(), ctrl, form)
	}

	respond.HTML(c, http.StatusOK, "predict.html", newPredictPage(form, page.Snapshot(), ctrl.DemoAvailable()))
}

func (h *Handler) submit(ctx context.Context, ctrl *predictform.Controller, form *predictform.Form) {
	for _, spec := range form.Fields() {
		_ = ctrl.Blur(spec.Name)
	}
	err := ctrl.Submit(ctx)
	var verr *predictform.ValidationError
	switch {
	case err == nil, errors.As(err, &verr):
	case errors.Is(err, predictform.ErrPredictionFailed):
		telemetry.Warn("web.predict_failed", map[string]any{"error": err.Error()})
	default:
		telemetry.Error("web.predict_error", map[string]any{"error": err.Error()})
	}
}

type historyPage struct {
	basePage
	Predictions []predictions.Prediction
}

func (h *Handler) history(c *gin.Context) {
	list, err := h.Svc.History(c.Request.Context(), historyLimit)
	page := historyPage{basePage: basePage{Title: "History"}, Predictions: list}
	if err != nil {
		_ = c.Error(err)
		page.Notifications = []predictform.Notification{{Message: "Could not load prediction history.", Kind: predictform.KindError}}
	}
	respond.HTML(c, http.StatusOK, "history.html", page)
}
