package predictform

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"sync"
	"sync/atomic"

	"diabetes-backend/internal/shared/telemetry"
)

// State is the submission state of the controller.
type State int

const (
	StateIdle State = iota
	StateSubmitting
	StateSuccess
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSubmitting:
		return "submitting"
	case StateSuccess:
		return "success"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Options wires a Controller. Form, View and Predictor are required.
type Options struct {
	Form      *Form
	View      View
	Predictor Predictor
	// Validator defaults to a HealthValidator over the form's fields.
	Validator Validator
	// Notifier defaults to an AlertNotifier on stderr.
	Notifier Notifier
	// Scheduler defaults to a TickerScheduler.
	Scheduler FrameScheduler
	// Host is the page host; localhost and 127.0.0.1 enable demo data.
	Host string
}

// Controller drives the prediction form: submit, render, validate, reset.
type Controller struct {
	form      *Form
	view      View
	predictor Predictor
	validator Validator
	notifier  Notifier
	scheduler FrameScheduler
	devMode   bool

	mu     sync.Mutex
	state  State
	seq    uint64
	cancel context.CancelFunc

	animation atomic.Uint64
}

// New constructs a Controller.
func New(opts Options) (*Controller, error) {
	if opts.Form == nil {
		return nil, errors.New("predictform: form is required")
	}
	if opts.View == nil {
		return nil, errors.New("predictform: view is required")
	}
	if opts.Predictor == nil {
		return nil, errors.New("predictform: predictor is required")
	}
	c := &Controller{
		form:      opts.Form,
		view:      opts.View,
		predictor: opts.Predictor,
		validator: opts.Validator,
		notifier:  opts.Notifier,
		scheduler: opts.Scheduler,
		devMode:   IsDevHost(opts.Host),
	}
	if c.validator == nil {
		c.validator = NewHealthValidator(opts.Form.Fields())
	}
	if c.notifier == nil {
		c.notifier = NewAlertNotifier(os.Stderr)
	}
	if c.scheduler == nil {
		c.scheduler = NewTickerScheduler(DefaultFrameInterval)
	}
	return c, nil
}

// State returns the current submission state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Submit serializes and validates the form, sends one prediction request and
// renders the outcome. Invalid input returns *ValidationError without any
// request; request, decode and success:false failures return an error wrapping
// ErrPredictionFailed. A second Submit while one is in flight returns
// ErrSubmitInProgress. A Reset at any point abandons the submission: nothing
// further is painted or notified and the error wraps context.Canceled.
//
// Collaborators are called without holding the controller lock, so they may
// call back into the controller.
func (c *Controller) Submit(ctx context.Context) error {
	c.mu.Lock()
	if c.state == StateSubmitting {
		c.mu.Unlock()
		return ErrSubmitInProgress
	}
	c.state = StateSubmitting
	c.seq++
	seq := c.seq
	c.mu.Unlock()

	c.view.SetBusy(true)
	rec := c.form.Serialize()
	validation := c.validator.Validate(rec)

	c.mu.Lock()
	if c.seq != seq {
		c.mu.Unlock()
		return errAbandoned()
	}
	if !validation.IsValid {
		c.state = StateIdle
		c.mu.Unlock()
		c.view.SetBusy(false)
		c.notifier.Notify(MsgValidationHeader+strings.Join(validation.Errors, "\n"), KindError)
		return &ValidationError{Errors: validation.Errors}
	}
	reqCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.mu.Unlock()

	result, err := c.predictor.Predict(reqCtx, c.form.CSRFToken(), rec)
	cancel()
	if err == nil && !result.Success {
		err = errors.New(firstNonEmpty(result.Error, "Prediction failed"))
	}

	c.mu.Lock()
	if c.seq != seq {
		// Reset ran while the request was in flight and already restored the form.
		c.mu.Unlock()
		return errAbandoned()
	}
	c.cancel = nil
	if err != nil {
		c.state = StateFailed
		c.mu.Unlock()
		c.view.SetBusy(false)
		telemetry.Error("prediction.error", map[string]any{"error": err})
		c.notifier.Notify(MsgFailure, KindError)
		return fmt.Errorf("%w: %w", ErrPredictionFailed, err)
	}
	c.state = StateSuccess
	generation := c.animation.Add(1)
	c.mu.Unlock()
	c.view.SetBusy(false)

	// Each step re-checks the generation; a Reset raised by any earlier
	// step (or concurrently) stops the render.
	view := RenderResult(result)
	steps := []func(){
		func() { c.view.ShowResults(view) },
		func() { c.view.ScrollTo(ScrollResults) },
		func() { c.animateGauge(generation, view.Percentage, view.Risk.Color) },
		func() { c.view.ShowRecommendations(Recommendations(result.Prediction, view.Percentage)) },
		func() { c.view.EnsureStyle(RecommendationStyleID, RecommendationCSS) },
		func() { c.notifier.Notify(MsgSuccess, KindSuccess) },
	}
	for _, step := range steps {
		if !c.current(generation) {
			return errAbandoned()
		}
		step()
	}
	return nil
}

func errAbandoned() error {
	return fmt.Errorf("submission abandoned: %w", context.Canceled)
}

// current reports whether generation is still the latest render.
func (c *Controller) current(generation uint64) bool {
	return c.animation.Load() == generation
}

// animateGauge paints the first frame immediately and schedules the rest.
// A newer generation (another result or a reset) stops the ramp; the check
// runs before every frame and again before the next one is requested.
func (c *Controller) animateGauge(generation uint64, target int, color string) {
	frame := 0
	var step func()
	step = func() {
		if !c.current(generation) {
			return
		}
		f := GaugeAt(frame, target)
		c.view.SetGauge(f.Text, ConicGradient(color, Degrees(f.Value)), f.Done)
		if f.Done || !c.current(generation) {
			return
		}
		frame++
		c.scheduler.RequestFrame(step)
	}
	step()
}

// Reset hides the results, clears every field and scrolls back to the form.
// An in-flight request is cancelled and any render or gauge animation stops.
func (c *Controller) Reset() {
	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	wasSubmitting := c.state == StateSubmitting
	c.seq++
	c.animation.Add(1)
	c.state = StateIdle
	c.mu.Unlock()

	if wasSubmitting {
		c.view.SetBusy(false)
	}
	c.view.HideResults()
	c.form.Reset()
	c.view.ClearFields()
	c.view.ScrollTo(ScrollForm)
}

// Input records a keystroke in a numeric field and re-validates it.
func (c *Controller) Input(name, raw string) error {
	spec, ok := c.form.Field(name)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownField, name)
	}
	if err := c.form.Set(name, raw); err != nil {
		return err
	}
	c.validateInput(spec, raw)
	return nil
}

// Blur re-validates a field when it loses focus.
func (c *Controller) Blur(name string) error {
	spec, ok := c.form.Field(name)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownField, name)
	}
	c.validateInput(spec, c.form.Value(name))
	return nil
}

func (c *Controller) validateInput(spec FieldSpec, raw string) {
	c.view.ClearFieldError(spec.Name)
	if msg := ValidateField(spec, raw); msg != "" {
		c.view.SetFieldError(spec.Name, msg)
	}
}

// DemoData is the sample patient used by FillDemoData, in form order.
var DemoData = []struct {
	Name  string
	Value string
}{
	{"pregnancies", "2"},
	{"glucose", "120"},
	{"blood_pressure", "70"},
	{"skin_thickness", "20"},
	{"insulin", "80"},
	{"bmi", "25.5"},
	{"diabetes_pedigree", "0.5"},
	{"age", "35"},
}

// DemoAvailable reports whether the page host allows demo data.
func (c *Controller) DemoAvailable() bool {
	return c.devMode
}

// FillDemoData populates the form with DemoData. Fields the form does not
// declare are skipped.
func (c *Controller) FillDemoData() error {
	if !c.devMode {
		return ErrDemoUnavailable
	}
	for _, d := range DemoData {
		if err := c.form.Set(d.Name, d.Value); err != nil {
			continue
		}
		c.view.SetFieldValue(d.Name, d.Value)
	}
	c.notifier.Notify(MsgDemoFilled, KindSuccess)
	return nil
}

// IsDevHost reports whether host (optionally with a port) is a local
// development address.
func IsDevHost(host string) bool {
	host = strings.TrimSpace(host)
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	switch strings.ToLower(host) {
	case "localhost", "127.0.0.1":
		return true
	default:
		return false
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
