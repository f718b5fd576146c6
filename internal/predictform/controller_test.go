package predictform

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
)

type stubPredictor struct {
	mu      sync.Mutex
	calls   int
	tokens  []string
	records []Record
	result  Result
	err     error
}

func (s *stubPredictor) Predict(ctx context.Context, csrfToken string, rec Record) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.tokens = append(s.tokens, csrfToken)
	s.records = append(s.records, rec)
	return s.result, s.err
}

func (s *stubPredictor) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func newTestController(t *testing.T, predictor Predictor, host string) (*Controller, *Form, *Page) {
	t.Helper()
	form := NewForm(DefaultFields, "tok-abc")
	page := NewPage()
	c, err := New(Options{
		Form:      form,
		View:      page,
		Predictor: predictor,
		Notifier:  page,
		Scheduler: &SyncScheduler{},
		Host:      host,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c, form, page
}

func fillValid(t *testing.T, form *Form) {
	t.Helper()
	for _, d := range DemoData {
		if err := form.Set(d.Name, d.Value); err != nil {
			t.Fatalf("Set %s: %v", d.Name, err)
		}
	}
}

func lastNotification(t *testing.T, snap PageSnapshot) Notification {
	t.Helper()
	if len(snap.Notifications) == 0 {
		t.Fatalf("expected a notification")
	}
	return snap.Notifications[len(snap.Notifications)-1]
}

func TestNewRequiresCollaborators(t *testing.T) {
	if _, err := New(Options{View: NewPage(), Predictor: &stubPredictor{}}); err == nil {
		t.Fatalf("expected error without form")
	}
	if _, err := New(Options{Form: NewForm(DefaultFields, ""), Predictor: &stubPredictor{}}); err == nil {
		t.Fatalf("expected error without view")
	}
	if _, err := New(Options{Form: NewForm(DefaultFields, ""), View: NewPage()}); err == nil {
		t.Fatalf("expected error without predictor")
	}
}

func TestSubmitSuccessRendersResults(t *testing.T) {
	predictor := &stubPredictor{result: Result{Success: true, Prediction: true, Probability: 0.82}}
	c, form, page := newTestController(t, predictor, "example.com")
	fillValid(t, form)

	if err := c.Submit(context.Background()); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if c.State() != StateSuccess {
		t.Fatalf("expected success state, got %s", c.State())
	}
	if predictor.Calls() != 1 {
		t.Fatalf("expected one request, got %d", predictor.Calls())
	}
	if predictor.tokens[0] != "tok-abc" {
		t.Fatalf("expected token to be sent, got %q", predictor.tokens[0])
	}
	if _, ok := predictor.records[0][TokenField]; ok {
		t.Fatalf("token must not be in the body")
	}

	snap := page.Snapshot()
	if snap.Busy || snap.ButtonLabel != LabelIdle {
		t.Fatalf("expected button restored, got busy=%v label=%q", snap.Busy, snap.ButtonLabel)
	}
	if !snap.ResultsVisible || !snap.RecommendationsVisible {
		t.Fatalf("expected results and recommendations visible")
	}
	if snap.Result.Title != "High Diabetes Risk" || snap.Result.ProbabilityText != "82%" || snap.Result.Risk.Label != "High Risk" {
		t.Fatalf("unexpected result %+v", snap.Result)
	}
	if snap.GaugeText != "82%" {
		t.Fatalf("expected gauge to end on 82%%, got %q", snap.GaugeText)
	}
	if snap.GaugeBackground != snap.Result.CircleBackground {
		t.Fatalf("expected final gauge background %q, got %q", snap.Result.CircleBackground, snap.GaugeBackground)
	}
	if !snap.GaugeDone {
		t.Fatalf("expected the final gauge frame to be painted")
	}
	if snap.GaugeFrames < GaugeFrames+1 {
		t.Fatalf("expected at least %d gauge frames, got %d", GaugeFrames+1, snap.GaugeFrames)
	}
	if snap.ScrolledTo != ScrollResults {
		t.Fatalf("expected scroll to results, got %q", snap.ScrolledTo)
	}
	if len(snap.Recommendations) != 4 || snap.Recommendations[0].Title != "Consult a Healthcare Provider" {
		t.Fatalf("unexpected recommendations %+v", snap.Recommendations)
	}
	if n := lastNotification(t, snap); n.Message != MsgSuccess || n.Kind != KindSuccess {
		t.Fatalf("unexpected notification %+v", n)
	}
}

func TestSubmitTwiceInjectsStyleOnce(t *testing.T) {
	predictor := &stubPredictor{result: Result{Success: true, Probability: 0.1}}
	c, form, page := newTestController(t, predictor, "")
	fillValid(t, form)

	for i := 0; i < 2; i++ {
		if err := c.Submit(context.Background()); err != nil {
			t.Fatalf("Submit %d: %v", i, err)
		}
	}
	snap := page.Snapshot()
	if len(snap.Styles) != 1 || snap.Styles[0].ID != RecommendationStyleID {
		t.Fatalf("expected one recommendation stylesheet, got %+v", snap.Styles)
	}
	if snap.Recommendations[0].Title != "Maintain Healthy Lifestyle" {
		t.Fatalf("unexpected recommendations %+v", snap.Recommendations)
	}
}

func TestSubmitValidationBlocksRequest(t *testing.T) {
	predictor := &stubPredictor{result: Result{Success: true}}
	c, form, page := newTestController(t, predictor, "")
	fillValid(t, form)
	_ = form.Set("age", "-5")

	err := c.Submit(context.Background())
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(verr.Errors) != 1 || verr.Errors[0] != "Age must be between 0 and 120" {
		t.Fatalf("unexpected validation errors %v", verr.Errors)
	}
	if predictor.Calls() != 0 {
		t.Fatalf("no request may be sent for invalid input")
	}
	if c.State() != StateIdle {
		t.Fatalf("expected idle, got %s", c.State())
	}
	snap := page.Snapshot()
	if snap.Busy || snap.ResultsVisible {
		t.Fatalf("expected idle form without results")
	}
	n := lastNotification(t, snap)
	if !strings.HasPrefix(n.Message, MsgValidationHeader) || !strings.Contains(n.Message, "Age must be between 0 and 120") {
		t.Fatalf("unexpected notification %q", n.Message)
	}
}

func TestSubmitFailurePayload(t *testing.T) {
	predictor := &stubPredictor{result: Result{Success: false, Error: "x"}}
	c, form, page := newTestController(t, predictor, "")
	fillValid(t, form)

	err := c.Submit(context.Background())
	if !errors.Is(err, ErrPredictionFailed) {
		t.Fatalf("expected ErrPredictionFailed, got %v", err)
	}
	if !strings.Contains(err.Error(), "x") {
		t.Fatalf("expected cause in error, got %v", err)
	}
	if c.State() != StateFailed {
		t.Fatalf("expected failed, got %s", c.State())
	}
	snap := page.Snapshot()
	if snap.ResultsVisible || snap.RecommendationsVisible {
		t.Fatalf("results must stay hidden on failure")
	}
	if snap.Busy {
		t.Fatalf("expected button restored")
	}
	if n := lastNotification(t, snap); n.Message != MsgFailure || n.Kind != KindError {
		t.Fatalf("unexpected notification %+v", n)
	}
}

func TestSubmitTransportError(t *testing.T) {
	predictor := &stubPredictor{err: errors.New("connection refused")}
	c, form, page := newTestController(t, predictor, "")
	fillValid(t, form)

	if err := c.Submit(context.Background()); !errors.Is(err, ErrPredictionFailed) {
		t.Fatalf("expected ErrPredictionFailed, got %v", err)
	}
	if page.Snapshot().ResultsVisible {
		t.Fatalf("results must stay hidden on failure")
	}

	// The user may resubmit after a failure.
	predictor.mu.Lock()
	predictor.err = nil
	predictor.result = Result{Success: true, Probability: 0.4}
	predictor.mu.Unlock()
	if err := c.Submit(context.Background()); err != nil {
		t.Fatalf("resubmit: %v", err)
	}
	if !page.Snapshot().ResultsVisible {
		t.Fatalf("expected results after resubmit")
	}
}

func TestSubmitInProgressAndResetCancels(t *testing.T) {
	started := make(chan struct{})
	predictor := PredictorFunc(func(ctx context.Context, _ string, _ Record) (Result, error) {
		close(started)
		<-ctx.Done()
		return Result{}, ctx.Err()
	})
	c, form, page := newTestController(t, predictor, "")
	fillValid(t, form)

	done := make(chan error, 1)
	go func() { done <- c.Submit(context.Background()) }()
	<-started

	if !page.Snapshot().Busy {
		t.Fatalf("expected busy while submitting")
	}
	if err := c.Submit(context.Background()); !errors.Is(err, ErrSubmitInProgress) {
		t.Fatalf("expected ErrSubmitInProgress, got %v", err)
	}

	c.Reset()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected cancellation, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("in-flight request was not cancelled")
	}
	if c.State() != StateIdle {
		t.Fatalf("expected idle after reset, got %s", c.State())
	}
	snap := page.Snapshot()
	if snap.Busy {
		t.Fatalf("expected button restored after reset")
	}
	for _, n := range snap.Notifications {
		if n.Message == MsgFailure {
			t.Fatalf("an abandoned submission must not report failure")
		}
	}
}

func TestResetClearsFieldsAndHidesResults(t *testing.T) {
	predictor := &stubPredictor{result: Result{Success: true, Probability: 0.9, Prediction: true}}
	c, form, page := newTestController(t, predictor, "localhost")
	if err := c.FillDemoData(); err != nil {
		t.Fatalf("FillDemoData: %v", err)
	}
	if err := c.Submit(context.Background()); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	c.Reset()
	snap := page.Snapshot()
	if snap.ResultsVisible || snap.RecommendationsVisible {
		t.Fatalf("expected results hidden")
	}
	if len(snap.FieldValues) != 0 {
		t.Fatalf("expected field values cleared, got %v", snap.FieldValues)
	}
	for name, v := range form.Serialize() {
		if v != "" {
			t.Fatalf("field %s not cleared: %q", name, v)
		}
	}
	if snap.ScrolledTo != ScrollForm {
		t.Fatalf("expected scroll to form, got %q", snap.ScrolledTo)
	}
	if c.State() != StateIdle {
		t.Fatalf("expected idle, got %s", c.State())
	}

	// Reset from idle is harmless.
	c.Reset()
	if page.Snapshot().ResultsVisible {
		t.Fatalf("expected results hidden")
	}
}

func TestInputAndBlurValidation(t *testing.T) {
	c, form, page := newTestController(t, &stubPredictor{}, "")

	if err := c.Input("age", "-5"); err != nil {
		t.Fatalf("Input: %v", err)
	}
	if got := page.Snapshot().FieldErrors["age"]; got != "Value must be between 0 and 120" {
		t.Fatalf("unexpected field error %q", got)
	}
	if err := c.Input("age", "40"); err != nil {
		t.Fatalf("Input: %v", err)
	}
	if _, ok := page.Snapshot().FieldErrors["age"]; ok {
		t.Fatalf("expected error cleared")
	}

	_ = form.Set("glucose", "9000")
	if err := c.Blur("glucose"); err != nil {
		t.Fatalf("Blur: %v", err)
	}
	if got := page.Snapshot().FieldErrors["glucose"]; got != "Value must be between 0 and 300" {
		t.Fatalf("unexpected field error %q", got)
	}

	if err := c.Input("unknown", "1"); !errors.Is(err, ErrUnknownField) {
		t.Fatalf("expected ErrUnknownField, got %v", err)
	}
}

func TestFillDemoDataRequiresDevHost(t *testing.T) {
	c, _, _ := newTestController(t, &stubPredictor{}, "diabetes.example.com")
	if c.DemoAvailable() {
		t.Fatalf("demo must be unavailable on a public host")
	}
	if err := c.FillDemoData(); !errors.Is(err, ErrDemoUnavailable) {
		t.Fatalf("expected ErrDemoUnavailable, got %v", err)
	}

	c, form, page := newTestController(t, &stubPredictor{}, "127.0.0.1:8080")
	if err := c.FillDemoData(); err != nil {
		t.Fatalf("FillDemoData: %v", err)
	}
	if form.Value("bmi") != "25.5" || page.Snapshot().FieldValues["age"] != "35" {
		t.Fatalf("expected demo values applied")
	}
	if n := lastNotification(t, page.Snapshot()); n.Message != MsgDemoFilled {
		t.Fatalf("unexpected notification %+v", n)
	}
}

func TestIsDevHost(t *testing.T) {
	cases := map[string]bool{
		"localhost":      true,
		"localhost:8080": true,
		"127.0.0.1":      true,
		"127.0.0.1:3000": true,
		"LOCALHOST":      true,
		"example.com":    false,
		"10.0.0.1:8080":  false,
		"":               false,
	}
	for host, want := range cases {
		if got := IsDevHost(host); got != want {
			t.Fatalf("IsDevHost(%q) = %v, want %v", host, got, want)
		}
	}
}

// hookView runs hook once, on the first call of the named View method.
type hookView struct {
	*Page
	method string
	hook   func()
	once   sync.Once
}

func (v *hookView) fire(method string) {
	if method == v.method {
		v.once.Do(v.hook)
	}
}

func (v *hookView) SetBusy(busy bool) {
	v.Page.SetBusy(busy)
	v.fire("SetBusy")
}

func (v *hookView) ShowResults(r ResultView) {
	v.Page.ShowResults(r)
	v.fire("ShowResults")
}

func (v *hookView) SetGauge(text, background string, done bool) {
	v.Page.SetGauge(text, background, done)
	v.fire("SetGauge")
}

func (v *hookView) ShowRecommendations(recs []Recommendation) {
	v.Page.ShowRecommendations(recs)
	v.fire("ShowRecommendations")
}

func TestResetDuringRenderStopsIt(t *testing.T) {
	for _, method := range []string{"ShowResults", "SetGauge", "ShowRecommendations"} {
		t.Run(method, func(t *testing.T) {
			form := NewForm(DefaultFields, "tok")
			fillValid(t, form)
			page := NewPage()
			view := &hookView{Page: page, method: method}
			sched := &SyncScheduler{}
			c, err := New(Options{
				Form:      form,
				View:      view,
				Predictor: &stubPredictor{result: Result{Success: true, Prediction: true, Probability: 0.82}},
				Notifier:  page,
				Scheduler: sched,
			})
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			view.hook = c.Reset

			if err := c.Submit(context.Background()); !errors.Is(err, context.Canceled) {
				t.Fatalf("expected abandoned submission, got %v", err)
			}
			snap := page.Snapshot()
			if c.State() != StateIdle {
				t.Fatalf("expected idle, got %s", c.State())
			}
			if snap.ResultsVisible || snap.RecommendationsVisible {
				t.Fatalf("panels visible after reset: results=%v recs=%v", snap.ResultsVisible, snap.RecommendationsVisible)
			}
			if snap.Busy {
				t.Fatalf("expected button restored")
			}
			for _, n := range snap.Notifications {
				if n.Message == MsgSuccess {
					t.Fatalf("success reported after reset")
				}
			}
			if snap.ScrolledTo != ScrollForm {
				t.Fatalf("expected scroll to form, got %q", snap.ScrolledTo)
			}
		})
	}
}

func TestResetStopsGaugeOnTicker(t *testing.T) {
	form := NewForm(DefaultFields, "tok")
	fillValid(t, form)
	page := NewPage()
	sched := NewTickerScheduler(time.Millisecond)
	defer sched.Stop()
	c, err := New(Options{
		Form:      form,
		View:      page,
		Predictor: &stubPredictor{result: Result{Success: true, Probability: 0.9}},
		Notifier:  page,
		Scheduler: sched,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := c.Submit(context.Background()); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	c.Reset()
	frames := page.Snapshot().GaugeFrames
	time.Sleep(50 * time.Millisecond)
	// At most one frame already past its generation check may still land.
	if got := page.Snapshot().GaugeFrames; got > frames+1 {
		t.Fatalf("gauge kept animating after reset: %d -> %d frames", frames, got)
	}
	if page.Snapshot().ResultsVisible {
		t.Fatalf("expected results hidden")
	}
}

func TestCollaboratorsMayCallBack(t *testing.T) {
	form := NewForm(DefaultFields, "tok")
	fillValid(t, form)
	page := NewPage()
	var c *Controller
	var seen []State
	validator := ValidatorFunc(func(rec Record) Validation {
		seen = append(seen, c.State())
		return NewHealthValidator(DefaultFields).Validate(rec)
	})
	view := &hookView{Page: page, method: "SetBusy"}
	view.hook = func() { seen = append(seen, c.State()) }

	var err error
	c, err = New(Options{
		Form:      form,
		View:      view,
		Validator: validator,
		Predictor: &stubPredictor{result: Result{Success: true, Probability: 0.2}},
		Notifier:  page,
		Scheduler: &SyncScheduler{},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- c.Submit(context.Background()) }()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Submit: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("Submit deadlocked on a collaborator calling State")
	}
	if len(seen) != 2 || seen[0] != StateSubmitting || seen[1] != StateSubmitting {
		t.Fatalf("unexpected states seen by collaborators: %v", seen)
	}
}
