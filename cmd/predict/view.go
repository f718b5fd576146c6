package main

import (
	"fmt"
	"io"
	"sync"

	"diabetes-backend/internal/predictform"
)

// termView renders the controller's output as plain text.
type termView struct {
	mu      sync.Mutex
	out     io.Writer
	last    string
	recs    []predictform.Recommendation
	settled chan struct{}
	once    sync.Once
}

func newTermView(out io.Writer) *termView {
	return &termView{out: out, settled: make(chan struct{})}
}

func (v *termView) SetBusy(busy bool) {
	if busy {
		v.printf("%s\n", predictform.LabelBusy)
	}
}

func (v *termView) ShowResults(r predictform.ResultView) {
	v.printf("\n%s\n%s\nRisk level: %s\n", r.Title, r.Message, r.Risk.Label)
}

func (v *termView) HideResults() {}

func (v *termView) ScrollTo(string) {}

// SetGauge redraws the probability line; settled closes on the final frame.
func (v *termView) SetGauge(text, _ string, done bool) {
	v.mu.Lock()
	fmt.Fprintf(v.out, "\rProbability: %-4s", text)
	v.last = text
	v.mu.Unlock()
	if done {
		v.printf("\n")
		v.once.Do(func() { close(v.settled) })
	}
}

func (v *termView) ShowRecommendations(recs []predictform.Recommendation) {
	v.mu.Lock()
	v.recs = recs
	v.mu.Unlock()
}

func (v *termView) EnsureStyle(string, string) {}

func (v *termView) SetFieldError(name, message string) {
	v.printf("%s: %s\n", name, message)
}

func (v *termView) ClearFieldError(string) {}

func (v *termView) SetFieldValue(name, value string) {
	v.printf("%s = %s\n", name, value)
}

func (v *termView) ClearFields() {}

func (v *termView) printRecommendations() {
	v.mu.Lock()
	recs := v.recs
	v.mu.Unlock()
	if len(recs) == 0 {
		return
	}
	v.printf("\nRecommendations\n")
	for _, r := range recs {
		v.printf("  - %s: %s\n", r.Title, r.Description)
	}
}

func (v *termView) printf(format string, args ...any) {
	v.mu.Lock()
	defer v.mu.Unlock()
	fmt.Fprintf(v.out, format, args...)
}

var _ predictform.View = (*termView)(nil)

// syncWriter serializes writes from the notifier and the gauge goroutine.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}
