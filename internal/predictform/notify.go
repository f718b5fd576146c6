package predictform

import (
	"fmt"
	"io"
	"sync"

	"diabetes-backend/internal/shared/telemetry"
)

// Kind classifies a user-facing notification.
type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
	KindInfo    Kind = "info"
)

// User-facing notification copy.
const (
	MsgValidationHeader = "Please correct the following errors:\n\n"
	MsgFailure          = "Failed to get prediction. Please try again."
	MsgSuccess          = "Prediction completed successfully!"
	MsgDemoFilled       = "Demo data filled successfully!"
)

// Notifier surfaces a message to the user.
type Notifier interface {
	Notify(message string, kind Kind)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(message string, kind Kind)

func (f NotifierFunc) Notify(message string, kind Kind) {
	f(message, kind)
}

// AlertNotifier is the blocking-dialog fallback: every message is written to W
// regardless of kind.
type AlertNotifier struct {
	mu sync.Mutex
	W  io.Writer
}

// NewAlertNotifier constructs an AlertNotifier writing to w.
func NewAlertNotifier(w io.Writer) *AlertNotifier {
	return &AlertNotifier{W: w}
}

func (n *AlertNotifier) Notify(message string, _ Kind) {
	n.mu.Lock()
	defer n.mu.Unlock()
	fmt.Fprintf(n.W, "%s\n", message)
}

// LogNotifier forwards notifications to the structured log.
type LogNotifier struct{}

func (LogNotifier) Notify(message string, kind Kind) {
	telemetry.Info("notification", map[string]any{
		"kind":    string(kind),
		"message": message,
	})
}
