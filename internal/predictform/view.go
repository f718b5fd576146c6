package predictform

// Submit button copy.
const (
	LabelIdle = "Predict Diabetes Risk"
	LabelBusy = "Analyzing..."
)

// Scroll targets.
const (
	ScrollForm    = "form"
	ScrollResults = "results"
)

// View is the rendering surface the controller drives. Implementations used
// with a TickerScheduler must be safe for concurrent use, since gauge frames
// arrive on the scheduler's goroutine.
type View interface {
	// SetBusy disables the submit button and shows the spinner, or restores it.
	SetBusy(busy bool)
	ShowResults(result ResultView)
	// HideResults hides the results panel including its recommendations.
	HideResults()
	ScrollTo(target string)
	// SetGauge paints one gauge animation frame; done marks the final frame.
	SetGauge(text, background string, done bool)
	ShowRecommendations(recs []Recommendation)
	// EnsureStyle installs css under id unless a stylesheet with that id exists.
	EnsureStyle(id, css string)
	SetFieldError(name, message string)
	ClearFieldError(name string)
	SetFieldValue(name, value string)
	// ClearFields empties every input.
	ClearFields()
}
