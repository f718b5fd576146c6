package predictform

import "sync"

// Notification is one message shown to the user.
type Notification struct {
	Message string
	Kind    Kind
}

// Page is an in-memory View and Notifier. It is safe for concurrent use.
type Page struct {
	mu                     sync.Mutex
	busy                   bool
	resultsVisible         bool
	recommendationsVisible bool
	result                 ResultView
	gaugeText              string
	gaugeBackground        string
	gaugeFrames            int
	gaugeDone              bool
	recommendations        []Recommendation
	styles                 map[string]string
	styleOrder             []string
	fieldValues            map[string]string
	fieldErrors            map[string]string
	scrolledTo             string
	notifications          []Notification
}

// NewPage constructs an empty Page.
func NewPage() *Page {
	return &Page{
		styles:      map[string]string{},
		fieldValues: map[string]string{},
		fieldErrors: map[string]string{},
	}
}

func (p *Page) SetBusy(busy bool) {
	p.mu.Lock()
	p.busy = busy
	p.mu.Unlock()
}

func (p *Page) ShowResults(result ResultView) {
	p.mu.Lock()
	p.result = result
	p.gaugeText = result.ProbabilityText
	p.gaugeBackground = result.CircleBackground
	p.gaugeDone = false
	p.resultsVisible = true
	p.mu.Unlock()
}

func (p *Page) HideResults() {
	p.mu.Lock()
	p.resultsVisible = false
	p.recommendationsVisible = false
	p.mu.Unlock()
}

func (p *Page) ScrollTo(target string) {
	p.mu.Lock()
	p.scrolledTo = target
	p.mu.Unlock()
}

func (p *Page) SetGauge(text, background string, done bool) {
	p.mu.Lock()
	p.gaugeText = text
	p.gaugeBackground = background
	p.gaugeDone = done
	p.gaugeFrames++
	p.mu.Unlock()
}

func (p *Page) ShowRecommendations(recs []Recommendation) {
	p.mu.Lock()
	p.recommendations = append([]Recommendation(nil), recs...)
	p.recommendationsVisible = true
	p.mu.Unlock()
}

func (p *Page) EnsureStyle(id, css string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.styles[id]; ok {
		return
	}
	p.styles[id] = css
	p.styleOrder = append(p.styleOrder, id)
}

func (p *Page) SetFieldError(name, message string) {
	p.mu.Lock()
	p.fieldErrors[name] = message
	p.mu.Unlock()
}

func (p *Page) ClearFieldError(name string) {
	p.mu.Lock()
	delete(p.fieldErrors, name)
	p.mu.Unlock()
}

func (p *Page) SetFieldValue(name, value string) {
	p.mu.Lock()
	p.fieldValues[name] = value
	p.mu.Unlock()
}

func (p *Page) ClearFields() {
	p.mu.Lock()
	p.fieldValues = map[string]string{}
	p.fieldErrors = map[string]string{}
	p.mu.Unlock()
}

// Notify records a notification; Page doubles as the page's toast area.
func (p *Page) Notify(message string, kind Kind) {
	p.mu.Lock()
	p.notifications = append(p.notifications, Notification{Message: message, Kind: kind})
	p.mu.Unlock()
}

// Style is one installed stylesheet.
type Style struct {
	ID  string
	CSS string
}

// PageSnapshot is a point-in-time copy of a Page.
type PageSnapshot struct {
	Busy                   bool
	ButtonLabel            string
	ResultsVisible         bool
	RecommendationsVisible bool
	Result                 ResultView
	GaugeText              string
	GaugeBackground        string
	GaugeFrames            int
	GaugeDone              bool
	Recommendations        []Recommendation
	Styles                 []Style
	FieldValues            map[string]string
	FieldErrors            map[string]string
	ScrolledTo             string
	Notifications          []Notification
}

// Snapshot copies the current page state.
func (p *Page) Snapshot() PageSnapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	snap := PageSnapshot{
		Busy:                   p.busy,
		ButtonLabel:            LabelIdle,
		ResultsVisible:         p.resultsVisible,
		RecommendationsVisible: p.recommendationsVisible,
		Result:                 p.result,
		GaugeText:              p.gaugeText,
		GaugeBackground:        p.gaugeBackground,
		GaugeFrames:            p.gaugeFrames,
		GaugeDone:              p.gaugeDone,
		Recommendations:        append([]Recommendation(nil), p.recommendations...),
		FieldValues:            make(map[string]string, len(p.fieldValues)),
		FieldErrors:            make(map[string]string, len(p.fieldErrors)),
		ScrolledTo:             p.scrolledTo,
		Notifications:          append([]Notification(nil), p.notifications...),
	}
	if p.busy {
		snap.ButtonLabel = LabelBusy
	}
	for _, id := range p.styleOrder {
		snap.Styles = append(snap.Styles, Style{ID: id, CSS: p.styles[id]})
	}
	for k, v := range p.fieldValues {
		snap.FieldValues[k] = v
	}
	for k, v := range p.fieldErrors {
		snap.FieldErrors[k] = v
	}
	return snap
}

var (
	_ View     = (*Page)(nil)
	_ Notifier = (*Page)(nil)
)
