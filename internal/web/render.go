package web

import (
	"embed"
	"html/template"
	"io/fs"
	"strconv"

	"diabetes-backend/internal/predictform"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Templates parses the embedded page templates.
func Templates() (*template.Template, error) {
	return template.New("pages").Funcs(template.FuncMap{
		"percent": func(p float64) string { return strconv.Itoa(predictform.Percentage(p)) + "%" },
		"number":  predictform.FormatNumber,
	}).ParseFS(templateFS, "templates/*.html")
}

// Static returns the embedded asset tree rooted at static/.
func Static() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return sub
}

type style struct {
	ID  string
	CSS template.CSS
}

type basePage struct {
	Title         string
	Styles        []style
	Notifications []predictform.Notification
}

type fieldView struct {
	Name  string
	Label string
	Value string
	Error string
	Min   string
	Max   string
	Step  string
}

type predictPage struct {
	basePage
	CSRFToken           string
	Fields              []fieldView
	ButtonLabel         string
	DemoAvailable       bool
	ShowResults         bool
	Result              predictform.ResultView
	GaugeText           string
	GaugeBackground     template.CSS
	IconBackground      template.CSS
	RiskColor           template.CSS
	ShowRecommendations bool
	Recommendations     []predictform.Recommendation
}

func boundAttr(v float64) string {
	if v != v {
		return ""
	}
	return predictform.FormatNumber(v)
}

// newPredictPage renders a form and page state into template data. The
// gradient and color values come from predictform, never from user input.
func newPredictPage(form *predictform.Form, snap predictform.PageSnapshot, demo bool) predictPage {
	page := predictPage{
		basePage: basePage{
			Title:         "Predict",
			Notifications: snap.Notifications,
		},
		CSRFToken:     form.CSRFToken(),
		ButtonLabel:   snap.ButtonLabel,
		DemoAvailable: demo,
		ShowResults:   snap.ResultsVisible,
	}
	for _, s := range snap.Styles {
		page.Styles = append(page.Styles, style{ID: s.ID, CSS: template.CSS(s.CSS)})
	}
	for _, spec := range form.Fields() {
		step := ""
		if spec.Step > 0 {
			step = predictform.FormatNumber(spec.Step)
		}
		page.Fields = append(page.Fields, fieldView{
			Name:  spec.Name,
			Label: spec.Label,
			Value: form.Value(spec.Name),
			Error: snap.FieldErrors[spec.Name],
			Min:   boundAttr(spec.Min),
			Max:   boundAttr(spec.Max),
			Step:  step,
		})
	}
	if snap.ResultsVisible {
		page.Result = snap.Result
		page.GaugeText = snap.GaugeText
		page.GaugeBackground = template.CSS(snap.GaugeBackground)
		page.IconBackground = template.CSS(snap.Result.IconBackground)
		page.RiskColor = template.CSS(snap.Result.Risk.Color)
		page.ShowRecommendations = snap.RecommendationsVisible
		page.Recommendations = snap.Recommendations
	}
	return page
}
