package predictform

import (
	"fmt"
	"math"
)

// Result is the JSON payload returned by the prediction endpoint.
type Result struct {
	Success     bool    `json:"success"`
	Prediction  bool    `json:"prediction"`
	Probability float64 `json:"probability"`
	Message     string  `json:"message,omitempty"`
	Error       string  `json:"error,omitempty"`
}

const (
	ColorLow      = "#48bb78"
	ColorModerate = "#ed8936"
	ColorHigh     = "#e53e3e"
	gaugeTrack    = "#e2e8f0"
)

// Risk levels.
const (
	LevelLow      = "low"
	LevelModerate = "moderate"
	LevelHigh     = "high"
)

// Risk is the display classification derived from a percentage.
type Risk struct {
	Level string
	Label string
	Color string
}

// ResultView is everything the results panel shows for one prediction.
type ResultView struct {
	Title            string
	Message          string
	Percentage       int
	ProbabilityText  string
	Risk             Risk
	Degrees          float64
	CircleBackground string
	IconClass        string
	IconBackground   string
}

// Percentage converts a probability to a whole percentage, clamping to [0, 100].
func Percentage(probability float64) int {
	if math.IsNaN(probability) || probability <= 0 {
		return 0
	}
	if probability >= 1 {
		return 100
	}
	return int(math.Round(probability * 100))
}

// Classify maps a percentage to its risk label and color.
func Classify(percentage int) Risk {
	switch {
	case percentage < 30:
		return Risk{Level: LevelLow, Label: "Low Risk", Color: ColorLow}
	case percentage < 70:
		return Risk{Level: LevelModerate, Label: "Moderate Risk", Color: ColorModerate}
	default:
		return Risk{Level: LevelHigh, Label: "High Risk", Color: ColorHigh}
	}
}

// Degrees is the filled arc of the gauge for a percentage.
func Degrees(percentage float64) float64 {
	return percentage / 100 * 360
}

// ConicGradient is the gauge background filled to degrees with color.
func ConicGradient(color string, degrees float64) string {
	d := FormatNumber(degrees)
	return fmt.Sprintf("conic-gradient(%s %sdeg, %s %sdeg)", color, d, gaugeTrack, d)
}

// RenderResult builds the results panel for a successful prediction.
func RenderResult(r Result) ResultView {
	pct := Percentage(r.Probability)
	risk := Classify(pct)
	deg := Degrees(float64(pct))
	view := ResultView{
		Title:            "Low Diabetes Risk",
		Message:          "Based on your health data, your diabetes risk appears to be low.",
		Percentage:       pct,
		ProbabilityText:  fmt.Sprintf("%d%%", pct),
		Risk:             risk,
		Degrees:          deg,
		CircleBackground: ConicGradient(risk.Color, deg),
		IconClass:        "fas fa-check-circle",
		IconBackground:   "linear-gradient(135deg, #48bb78 0%, #38a169 100%)",
	}
	if r.Prediction {
		view.Title = "High Diabetes Risk"
		view.Message = "Based on your health data, you may be at risk for diabetes."
		view.IconClass = "fas fa-exclamation-triangle"
		view.IconBackground = "linear-gradient(135deg, #e53e3e 0%, #c53030 100%)"
	}
	return view
}
