package predictform

import (
	"math"
	"strconv"
	"strings"
)

// TokenField is the hidden anti-forgery input carried by the prediction form.
const TokenField = "csrfmiddlewaretoken"

// FieldSpec declares one numeric input of the prediction form.
// A NaN bound is treated as absent.
type FieldSpec struct {
	Name  string
	Label string
	Min   float64
	Max   float64
	Step  float64
}

// DefaultFields is the health questionnaire served by the web form, in display order.
var DefaultFields = []FieldSpec{
	{Name: "pregnancies", Label: "Pregnancies", Min: 0, Max: 20, Step: 1},
	{Name: "glucose", Label: "Glucose", Min: 0, Max: 300, Step: 1},
	{Name: "blood_pressure", Label: "Blood Pressure", Min: 0, Max: 200, Step: 1},
	{Name: "skin_thickness", Label: "Skin Thickness", Min: 0, Max: 100, Step: 1},
	{Name: "insulin", Label: "Insulin", Min: 0, Max: 900, Step: 1},
	{Name: "bmi", Label: "BMI", Min: 0, Max: 70, Step: 0.1},
	{Name: "diabetes_pedigree", Label: "Diabetes Pedigree", Min: 0, Max: 3, Step: 0.001},
	{Name: "age", Label: "Age", Min: 0, Max: 120, Step: 1},
}

// Record is the flat key/value payload built from the form on submit.
type Record map[string]string

// ValidateField returns the inline message for raw, or "" when the value is
// empty or within the declared bounds.
func ValidateField(spec FieldSpec, raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}
	value, ok := parseNumber(raw)
	if !ok || value < spec.Min || value > spec.Max {
		return "Value must be between " + FormatNumber(spec.Min) + " and " + FormatNumber(spec.Max)
	}
	return ""
}

// FormatNumber renders f the shortest way that round-trips, e.g. 25.5, 120, NaN.
func FormatNumber(f float64) string {
	if math.IsNaN(f) {
		return "NaN"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func parseNumber(raw string) (float64, bool) {
	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, false
	}
	return value, true
}

func humanize(name string) string {
	words := strings.Fields(strings.NewReplacer("_", " ", "-", " ").Replace(name))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
