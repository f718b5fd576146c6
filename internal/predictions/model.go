package predictions

import "time"

// Features are the eight inputs of the risk model, in model order.
type Features struct {
	Pregnancies      int     `json:"pregnancies"`
	Glucose          float64 `json:"glucose"`
	BloodPressure    float64 `json:"blood_pressure"`
	SkinThickness    float64 `json:"skin_thickness"`
	Insulin          float64 `json:"insulin"`
	BMI              float64 `json:"bmi"`
	DiabetesPedigree float64 `json:"diabetes_pedigree"`
	Age              int     `json:"age"`
}

// Vector returns the features as model inputs.
func (f Features) Vector() []float64 {
	return []float64{
		float64(f.Pregnancies),
		f.Glucose,
		f.BloodPressure,
		f.SkinThickness,
		f.Insulin,
		f.BMI,
		f.DiabetesPedigree,
		float64(f.Age),
	}
}

// Patient is one stored set of measurements.
type Patient struct {
	ID string
	Features
	CreatedAt time.Time
}

// Prediction is a stored model outcome for one patient.
type Prediction struct {
	ID          string
	Patient     Patient
	Diabetic    bool
	Probability float64
	CreatedAt   time.Time
}

// Label is the human readable outcome.
func (p Prediction) Label() string {
	return OutcomeLabel(p.Diabetic)
}

// OutcomeLabel names a classification.
func OutcomeLabel(diabetic bool) string {
	if diabetic {
		return "Diabetic"
	}
	return "Non-diabetic"
}
