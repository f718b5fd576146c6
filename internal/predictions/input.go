package predictions

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Number is one submitted feature value. It accepts JSON numbers, numeric
// strings and form values; a missing or null value reads as 0.
type Number struct {
	raw     string
	present bool
	invalid bool
}

// UnmarshalJSON keeps the value for Features to parse so errors can name the field.
func (n *Number) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*n = Number{}
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*n = Number{raw: s, present: true}
	case len(b) > 0 && (b[0] == '-' || (b[0] >= '0' && b[0] <= '9')):
		*n = Number{raw: string(b), present: true}
	default:
		*n = Number{present: true, invalid: true}
	}
	return nil
}

// UnmarshalParam implements gin's binding.BindUnmarshaler for form posts.
func (n *Number) UnmarshalParam(param string) error {
	*n = Number{raw: param, present: true}
	return nil
}

func (n Number) float(name string) (float64, error) {
	if !n.present {
		return 0, nil
	}
	if n.invalid {
		return 0, fmt.Errorf("%s must be a number", name)
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(n.raw), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%s must be a number", name)
	}
	return v, nil
}

func (n Number) int(name string) (int, error) {
	v, err := n.float(name)
	switch {
	case err != nil:
		return 0, err
	case v != math.Trunc(v):
		return 0, fmt.Errorf("%s must be a whole number", name)
	case math.Abs(v) > math.MaxInt32:
		return 0, fmt.Errorf("%s is out of range", name)
	}
	return int(v), nil
}

// PredictRequest is the body of POST /api/predict/, as JSON or form fields.
type PredictRequest struct {
	Pregnancies      Number `json:"pregnancies" form:"pregnancies"`
	Glucose          Number `json:"glucose" form:"glucose"`
	BloodPressure    Number `json:"blood_pressure" form:"blood_pressure"`
	SkinThickness    Number `json:"skin_thickness" form:"skin_thickness"`
	Insulin          Number `json:"insulin" form:"insulin"`
	BMI              Number `json:"bmi" form:"bmi"`
	DiabetesPedigree Number `json:"diabetes_pedigree" form:"diabetes_pedigree"`
	Age              Number `json:"age" form:"age"`
}

// Features parses every value; the first invalid field is reported.
func (r PredictRequest) Features() (Features, error) {
	var (
		f   Features
		err error
	)
	floats := []struct {
		name string
		in   Number
		out  *float64
	}{
		{"glucose", r.Glucose, &f.Glucose},
		{"blood_pressure", r.BloodPressure, &f.BloodPressure},
		{"skin_thickness", r.SkinThickness, &f.SkinThickness},
		{"insulin", r.Insulin, &f.Insulin},
		{"bmi", r.BMI, &f.BMI},
		{"diabetes_pedigree", r.DiabetesPedigree, &f.DiabetesPedigree},
	}
	if f.Pregnancies, err = r.Pregnancies.int("pregnancies"); err != nil {
		return Features{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	for _, fl := range floats {
		if *fl.out, err = fl.in.float(fl.name); err != nil {
			return Features{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
	}
	if f.Age, err = r.Age.int("age"); err != nil {
		return Features{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return f, nil
}

// RequestFromValues builds a PredictRequest through get, which reports
// whether the field was submitted at all.
func RequestFromValues(get func(name string) (string, bool)) PredictRequest {
	var r PredictRequest
	for name, n := range map[string]*Number{
		"pregnancies":       &r.Pregnancies,
		"glucose":           &r.Glucose,
		"blood_pressure":    &r.BloodPressure,
		"skin_thickness":    &r.SkinThickness,
		"insulin":           &r.Insulin,
		"bmi":               &r.BMI,
		"diabetes_pedigree": &r.DiabetesPedigree,
		"age":               &r.Age,
	} {
		if v, ok := get(name); ok {
			_ = n.UnmarshalParam(v)
		}
	}
	return r
}
