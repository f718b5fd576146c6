package predictions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"

	"diabetes-backend/internal/shared/storage/object"
)

// FeatureCount is the length of Features.Vector.
const FeatureCount = 8

// Model scores one patient.
type Model interface {
	Predict(f Features) (diabetic bool, probability float64, err error)
}

// ModelFunc adapts a function to Model.
type ModelFunc func(f Features) (bool, float64, error)

func (fn ModelFunc) Predict(f Features) (bool, float64, error) { return fn(f) }

// Params are the coefficients of a standardised logistic model. Each input is
// scaled as (x-mean)/scale before the weighted sum.
type Params struct {
	Means     []float64 `json:"means"`
	Scales    []float64 `json:"scales"`
	Weights   []float64 `json:"weights"`
	Bias      float64   `json:"bias"`
	Threshold float64   `json:"threshold"`
}

// DefaultParams approximate the population the form is designed for.
func DefaultParams() Params {
	return Params{
		Means:     []float64{3.8, 120, 69, 20, 80, 32, 0.47, 33},
		Scales:    []float64{3.4, 32, 19, 16, 115, 7.9, 0.33, 11.8},
		Weights:   []float64{0.15, 1.1, 0.25, 0.05, 0.1, 0.7, 0.35, 0.45},
		Bias:      -0.9,
		Threshold: 0.5,
	}
}

// Validate checks vector lengths and that every coefficient is finite.
func (p Params) Validate() error {
	for name, v := range map[string][]float64{"means": p.Means, "scales": p.Scales, "weights": p.Weights} {
		if len(v) != FeatureCount {
			return fmt.Errorf("%w: %s has %d values, want %d", ErrModel, name, len(v), FeatureCount)
		}
		for i, x := range v {
			if math.IsNaN(x) || math.IsInf(x, 0) {
				return fmt.Errorf("%w: %s[%d] is not finite", ErrModel, name, i)
			}
		}
	}
	for i, s := range p.Scales {
		if s == 0 {
			return fmt.Errorf("%w: scales[%d] is zero", ErrModel, i)
		}
	}
	if math.IsNaN(p.Bias) || math.IsInf(p.Bias, 0) {
		return fmt.Errorf("%w: bias is not finite", ErrModel)
	}
	if !(p.Threshold > 0 && p.Threshold < 1) {
		return fmt.Errorf("%w: threshold %v outside (0,1)", ErrModel, p.Threshold)
	}
	return nil
}

// RiskModel is a logistic model over standardised features.
type RiskModel struct {
	params Params
}

// NewRiskModel validates p and builds a model.
func NewRiskModel(p Params) (*RiskModel, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &RiskModel{params: p}, nil
}

// Params returns a copy of the model coefficients.
func (m *RiskModel) Params() Params {
	return Params{
		Means:     append([]float64(nil), m.params.Means...),
		Scales:    append([]float64(nil), m.params.Scales...),
		Weights:   append([]float64(nil), m.params.Weights...),
		Bias:      m.params.Bias,
		Threshold: m.params.Threshold,
	}
}

// Predict returns the diabetic probability and whether it reaches the threshold.
func (m *RiskModel) Predict(f Features) (bool, float64, error) {
	z := m.params.Bias
	for i, x := range f.Vector() {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false, 0, fmt.Errorf("%w: feature %d is not finite", ErrInvalidInput, i)
		}
		z += m.params.Weights[i] * (x - m.params.Means[i]) / m.params.Scales[i]
	}
	p := 1 / (1 + math.Exp(-z))
	return p >= m.params.Threshold, p, nil
}

// LoadParams reads JSON coefficients from store at key.
func LoadParams(ctx context.Context, store object.Store, key string) (Params, error) {
	rc, err := store.Open(ctx, key)
	if err != nil {
		return Params{}, err
	}
	defer rc.Close()

	var p Params
	dec := json.NewDecoder(io.LimitReader(rc, 1<<16))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&p); err != nil {
		return Params{}, fmt.Errorf("%w: decode %s: %v", ErrModel, key, err)
	}
	if err := p.Validate(); err != nil {
		return Params{}, err
	}
	return p, nil
}

// LoadModel builds a RiskModel from store, or from DefaultParams when key is
// empty or the object does not exist. Invalid stored parameters are an error.
func LoadModel(ctx context.Context, store object.Store, key string) (*RiskModel, bool, error) {
	if store == nil || key == "" {
		m, err := NewRiskModel(DefaultParams())
		return m, false, err
	}
	p, err := LoadParams(ctx, store, key)
	if errors.Is(err, object.ErrNotFound) {
		m, err := NewRiskModel(DefaultParams())
		return m, false, err
	}
	if err != nil {
		return nil, false, err
	}
	m, err := NewRiskModel(p)
	return m, err == nil, err
}
