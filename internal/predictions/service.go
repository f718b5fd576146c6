package predictions

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"diabetes-backend/internal/predictform"
	"diabetes-backend/internal/shared/metrics"
	"diabetes-backend/internal/shared/telemetry"
)

const (
	DefaultHistoryLimit = 10
	MaxHistoryLimit     = 100
)

// fallbackProbability is reported when the model cannot score a patient.
const fallbackProbability = 0.5

// Service scores patients and keeps the history.
type Service struct {
	Repo  Repo
	Model Model
	// Bounds are checked per feature; the form's field ranges by default.
	Bounds []predictform.FieldSpec

	now   func() time.Time
	newID func() string
}

// NewService constructs a Service over repo and model.
func NewService(repo Repo, model Model) *Service {
	return &Service{
		Repo:   repo,
		Model:  model,
		Bounds: predictform.DefaultFields,
		now:    func() time.Time { return time.Now().UTC() },
		newID:  uuid.NewString,
	}
}

// Predict validates f, scores it and stores the patient with the outcome. A
// model failure is logged and stored as non-diabetic with probability 0.5.
func (s *Service) Predict(ctx context.Context, f Features) (Prediction, error) {
	start := time.Now()
	if err := s.validate(f); err != nil {
		metrics.IncPredictionFailed()
		return Prediction{}, err
	}

	diabetic, probability, err := s.Model.Predict(f)
	if err != nil {
		telemetry.Warn("prediction.model_fallback", map[string]any{"error": err})
		diabetic, probability = false, fallbackProbability
	}

	now := time.Now().UTC()
	if s.now != nil {
		now = s.now()
	}
	newID := s.newID
	if newID == nil {
		newID = uuid.NewString
	}
	p := Prediction{
		ID:          newID(),
		Patient:     Patient{ID: newID(), Features: f, CreatedAt: now},
		Diabetic:    diabetic,
		Probability: probability,
		CreatedAt:   now,
	}
	if err := s.Repo.Create(ctx, p); err != nil {
		metrics.IncPredictionFailed()
		return Prediction{}, fmt.Errorf("store prediction: %w", err)
	}

	elapsed := time.Since(start)
	metrics.IncPrediction(diabetic)
	metrics.ObservePredictionMs(float64(elapsed.Microseconds()) / 1000.0)
	telemetry.Debug("prediction.scored", map[string]any{
		"prediction_id": p.ID,
		"diabetic":      diabetic,
		"probability":   probability,
		"duration":      elapsed,
	})
	return p, nil
}

// Get returns one stored prediction.
func (s *Service) Get(ctx context.Context, id string) (Prediction, error) {
	if _, err := uuid.Parse(id); err != nil {
		return Prediction{}, ErrNotFound
	}
	return s.Repo.GetByID(ctx, id)
}

// History returns the newest predictions. limit <= 0 means DefaultHistoryLimit
// and values above MaxHistoryLimit are capped.
func (s *Service) History(ctx context.Context, limit int) ([]Prediction, error) {
	switch {
	case limit <= 0:
		limit = DefaultHistoryLimit
	case limit > MaxHistoryLimit:
		limit = MaxHistoryLimit
	}
	return s.Repo.ListRecent(ctx, limit)
}

func (s *Service) validate(f Features) error {
	values := map[string]float64{
		"pregnancies":       float64(f.Pregnancies),
		"glucose":           f.Glucose,
		"blood_pressure":    f.BloodPressure,
		"skin_thickness":    f.SkinThickness,
		"insulin":           f.Insulin,
		"bmi":               f.BMI,
		"diabetes_pedigree": f.DiabetesPedigree,
		"age":               float64(f.Age),
	}
	var errs []error
	for _, spec := range s.Bounds {
		v, ok := values[spec.Name]
		if !ok {
			continue
		}
		switch {
		case math.IsNaN(v) || math.IsInf(v, 0):
			errs = append(errs, fmt.Errorf("%s must be a valid number", spec.Name))
		case (!math.IsNaN(spec.Min) && v < spec.Min) || (!math.IsNaN(spec.Max) && v > spec.Max):
			errs = append(errs, fmt.Errorf("%s must be between %s and %s", spec.Name, predictform.FormatNumber(spec.Min), predictform.FormatNumber(spec.Max)))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidInput, errors.Join(errs...))
	}
	return nil
}
