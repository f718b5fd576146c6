package predictions

import (
	"context"
	"errors"

	"diabetes-backend/internal/predictform"
)

// LocalPredictor serves form submissions in-process, answering the way
// POST /api/predict/ does.
type LocalPredictor struct {
	Svc *Service
}

// Predict ignores the CSRF token; in-process callers are already past the middleware.
func (p LocalPredictor) Predict(ctx context.Context, _ string, rec predictform.Record) (predictform.Result, error) {
	f, err := RequestFromValues(func(name string) (string, bool) {
		v, ok := rec[name]
		return v, ok
	}).Features()
	if err == nil {
		var pred Prediction
		pred, err = p.Svc.Predict(ctx, f)
		if err == nil {
			return predictform.Result{
				Success:     true,
				Prediction:  pred.Diabetic,
				Probability: pred.Probability,
				Message:     pred.Label(),
			}, nil
		}
	}
	if errors.Is(err, ErrInvalidInput) {
		return predictform.Result{Success: false, Error: PublicMessage(err)}, nil
	}
	return predictform.Result{}, err
}

var _ predictform.Predictor = LocalPredictor{}
