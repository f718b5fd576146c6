package predictions

import "context"

// Repo persists predictions together with their patient data.
type Repo interface {
	Create(ctx context.Context, p Prediction) error
	GetByID(ctx context.Context, id string) (Prediction, error)
	ListRecent(ctx context.Context, limit int) ([]Prediction, error)
}
