package predictions

import "time"

type predictResponse struct {
	Success     bool    `json:"success"`
	ID          string  `json:"id,omitempty"`
	Prediction  bool    `json:"prediction"`
	Probability float64 `json:"probability"`
	Message     string  `json:"message"`
}

type failureResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

type predictionResponse struct {
	ID          string    `json:"id"`
	Prediction  bool      `json:"prediction"`
	Probability float64   `json:"probability"`
	Message     string    `json:"message"`
	Patient     Features  `json:"patient"`
	CreatedAt   time.Time `json:"created_at"`
}

type historyResponse struct {
	Predictions []predictionResponse `json:"predictions"`
}

func toPredictResponse(p Prediction) predictResponse {
	return predictResponse{
		Success:     true,
		ID:          p.ID,
		Prediction:  p.Diabetic,
		Probability: p.Probability,
		Message:     p.Label(),
	}
}

func toPredictionResponse(p Prediction) predictionResponse {
	return predictionResponse{
		ID:          p.ID,
		Prediction:  p.Diabetic,
		Probability: p.Probability,
		Message:     p.Label(),
		Patient:     p.Patient.Features,
		CreatedAt:   p.CreatedAt,
	}
}

func toHistoryResponse(items []Prediction) historyResponse {
	out := historyResponse{Predictions: make([]predictionResponse, 0, len(items))}
	for _, p := range items {
		out.Predictions = append(out.Predictions, toPredictionResponse(p))
	}
	return out
}
