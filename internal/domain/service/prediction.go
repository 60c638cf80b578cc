package service

import "context"

// Predictor scores a positional feature vector.
type Predictor interface {
	Predict(ctx context.Context, features []float64) (float64, error)
}
