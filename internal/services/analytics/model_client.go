package analytics

import (
	"context"
	"encoding/json"
	"fmt"

	domsvc "OptionPilot/internal/domain/service"
)

// ModelClient calls the hosted prediction model.
type ModelClient struct {
	base     *HTTPServiceBase
	attempts int
}

// NewModelClient returns nil when base is nil, meaning no model is configured.
func NewModelClient(base *HTTPServiceBase, attempts int) *ModelClient {
	if base == nil {
		return nil
	}
	return &ModelClient{base: base, attempts: attempts}
}

type predictRequest struct {
	Features [][]float64 `json:"features"`
}

type predictResponse struct {
	Prediction json.RawMessage `json:"prediction"`
}

// Predict posts one feature row and returns the first prediction.
func (m *ModelClient) Predict(ctx context.Context, features []float64) (float64, error) {
	var pr predictResponse
	err := m.base.PostJSONWithRetry(ctx, "/predict", predictRequest{Features: [][]float64{features}}, &pr, m.attempts)
	if err != nil {
		return 0, fmt.Errorf("post predict: %w", err)
	}
	return decodePrediction(pr.Prediction)
}

// decodePrediction accepts a number or a non-empty array of numbers.
func decodePrediction(raw json.RawMessage) (float64, error) {
	var single float64
	if err := json.Unmarshal(raw, &single); err == nil {
		return single, nil
	}
	var many []float64
	if err := json.Unmarshal(raw, &many); err != nil {
		return 0, fmt.Errorf("decode prediction: %w", err)
	}
	if len(many) == 0 {
		return 0, fmt.Errorf("decode prediction: empty array")
	}
	return many[0], nil
}

var _ domsvc.Predictor = (*ModelClient)(nil)
