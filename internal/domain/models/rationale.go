package models

// ContextDocument is a retrieved snippet backing a rationale.
type ContextDocument struct {
	ID      string  `json:"id"`
	Content string  `json:"content"`
	Score   float64 `json:"score"`
}

// RationaleRequest is the body of POST /rationale.
type RationaleRequest struct {
	UserID         string                 `json:"user_id" validate:"required"`
	Symbol         string                 `json:"symbol" validate:"required,ticker"`
	Recommendation RecommendationResponse `json:"recommendation"`
	Signals        *SignalSnapshot        `json:"signals,omitempty"`
}
