package models

import "time"

// Chain sources reported in screening diagnostics.
const (
	SourceLive      = "live"
	SourceSynthetic = "synthetic"
)

// ScreeningRequest is the body of POST /screen.
type ScreeningRequest struct {
	Symbol      string         `json:"symbol" validate:"required,ticker"`
	RiskProfile RiskProfile    `json:"risk_profile" validate:"required,oneof=conservative neutral aggressive"`
	CapitalUSD  float64        `json:"capital_usd" validate:"gt=0,lte=1000000000"`
	Constraints map[string]any `json:"constraints,omitempty"`
}

// ScreeningDiagnostics describes how the ranked set was obtained.
type ScreeningDiagnostics struct {
	Universe    int         `json:"universe"`
	Filtered    int         `json:"filtered"`
	RiskProfile RiskProfile `json:"risk_profile"`
	Source      string      `json:"source"`
	Dropped     int         `json:"dropped"`
}

// ScreeningResult is the ranked, size-bounded answer to a screening request.
type ScreeningResult struct {
	Symbol      string               `json:"symbol"`
	Timestamp   time.Time            `json:"timestamp"`
	Candidates  []ContractCandidate  `json:"candidates"`
	Diagnostics ScreeningDiagnostics `json:"diagnostics"`
}
