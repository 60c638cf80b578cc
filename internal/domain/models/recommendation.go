package models

// Disclosure is attached to every recommendation and rationale.
const Disclosure = "Educational information, not investment advice."

// ChainSnapshot is the screened chain handed to the recommendation engine.
type ChainSnapshot struct {
	Candidates  []map[string]any `json:"candidates"`
	Diagnostics map[string]any   `json:"diagnostics,omitempty"`
}

// RequestContext carries the caller's sizing inputs.
type RequestContext struct {
	CapitalUSD  float64 `json:"capital_usd" validate:"gte=0,lte=1000000000"`
	RiskProfile string  `json:"risk_profile"`
}

// RecommendationRequest is the body of POST /score.
type RecommendationRequest struct {
	UserID        string         `json:"user_id" validate:"required"`
	MarketDataURL string         `json:"market_data_url"`
	ChainSnapshot ChainSnapshot  `json:"chain_snapshot"`
	Signals       SignalSnapshot `json:"signals"`
	Request       RequestContext `json:"request"`
}

// StrategyRule maps a confidence threshold to a strategy.
type StrategyRule struct {
	Name          string  `json:"name"`
	Direction     string  `json:"direction"`
	MinConfidence float64 `json:"min_confidence"`
}

// Decision is the chosen direction and strategy.
type Decision struct {
	Direction string `json:"direction"`
	Strategy  string `json:"strategy"`
}

// Position is the capital-bounded sizing block.
type Position struct {
	Contracts         int     `json:"contracts"`
	Notional          float64 `json:"notional"`
	EstMaxLoss        float64 `json:"est_max_loss"`
	HoldingWindowDays int     `json:"holdingWindowDays"`
}

// Rationale is the descriptive payload explaining a decision.
type Rationale struct {
	Summary    string                    `json:"summary"`
	Layers     map[string]map[string]any `json:"layers"`
	Compliance map[string]any            `json:"compliance,omitempty"`
}

// RecommendationResponse is the answer of POST /score.
type RecommendationResponse struct {
	ID         string              `json:"id"`
	UserID     string              `json:"user_id"`
	Decision   Decision            `json:"decision"`
	Contracts  []ContractCandidate `json:"contracts"`
	Position   Position            `json:"position"`
	Confidence float64             `json:"confidence"`
	Rationale  Rationale           `json:"rationale"`
	Disclosure string              `json:"disclosure"`
}

// FeatureKey identifies a contract in the feature store.
type FeatureKey struct {
	Symbol string  `json:"symbol"`
	Expiry string  `json:"expiry"`
	Strike float64 `json:"strike"`
}

// LiquidityFeatures are the online liquidity features of a contract.
// A nil field means the store had no value.
type LiquidityFeatures struct {
	LiquidityScore  *float64 `json:"liquidity_score,omitempty"`
	AvgOpenInterest *float64 `json:"avg_open_interest,omitempty"`
	AvgVolume       *float64 `json:"avg_volume,omitempty"`
}
