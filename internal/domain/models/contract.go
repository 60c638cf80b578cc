package models

// RiskProfile is the caller-declared risk appetite bucket.
type RiskProfile string

const (
	RiskConservative RiskProfile = "conservative"
	RiskNeutral      RiskProfile = "neutral"
	RiskAggressive   RiskProfile = "aggressive"
)

// Valid reports whether r is one of the known profiles.
func (r RiskProfile) Valid() bool {
	switch r {
	case RiskConservative, RiskNeutral, RiskAggressive:
		return true
	default:
		return false
	}
}

// ContractCandidate is the canonical shape of one option contract.
// Built per request from a live payload or the synthetic generator; never persisted.
type ContractCandidate struct {
	Symbol         string  `json:"symbol"`
	Delta          float64 `json:"delta"`
	Gamma          float64 `json:"gamma"`
	Theta          float64 `json:"theta"`
	Vega           float64 `json:"vega"`
	ImpliedVol     float64 `json:"implied_vol"`
	OpenInterest   int64   `json:"open_interest"`
	Volume         int64   `json:"volume"`
	Bid            float64 `json:"bid"`
	Ask            float64 `json:"ask"`
	Mid            float64 `json:"mid"`
	SpreadPct      float64 `json:"spread_pct"`
	LiquidityScore int     `json:"liquidity_score"` // 0..100
	Expiry         string  `json:"expiry"`
	Strike         float64 `json:"strike"`
}

// ChainPayload is what the market-data service returns for a symbol.
// Either list may carry the records; Contracts takes precedence.
type ChainPayload struct {
	Symbol     string           `json:"symbol"`
	Contracts  []map[string]any `json:"contracts,omitempty"`
	Candidates []map[string]any `json:"candidates,omitempty"`
}

// Records returns the raw contract records of the payload.
func (p *ChainPayload) Records() []map[string]any {
	if p == nil {
		return nil
	}
	if len(p.Contracts) > 0 {
		return p.Contracts
	}
	return p.Candidates
}
