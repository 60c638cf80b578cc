package models

import "time"

// CongressionalTrade is a disclosed trade by a member of congress.
type CongressionalTrade struct {
	Name      string `json:"name"`
	Party     string `json:"party,omitempty"`
	Committee string `json:"committee,omitempty"`
	Action    string `json:"action"`
	Amount    string `json:"amount"`
	Date      string `json:"date,omitempty"`
}

// SignalSnapshot bundles the technical, sentiment, congressional and macro
// signals for one symbol. The recommendation engine accepts the same shape.
type SignalSnapshot struct {
	Symbol                     string               `json:"symbol,omitempty"`
	RSI                        float64              `json:"rsi"`
	MACD                       string               `json:"macd"`
	ADX                        float64              `json:"adx"`
	TrendRegime                string               `json:"trend_regime"`
	IV                         float64              `json:"iv"`
	IVRank                     float64              `json:"iv_rank"`
	EarningsProximity          string               `json:"earnings_proximity,omitempty"`
	SentimentScore             float64              `json:"sentiment_score"`
	SentimentMomentum          string               `json:"sentiment_momentum"`
	SentimentUncertainty       float64              `json:"sentiment_uncertainty"`
	CongressionalRecentRelated string               `json:"congressional_recent_related"`
	CongressionalEvents        []CongressionalTrade `json:"congressional_events"`
	MacroEvents                []string             `json:"macro_events"`
	MacroRiskFlag              bool                 `json:"macro_risk_flag"`
	GeneratedAt                time.Time            `json:"generated_at"`
}
