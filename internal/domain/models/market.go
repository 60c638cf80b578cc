package models

import "time"

// OptionQuote is a top-of-book option quote as received from the feed.
type OptionQuote struct {
	Symbol    string    `json:"symbol"`
	Bid       float64   `json:"bid"`
	Ask       float64   `json:"ask"`
	BidSize   int64     `json:"bid_size"`
	AskSize   int64     `json:"ask_size"`
	Timestamp time.Time `json:"timestamp"`
}

// NormalizedOptionQuote is an OptionQuote with derived mid and spread.
// Symbol is the display form "AAPL 2026-04-17 150C"; contract terms are
// filled when the feed symbol could be parsed.
type NormalizedOptionQuote struct {
	Symbol     string    `json:"symbol"`
	Underlying string    `json:"underlying,omitempty"`
	Expiry     string    `json:"expiry,omitempty"`
	Strike     float64   `json:"strike,omitempty"`
	Right      string    `json:"right,omitempty"`
	Mid        float64   `json:"mid"`
	SpreadPct  float64   `json:"spread_pct"`
	Bid        float64   `json:"bid"`
	Ask        float64   `json:"ask"`
	BidSize    int64     `json:"bid_size"`
	AskSize    int64     `json:"ask_size"`
	Timestamp  time.Time `json:"timestamp"`
}

// EquityAggregate is a bar of the underlying.
type EquityAggregate struct {
	Symbol    string    `json:"symbol"`
	Open      float64   `json:"open,omitempty"`
	Close     float64   `json:"close"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Volume    int64     `json:"volume"`
	Vwap      float64   `json:"vwap"`
	Timestamp time.Time `json:"timestamp"`
}

// Market event kinds carried on the ingest topic.
const (
	EventOptionQuote     = "option_quote"
	EventEquityAggregate = "equity_aggregate"
)

// MarketEvent is the envelope published by the ingest collector.
type MarketEvent struct {
	Kind      string                 `json:"kind"`
	Quote     *NormalizedOptionQuote `json:"quote,omitempty"`
	Aggregate *EquityAggregate       `json:"aggregate,omitempty"`
}

// Key returns the partitioning key of the event.
func (e MarketEvent) Key() string {
	switch {
	case e.Quote != nil && e.Quote.Underlying != "":
		return e.Quote.Underlying
	case e.Quote != nil:
		return e.Quote.Symbol
	case e.Aggregate != nil:
		return e.Aggregate.Symbol
	default:
		return ""
	}
}
