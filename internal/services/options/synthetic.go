package options

import (
	"fmt"
	"math"
	"time"

	"OptionPilot/internal/domain/models"
	"OptionPilot/internal/domain/repository"
	"OptionPilot/pkg/util"
)

// MockChain builds the deterministic six-contract fallback chain used when
// no live data is available.
func MockChain(symbol string, now time.Time) []models.ContractCandidate {
	base := now.UTC()
	out := make([]models.ContractCandidate, 0, 6)
	for i := 0; i < 6; i++ {
		fi := float64(i)
		expiry := base.AddDate(0, 0, 30+7*i).Format("2006-01-02")
		strike := 150 + 5*fi
		out = append(out, models.ContractCandidate{
			Symbol:         fmt.Sprintf("%s %s %.0fC", symbol, expiry, strike),
			Delta:          0.2 + 0.07*fi,
			Gamma:          0.05 + 0.01*fi,
			Theta:          -0.03 - 0.005*fi,
			Vega:           0.10 + 0.01*fi,
			ImpliedVol:     0.28 + 0.02*fi,
			OpenInterest:   int64(1000 + 500*i),
			Volume:         int64(500 + 200*i),
			Bid:            2.1 + 0.2*fi,
			Ask:            2.3 + 0.2*fi,
			Mid:            2.2 + 0.2*fi,
			SpreadPct:      math.Max(0.001, 0.008-0.001*fi),
			LiquidityScore: int(math.Min(100, 80+4*fi)),
			Expiry:         expiry,
			Strike:         strike,
		})
	}
	return out
}

// MockChainProvider serves MockChain as the screening fallback.
type MockChainProvider struct{}

func (MockChainProvider) FallbackChain(symbol string, now time.Time) []models.ContractCandidate {
	return MockChain(symbol, now)
}

var _ repository.FallbackChainProvider = MockChainProvider{}

// SyntheticChainRecords is the raw-record chain the market-data cache serves
// when nothing is cached for a symbol.
func SyntheticChainRecords(symbol string, limit int, now time.Time) []map[string]any {
	if limit <= 0 {
		limit = 10
	}
	base := util.MidnightUTC(now)
	out := make([]map[string]any, 0, limit)
	for i := 0; i < limit; i++ {
		fi := float64(i)
		expiry := base.AddDate(0, 0, 30+7*i).Format("2006-01-02")
		strike := 150 + 5*fi
		out = append(out, map[string]any{
			"symbol":          fmt.Sprintf("%s %s %.0fC", symbol, expiry, strike),
			"strike":          strike,
			"expiry":          expiry,
			"bid":             2.0 + 0.25*fi,
			"ask":             2.2 + 0.25*fi,
			"mid":             2.1 + 0.25*fi,
			"delta":           0.25 + 0.05*fi,
			"gamma":           0.04 + 0.005*fi,
			"theta":           -0.03 - 0.004*fi,
			"vega":            0.1 + 0.01*fi,
			"iv":              0.3 + 0.01*fi,
			"open_interest":   1000 + 400*i,
			"volume":          300 + 100*i,
			"spread_pct":      0.01,
			"liquidity_score": int(math.Min(100, 80+4*fi)),
		})
	}
	return out
}

// SyntheticEquityQuote is the fallback underlying bar for a symbol.
func SyntheticEquityQuote(symbol string, now time.Time) models.EquityAggregate {
	return models.EquityAggregate{
		Symbol:    symbol,
		Close:     100.5,
		High:      101.2,
		Low:       99.8,
		Volume:    1_000_000,
		Vwap:      100.7,
		Timestamp: now.UTC(),
	}
}
