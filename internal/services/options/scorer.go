package options

import (
	"math"
	"sort"
	"time"

	"OptionPilot/internal/domain/models"
)

// DefaultTopN caps the screening result size.
const DefaultTopN = 5

const (
	weightLiquidity = 0.4
	weightIV        = 0.2
	weightTime      = 0.2
	weightGreeks    = 0.2
)

// Score is the composite desirability of a candidate; higher is better.
// time_factor is intentionally unclamped and goes negative for far expiries.
func Score(c models.ContractCandidate, now time.Time) float64 {
	liquidity := float64(c.LiquidityScore) / 100
	ivPenalty := clamp(1-(c.ImpliedVol-0.3), 0.2, 1.0)

	dte, _ := DaysToExpiry(c.Expiry, now)
	timeFactor := 1 - math.Abs(float64(dte)-30)/100

	greeks := math.Sqrt(c.Delta*c.Delta+c.Gamma*c.Gamma+c.Theta*c.Theta+c.Vega*c.Vega) / 4

	return weightLiquidity*liquidity + weightIV*ivPenalty + weightTime*timeFactor + weightGreeks*greeks
}

// RankByScore sorts by composite score descending, keeping input order on ties,
// and returns at most topN candidates. topN <= 0 means DefaultTopN.
func RankByScore(cands []models.ContractCandidate, topN int, now time.Time) []models.ContractCandidate {
	if topN <= 0 {
		topN = DefaultTopN
	}
	type scored struct {
		c     models.ContractCandidate
		score float64
	}
	items := make([]scored, len(cands))
	for i, c := range cands {
		items[i] = scored{c: c, score: Score(c, now)}
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].score > items[j].score })

	if len(items) > topN {
		items = items[:topN]
	}
	out := make([]models.ContractCandidate, len(items))
	for i, it := range items {
		out[i] = it.c
	}
	return out
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
