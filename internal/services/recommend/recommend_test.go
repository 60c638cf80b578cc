package recommend

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"OptionPilot/internal/domain/models"
)

func size(t *testing.T, capital, mid float64) models.Position {
	t.Helper()
	p, err := SizePosition(capital, mid)
	require.NoError(t, err)
	return p
}

func TestSizePositionReference(t *testing.T) {
	p := size(t, 5000, 2.45)
	assert.Equal(t, 40, p.Contracts)
	assert.Equal(t, 9800.0, p.Notional)
	assert.Equal(t, 9800.0, p.EstMaxLoss)
	assert.Equal(t, 21, p.HoldingWindowDays)
}

func TestSizePositionFloors(t *testing.T) {
	// zero capital still sizes a single contract against the $1 floor
	p := size(t, 0, 3.1)
	assert.Equal(t, 1, p.Contracts)
	assert.Equal(t, 310.0, p.Notional)

	// zero mid is guarded by the 0.01 floor
	p = size(t, 0, 0)
	assert.Equal(t, 100, p.Contracts)
	assert.Equal(t, 0.0, p.Notional)
}

func TestSizePositionRoundsNotional(t *testing.T) {
	p := size(t, 10000, 1.333)
	assert.Equal(t, 150, p.Contracts)
	assert.Equal(t, 19995.0, p.Notional)

	p = size(t, 100, 0.123456)
	assert.Equal(t, 16, p.Contracts)
	assert.Equal(t, 197.53, p.Notional)
}

func TestSizePositionRejectsNonFinite(t *testing.T) {
	cases := map[string]struct{ capital, mid float64 }{
		"NaN mid":          {5000, math.NaN()},
		"+Inf mid":         {5000, math.Inf(1)},
		"overflowing mid":  {5000, 1e308},
		"NaN capital":      {math.NaN(), 2},
		"contracts beyond": {1e24, 1},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := SizePosition(c.capital, c.mid)
			assert.ErrorIs(t, err, ErrUnsizablePosition)
		})
	}
}

func TestClampConfidence(t *testing.T) {
	cases := map[string]struct {
		in, want float64
	}{
		"negative":   {-0.3, 0},
		"zero":       {0, 0},
		"inside":     {0.62, 0.62},
		"at bound":   {0.99, 0.99},
		"above one":  {1.7, 0.99},
		"NaN":        {math.NaN(), 0},
		"+Inf":       {math.Inf(1), 0.99},
		"-Inf":       {math.Inf(-1), 0},
		"just above": {math.Nextafter(0.99, 1), 0.99},
		"subnormal":  {math.SmallestNonzeroFloat64, math.SmallestNonzeroFloat64},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			got := ClampConfidence(c.in)
			assert.Equal(t, c.want, got)
			assert.GreaterOrEqual(t, got, 0.0)
			assert.LessOrEqual(t, got, MaxConfidence)
		})
	}
}

func TestSelectRuleOrderMatters(t *testing.T) {
	assert.Equal(t, "LONG_CALL", SelectRule(DefaultRules, 0.6).Name)
	assert.Equal(t, "LONG_CALL", SelectRule(DefaultRules, 0.55).Name)
	assert.Equal(t, "BULL_CALL_SPREAD", SelectRule(DefaultRules, 0.52).Name)

	// nothing met falls back to the first rule
	r := SelectRule(DefaultRules, 0.1)
	assert.Equal(t, "LONG_CALL", r.Name)
	assert.Equal(t, "CALL", r.Direction)

	reversed := []models.StrategyRule{DefaultRules[1], DefaultRules[0]}
	assert.Equal(t, "LONG_PUT", SelectRule(reversed, 0.6).Name)
}

func TestSelectByLiquidity(t *testing.T) {
	_, err := SelectByLiquidity(nil)
	require.ErrorIs(t, err, ErrEmptyUniverse)

	cands := []models.ContractCandidate{
		{Symbol: "A", LiquidityScore: 70},
		{Symbol: "B", LiquidityScore: 92},
		{Symbol: "C", LiquidityScore: 92},
		{Symbol: "D", LiquidityScore: 10},
	}
	best, err := SelectByLiquidity(cands)
	require.NoError(t, err)
	assert.Equal(t, "B", best.Symbol)
}

func TestRiskBias(t *testing.T) {
	assert.Equal(t, 0.4, RiskBias("conservative"))
	assert.Equal(t, 0.5, RiskBias("neutral"))
	assert.Equal(t, 0.6, RiskBias("aggressive"))
	assert.Equal(t, 0.5, RiskBias("degen"))
	assert.Equal(t, 0.5, RiskBias(""))
}

func TestBuildFeaturesOrderAndDefaults(t *testing.T) {
	c := models.ContractCandidate{LiquidityScore: 80}
	sig := models.SignalSnapshot{IVRank: 0.32, SentimentScore: 0.24}

	f := BuildFeatures(c, sig, "aggressive", models.LiquidityFeatures{})
	assert.InDeltaSlice(t, []float64{0.8, 0.32, 0.24, 0.6, 0.8, 0.08}, f.Values(), 1e-12)
	assert.InDelta(t, (0.8+0.32+0.24+0.6+0.8+0.08)/6, f.Mean(), 1e-12)

	liq, oi := 55.0, 2500.0
	f = BuildFeatures(c, sig, "conservative", models.LiquidityFeatures{LiquidityScore: &liq, AvgOpenInterest: &oi})
	assert.InDeltaSlice(t, []float64{0.8, 0.32, 0.24, 0.4, 0.55, 2.5}, f.Values(), 1e-12)
}

func TestFeatureKeyFor(t *testing.T) {
	k := FeatureKeyFor(models.ContractCandidate{Symbol: "aapl 2026-04-17 150C", Expiry: "2026-04-17T00:00:00", Strike: 150})
	assert.Equal(t, models.FeatureKey{Symbol: "AAPL", Expiry: "2026-04-17", Strike: 150}, k)

	k = FeatureKeyFor(models.ContractCandidate{Symbol: "", Expiry: "soon", Strike: 5})
	assert.Equal(t, "", k.Symbol)
	assert.Equal(t, "soon", k.Expiry)
}
