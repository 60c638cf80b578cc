package options

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"OptionPilot/internal/domain/models"
)

func TestScoreFormula(t *testing.T) {
	now := fixedNow
	c := models.ContractCandidate{
		LiquidityScore: 80,
		ImpliedVol:     0.3,
		Expiry:         expiryIn(31), // 30 whole days at 14:30
		Delta:          0.3,
		Gamma:          0.4,
		Theta:          0,
		Vega:           0,
	}
	// 0.4*0.8 + 0.2*1 + 0.2*1 + 0.2*(0.5/4)
	assert.InDelta(t, 0.32+0.2+0.2+0.025, Score(c, now), 1e-9)
}

func TestScoreIVPenaltyClamped(t *testing.T) {
	low := models.ContractCandidate{ImpliedVol: 0.0, Expiry: expiryIn(31)}
	high := models.ContractCandidate{ImpliedVol: 5.0, Expiry: expiryIn(31)}
	// iv_penalty floors at 0.2 and caps at 1.0
	assert.InDelta(t, 0.2*1.0+0.2*1.0, Score(low, fixedNow), 1e-9)
	assert.InDelta(t, 0.2*0.2+0.2*1.0, Score(high, fixedNow), 1e-9)
}

func TestScoreTimeFactorUnclamped(t *testing.T) {
	far := models.ContractCandidate{ImpliedVol: 0.3, Expiry: expiryIn(400)}
	dte, _ := DaysToExpiry(far.Expiry, fixedNow)
	want := 0.2*1.0 + 0.2*(1-math.Abs(float64(dte)-30)/100)
	assert.InDelta(t, want, Score(far, fixedNow), 1e-9)
	assert.Less(t, Score(far, fixedNow), 0.2)
}

func TestRankByScoreSortedAndCapped(t *testing.T) {
	chain := MockChain("QQQ", fixedNow)
	chain = append(chain, MockChain("IWM", fixedNow)...)

	ranked := RankByScore(chain, 0, fixedNow)
	require.Len(t, ranked, DefaultTopN)
	for i := 1; i < len(ranked); i++ {
		assert.GreaterOrEqual(t, Score(ranked[i-1], fixedNow), Score(ranked[i], fixedNow))
	}

	assert.Len(t, RankByScore(chain[:2], 5, fixedNow), 2)
	assert.Len(t, RankByScore(chain, 3, fixedNow), 3)
}

func TestRankByScoreStableOnTies(t *testing.T) {
	a := models.ContractCandidate{Symbol: "A", LiquidityScore: 50, Expiry: expiryIn(31)}
	b := a
	b.Symbol = "B"
	c := a
	c.Symbol = "C"

	ranked := RankByScore([]models.ContractCandidate{a, b, c}, 5, fixedNow)
	require.Len(t, ranked, 3)
	assert.Equal(t, []string{"A", "B", "C"}, []string{ranked[0].Symbol, ranked[1].Symbol, ranked[2].Symbol})
}
