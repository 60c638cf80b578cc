package options

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockChainShape(t *testing.T) {
	chain := MockChain("AAPL", fixedNow)
	require.Len(t, chain, 6)

	first := chain[0]
	assert.Equal(t, 150.0, first.Strike)
	assert.Equal(t, expiryIn(30), first.Expiry)
	assert.Equal(t, "AAPL "+expiryIn(30)+" 150C", first.Symbol)
	assert.Equal(t, 80, first.LiquidityScore)
	assert.InDelta(t, 0.008, first.SpreadPct, 1e-12)

	last := chain[5]
	assert.Equal(t, 175.0, last.Strike)
	assert.Equal(t, 100, last.LiquidityScore)
	assert.Equal(t, int64(3500), last.OpenInterest)
	assert.InDelta(t, 0.003, last.SpreadPct, 1e-12)
}

func TestMockChainAgainstProfiles(t *testing.T) {
	chain := MockChain("AAPL", fixedNow)
	// spreads of the mock chain are too wide for the conservative window
	assert.Empty(t, FilterEligible(chain, "conservative", fixedNow))

	neutral := FilterEligible(chain, "neutral", fixedNow)
	require.NotEmpty(t, neutral)
	assert.Equal(t, 160.0, neutral[0].Strike)
}

func TestSyntheticChainRecordsNormalize(t *testing.T) {
	recs := SyntheticChainRecords("MSFT", 4, fixedNow)
	require.Len(t, recs, 4)

	cands, dropped := NormalizeAll(recs)
	assert.Zero(t, dropped)
	require.Len(t, cands, 4)
	assert.InDelta(t, 0.31, cands[1].ImpliedVol, 1e-12)
	assert.Equal(t, int64(1400), cands[1].OpenInterest)
}

func TestSyntheticEquityQuote(t *testing.T) {
	q := SyntheticEquityQuote("MSFT", fixedNow)
	assert.Equal(t, "MSFT", q.Symbol)
	assert.Equal(t, 100.5, q.Close)
	assert.Equal(t, int64(1_000_000), q.Volume)
}

func TestSyntheticChainRecordsLayout(t *testing.T) {
	recs := SyntheticChainRecords("MSFT", 0, fixedNow)
	require.Len(t, recs, 10)
	assert.Equal(t, 150.0, recs[0]["strike"])
	assert.Equal(t, expiryIn(30), recs[0]["expiry"])
	assert.Equal(t, expiryIn(30+7*9), recs[9]["expiry"])
	assert.Equal(t, 100, recs[9]["liquidity_score"])
}
