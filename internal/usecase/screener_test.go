package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"OptionPilot/internal/domain/models"
	domrepo "OptionPilot/internal/domain/repository"
	"OptionPilot/internal/services/options"
	"OptionPilot/pkg/metrics"
)

func liveChain() *models.ChainPayload {
	return &models.ChainPayload{
		Symbol: "AAPL",
		Contracts: []map[string]any{
			liveRecord(150, 30, 0.40, 90),
			liveRecord(155, 30, 0.40, 70),
			liveRecord(160, 30, 0.40, 95),
			liveRecord(165, 30, 0.90, 99),
			{"symbol": "broken", "delta": "abc"},
		},
	}
}

func newTestScreener(src domrepo.ChainSource, opts ...ScreenerOption) *Screener {
	opts = append([]ScreenerOption{WithScreenerClock(fixedClock)}, opts...)
	return NewScreener(src, options.MockChainProvider{}, metrics.Nop{}, opts...)
}

func TestScreenLiveChain(t *testing.T) {
	src := &stubChainSource{payload: liveChain()}
	arch := &stubArchiver{}
	s := newTestScreener(src, WithChainArchiver(arch))

	res, err := s.Screen(context.Background(), models.ScreeningRequest{Symbol: "aapl", RiskProfile: models.RiskNeutral, CapitalUSD: 5000})
	require.NoError(t, err)

	assert.Equal(t, "AAPL", res.Symbol)
	assert.Equal(t, testNow, res.Timestamp)
	assert.Equal(t, models.ScreeningDiagnostics{
		Universe:    4,
		Filtered:    3,
		RiskProfile: models.RiskNeutral,
		Source:      models.SourceLive,
		Dropped:     1,
	}, res.Diagnostics)

	require.Len(t, res.Candidates, 3)
	assert.Equal(t, []float64{160, 150, 155}, []float64{res.Candidates[0].Strike, res.Candidates[1].Strike, res.Candidates[2].Strike})

	assert.Equal(t, "AAPL", arch.symbol)
	assert.Equal(t, 4, arch.n)
}

func TestScreenArchiveFailureIsIgnored(t *testing.T) {
	s := newTestScreener(&stubChainSource{payload: liveChain()}, WithChainArchiver(&stubArchiver{err: errors.New("ch down")}))

	res, err := s.Screen(context.Background(), models.ScreeningRequest{Symbol: "AAPL", RiskProfile: models.RiskNeutral, CapitalUSD: 1})
	require.NoError(t, err)
	assert.Len(t, res.Candidates, 3)
}

func TestScreenFallsBackToSynthetic(t *testing.T) {
	malformed := &models.ChainPayload{Candidates: []map[string]any{{"oi": "many"}}}
	cases := map[string]domrepo.ChainSource{
		"fetch failed":  &stubChainSource{err: domrepo.ErrFetchFailed},
		"disabled":      &stubChainSource{err: domrepo.ErrMarketDataDisabled},
		"no payload":    &stubChainSource{},
		"all malformed": &stubChainSource{payload: malformed},
		"no source":     nil,
	}
	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			res, err := newTestScreener(src).Screen(context.Background(), models.ScreeningRequest{
				Symbol: "AAPL", RiskProfile: models.RiskNeutral, CapitalUSD: 1000,
			})
			require.NoError(t, err)
			assert.Equal(t, models.SourceSynthetic, res.Diagnostics.Source)
			assert.Equal(t, 6, res.Diagnostics.Universe)
			require.NotEmpty(t, res.Candidates)
			for _, c := range res.Candidates {
				assert.True(t, options.Passes(c, models.RiskNeutral, testNow))
			}
		})
	}
}

func TestScreenFallbackDoesNotArchive(t *testing.T) {
	arch := &stubArchiver{}
	s := newTestScreener(&stubChainSource{err: domrepo.ErrFetchFailed}, WithChainArchiver(arch))

	_, err := s.Screen(context.Background(), models.ScreeningRequest{Symbol: "AAPL", RiskProfile: models.RiskAggressive, CapitalUSD: 1})
	require.NoError(t, err)
	assert.Empty(t, arch.symbol)
}

func TestScreenTopN(t *testing.T) {
	s := newTestScreener(&stubChainSource{payload: liveChain()}, WithTopN(2))

	res, err := s.Screen(context.Background(), models.ScreeningRequest{Symbol: "AAPL", RiskProfile: models.RiskNeutral, CapitalUSD: 1})
	require.NoError(t, err)
	assert.Len(t, res.Candidates, 2)
	assert.Equal(t, 3, res.Diagnostics.Filtered)
}

func TestScreenRejectsUnknownProfile(t *testing.T) {
	src := &stubChainSource{payload: liveChain()}
	_, err := newTestScreener(src).Screen(context.Background(), models.ScreeningRequest{Symbol: "AAPL", RiskProfile: "yolo"})
	assert.ErrorIs(t, err, ErrInvalidRiskProfile)
	assert.Zero(t, src.calls)
}
