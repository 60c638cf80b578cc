package usecase

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"OptionPilot/internal/domain/models"
	domsvc "OptionPilot/internal/domain/service"
	"OptionPilot/pkg/metrics"
)

type stubPlatform struct {
	screenErr error
	score     *models.RecommendationResponse
	scoreReq  models.RecommendationRequest
	ratReq    *models.RationaleRequest

	// gate, when set, holds Screen and Snapshot until both have been entered
	gate       *sync.WaitGroup
	overlapped atomic.Int32
}

func (s *stubPlatform) enter() {
	if s.gate == nil {
		return
	}
	s.gate.Done()
	both := make(chan struct{})
	go func() {
		s.gate.Wait()
		close(both)
	}()
	select {
	case <-both:
		s.overlapped.Add(1)
	case <-time.After(time.Second):
	}
}

func (s *stubPlatform) Screen(_ context.Context, req models.ScreeningRequest) (*models.ChainSnapshot, error) {
	s.enter()
	if s.screenErr != nil {
		return nil, s.screenErr
	}
	return &models.ChainSnapshot{
		Candidates:  []map[string]any{liveRecord(150, 30, 0.4, 80)},
		Diagnostics: map[string]any{"universe": 6, "risk_profile": string(req.RiskProfile)},
	}, nil
}

func (s *stubPlatform) Snapshot(_ context.Context, symbol string) (*models.SignalSnapshot, error) {
	s.enter()
	return &models.SignalSnapshot{Symbol: symbol, IVRank: 0.32}, nil
}

func (s *stubPlatform) Score(_ context.Context, req models.RecommendationRequest) (*models.RecommendationResponse, error) {
	s.scoreReq = req
	if s.score != nil {
		return s.score, nil
	}
	return &models.RecommendationResponse{
		ID:         "rec-1",
		UserID:     req.UserID,
		Decision:   models.Decision{Direction: "CALL", Strategy: "LONG_CALL"},
		Contracts:  []models.ContractCandidate{{Symbol: "AAPL 2026-04-17 150C", Mid: 2.45}},
		Position:   models.Position{Contracts: 40, Notional: 9800, EstMaxLoss: 9800, HoldingWindowDays: 21},
		Confidence: 0.46,
		Rationale:  models.Rationale{Summary: recommendationSummary},
	}, nil
}

func (s *stubPlatform) Rationale(_ context.Context, req models.RationaleRequest) (*models.Rationale, error) {
	s.ratReq = &req
	return &models.Rationale{Summary: "AAPL shows constructive momentum", Layers: map[string]map[string]any{"macro": {"risk_flag": true}}}, nil
}

func gatewayRequest() models.ScreeningRequest {
	return models.ScreeningRequest{Symbol: "AAPL", RiskProfile: models.RiskNeutral, CapitalUSD: 5000}
}

func TestGatewayRoutesAndMergesRationale(t *testing.T) {
	p := &stubPlatform{gate: &sync.WaitGroup{}}
	p.gate.Add(2)
	g := NewGateway(p, metrics.Nop{}, WithMarketDataURL("http://md:8000"))

	res, err := g.Recommend(context.Background(), "u-7", gatewayRequest())
	require.NoError(t, err)

	assert.Equal(t, int32(2), p.overlapped.Load(), "screen and snapshot run concurrently")
	assert.Equal(t, "u-7", p.scoreReq.UserID)
	assert.Equal(t, "http://md:8000", p.scoreReq.MarketDataURL)
	assert.Equal(t, models.RequestContext{CapitalUSD: 5000, RiskProfile: "neutral"}, p.scoreReq.Request)
	assert.Equal(t, "AAPL", p.scoreReq.Signals.Symbol)
	require.Len(t, p.scoreReq.ChainSnapshot.Candidates, 1)

	require.NotNil(t, p.ratReq)
	assert.Equal(t, "AAPL", p.ratReq.Symbol)
	assert.Equal(t, "rec-1", p.ratReq.Recommendation.ID)
	assert.Equal(t, "AAPL shows constructive momentum", res.Rationale.Summary)
	assert.Equal(t, true, res.Rationale.Layers["macro"]["risk_flag"])
}

func TestGatewayWithoutRAG(t *testing.T) {
	p := &stubPlatform{}
	res, err := NewGateway(p, metrics.Nop{}, WithRAG(false)).Recommend(context.Background(), "u-7", gatewayRequest())
	require.NoError(t, err)
	assert.Nil(t, p.ratReq)
	assert.Equal(t, ragDisabledSummary, res.Rationale.Summary)
	assert.Empty(t, res.Rationale.Layers)
}

func TestGatewayStopsOnUpstreamFailure(t *testing.T) {
	p := &stubPlatform{screenErr: &domsvc.UpstreamError{Service: "options-analytics", Err: errors.New("connection refused")}}
	_, err := NewGateway(p, metrics.Nop{}).Recommend(context.Background(), "u-7", gatewayRequest())

	var ue *domsvc.UpstreamError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, "options-analytics", ue.Service)
	assert.Empty(t, p.scoreReq.UserID, "score is never called")
}

func TestGatewayRejectsMalformedRecommendation(t *testing.T) {
	p := &stubPlatform{score: &models.RecommendationResponse{
		Decision:   models.Decision{Direction: "SIDEWAYS", Strategy: "LONG_CALL"},
		Contracts:  []models.ContractCandidate{{Symbol: "X"}},
		Confidence: 0.5,
	}}
	_, err := NewGateway(p, metrics.Nop{}).Recommend(context.Background(), "u-7", gatewayRequest())
	assert.ErrorIs(t, err, ErrInvalidRecommendation)
}
