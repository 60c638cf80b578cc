package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/errgroup"

	"OptionPilot/internal/domain/models"
	domrepo "OptionPilot/internal/domain/repository"
	domsvc "OptionPilot/internal/domain/service"
	applogger "OptionPilot/pkg/logger"
)

// ErrInvalidRecommendation is returned when the merged answer is missing required parts.
var ErrInvalidRecommendation = errors.New("recommendation failed shape check")

const ragDisabledSummary = "RAG disabled"

// recommendationShape is what a gateway answer must carry.
type recommendationShape struct {
	Direction  string  `validate:"oneof=CALL PUT"`
	Strategy   string  `validate:"required"`
	Contracts  int     `validate:"gte=1"`
	Notional   float64 `validate:"gte=0"`
	Confidence float64 `validate:"gte=0,lte=1"`
	Summary    string  `validate:"required"`
}

// Gateway runs one recommendation end to end: screening and signals in
// parallel, then scoring, then the rationale.
type Gateway struct {
	platform      domsvc.Platform
	metrics       domrepo.Metrics
	log           *applogger.Logger
	marketDataURL string
	ragEnabled    bool
	shape         *validator.Validate
}

type GatewayOption func(*Gateway)

// WithMarketDataURL is forwarded to the recommendation engine.
func WithMarketDataURL(u string) GatewayOption {
	return func(g *Gateway) { g.marketDataURL = u }
}

// WithRAG toggles the rationale call. When off a stub rationale is attached.
func WithRAG(enabled bool) GatewayOption {
	return func(g *Gateway) { g.ragEnabled = enabled }
}

func WithGatewayLogger(l *applogger.Logger) GatewayOption {
	return func(g *Gateway) {
		if l != nil {
			g.log = l
		}
	}
}

func NewGateway(p domsvc.Platform, metrics domrepo.Metrics, opts ...GatewayOption) *Gateway {
	g := &Gateway{
		platform:   p,
		metrics:    metrics,
		log:        applogger.Nop(),
		ragEnabled: true,
		shape:      validator.New(),
	}
	for _, opt := range opts {
		opt(g)
	}
	g.log = g.log.Component("gateway")
	return g
}

// Recommend routes req for userID through the platform. Upstream failures
// come back as *domsvc.UpstreamError.
func (g *Gateway) Recommend(ctx context.Context, userID string, req models.ScreeningRequest) (*models.RecommendationResponse, error) {
	start := time.Now()

	var (
		chain   *models.ChainSnapshot
		signals *models.SignalSnapshot
	)
	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		var err error
		chain, err = g.platform.Screen(egCtx, req)
		return err
	})
	eg.Go(func() error {
		var err error
		signals, err = g.platform.Snapshot(egCtx, req.Symbol)
		return err
	})
	if err := eg.Wait(); err != nil {
		g.metrics.RecordError("gateway_fanout")
		return nil, err
	}

	rec, err := g.platform.Score(ctx, models.RecommendationRequest{
		UserID:        userID,
		MarketDataURL: g.marketDataURL,
		ChainSnapshot: *chain,
		Signals:       *signals,
		Request:       models.RequestContext{CapitalUSD: req.CapitalUSD, RiskProfile: string(req.RiskProfile)},
	})
	if err != nil {
		g.metrics.RecordError("gateway_score")
		return nil, err
	}

	rationale, err := g.rationale(ctx, userID, req.Symbol, rec, signals)
	if err != nil {
		g.metrics.RecordError("gateway_rationale")
		return nil, err
	}
	rec.Rationale = rationale

	if err := g.check(rec); err != nil {
		g.metrics.RecordError("gateway_shape")
		g.log.Warn("rejecting recommendation", applogger.String("id", rec.ID), applogger.Error(err))
		return nil, err
	}
	g.metrics.RecordLatency("gateway", time.Since(start).Seconds())
	return rec, nil
}

func (g *Gateway) rationale(ctx context.Context, userID, symbol string, rec *models.RecommendationResponse, signals *models.SignalSnapshot) (models.Rationale, error) {
	if !g.ragEnabled {
		return models.Rationale{Summary: ragDisabledSummary, Layers: map[string]map[string]any{}}, nil
	}
	r, err := g.platform.Rationale(ctx, models.RationaleRequest{
		UserID:         userID,
		Symbol:         symbol,
		Recommendation: *rec,
		Signals:        signals,
	})
	if err != nil {
		return models.Rationale{}, err
	}
	return *r, nil
}

func (g *Gateway) check(rec *models.RecommendationResponse) error {
	s := recommendationShape{
		Direction:  rec.Decision.Direction,
		Strategy:   rec.Decision.Strategy,
		Contracts:  len(rec.Contracts),
		Notional:   rec.Position.Notional,
		Confidence: rec.Confidence,
		Summary:    rec.Rationale.Summary,
	}
	if err := g.shape.Struct(s); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRecommendation, err)
	}
	return nil
}
