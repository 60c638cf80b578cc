package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"OptionPilot/internal/domain/models"
	domrepo "OptionPilot/internal/domain/repository"
	domsvc "OptionPilot/internal/domain/service"
	"OptionPilot/internal/services/options"
	"OptionPilot/internal/services/recommend"
	applogger "OptionPilot/pkg/logger"
)

const recommendationSummary = "Momentum supportive with contained event risk."

// Recommender turns a screened chain and a signal snapshot into a sized decision.
type Recommender struct {
	features  domrepo.FeatureLookup
	predictor domsvc.Predictor
	decisions domrepo.DecisionPublisher
	metrics   domrepo.Metrics
	log       *applogger.Logger
	rules     []models.StrategyRule
	newID     func() string
}

type RecommenderOption func(*Recommender)

// WithFeatureLookup enables external liquidity features.
func WithFeatureLookup(f domrepo.FeatureLookup) RecommenderOption {
	return func(r *Recommender) { r.features = f }
}

// WithPredictor enables the hosted model. Without one the feature mean is used.
func WithPredictor(p domsvc.Predictor) RecommenderOption {
	return func(r *Recommender) { r.predictor = p }
}

// WithDecisionPublisher publishes every decision for audit.
func WithDecisionPublisher(p domrepo.DecisionPublisher) RecommenderOption {
	return func(r *Recommender) { r.decisions = p }
}

// WithRules replaces the strategy rules. Empty lists are ignored.
func WithRules(rules []models.StrategyRule) RecommenderOption {
	return func(r *Recommender) {
		if len(rules) > 0 {
			r.rules = rules
		}
	}
}

// WithRecommenderLogger sets the logger.
func WithRecommenderLogger(l *applogger.Logger) RecommenderOption {
	return func(r *Recommender) {
		if l != nil {
			r.log = l
		}
	}
}

// WithIDGenerator overrides recommendation id generation.
func WithIDGenerator(f func() string) RecommenderOption {
	return func(r *Recommender) {
		if f != nil {
			r.newID = f
		}
	}
}

func NewRecommender(metrics domrepo.Metrics, opts ...RecommenderOption) *Recommender {
	r := &Recommender{
		metrics: metrics,
		log:     applogger.Nop(),
		rules:   recommend.DefaultRules,
		newID:   func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(r)
	}
	r.log = r.log.Component("recommender")
	return r
}

// Recommend scores the most liquid contract of the snapshot. An empty or
// fully malformed snapshot fails with recommend.ErrEmptyUniverse, a position
// that cannot be sized with recommend.ErrUnsizablePosition.
func (r *Recommender) Recommend(ctx context.Context, req models.RecommendationRequest) (*models.RecommendationResponse, error) {
	start := time.Now()
	cands, dropped := options.NormalizeAll(req.ChainSnapshot.Candidates)
	if dropped > 0 {
		r.log.Debug("dropped malformed contracts", applogger.Int("dropped", dropped))
	}
	best, err := recommend.SelectByLiquidity(cands)
	if err != nil {
		r.metrics.RecordError("empty_universe")
		return nil, err
	}

	profile := req.Request.RiskProfile
	fv := recommend.BuildFeatures(best, req.Signals, profile, r.lookup(ctx, best))
	confidence := recommend.ClampConfidence(r.predict(ctx, fv))
	rule := recommend.SelectRule(r.rules, confidence)
	position, err := recommend.SizePosition(req.Request.CapitalUSD, best.Mid)
	if err != nil {
		r.metrics.RecordError("sizing")
		return nil, fmt.Errorf("size %s: %w", best.Symbol, err)
	}

	resp := &models.RecommendationResponse{
		ID:         r.newID(),
		UserID:     req.UserID,
		Decision:   models.Decision{Direction: rule.Direction, Strategy: rule.Name},
		Contracts:  []models.ContractCandidate{best},
		Position:   position,
		Confidence: confidence,
		Rationale:  recommendationRationale(best, req),
		Disclosure: models.Disclosure,
	}

	r.metrics.RecordConfidence(rule.Name, confidence)
	r.metrics.RecordLatency("recommend", time.Since(start).Seconds())

	if r.decisions != nil {
		if err := r.decisions.PublishDecision(ctx, resp); err != nil {
			r.metrics.RecordError("decision_publish")
			r.log.Warn("publish decision failed", applogger.String("id", resp.ID), applogger.Error(err))
		}
	}
	return resp, nil
}

func (r *Recommender) lookup(ctx context.Context, c models.ContractCandidate) models.LiquidityFeatures {
	if r.features == nil {
		return models.LiquidityFeatures{}
	}
	key := recommend.FeatureKeyFor(c)
	f, err := r.features.Lookup(ctx, key)
	if err != nil {
		r.metrics.RecordError("feature_lookup")
		return models.LiquidityFeatures{}
	}
	return f
}

func (r *Recommender) predict(ctx context.Context, fv recommend.FeatureVector) float64 {
	if r.predictor == nil {
		return fv.Mean()
	}
	p, err := r.predictor.Predict(ctx, fv.Values())
	if err != nil {
		r.metrics.RecordFallback("model")
		r.log.Warn("model prediction failed, using feature mean", applogger.Error(err))
		return fv.Mean()
	}
	return p
}

func recommendationRationale(best models.ContractCandidate, req models.RecommendationRequest) models.Rationale {
	s := req.Signals
	var oi any = "n/a"
	if u, ok := req.ChainSnapshot.Diagnostics["universe"]; ok {
		oi = u
	}
	return models.Rationale{
		Summary: recommendationSummary,
		Layers: map[string]map[string]any{
			"liquidity": {
				"oi":         oi,
				"spread_pct": best.Mid * 0.01,
			},
			"sentiment": {
				"score":    s.SentimentScore,
				"momentum": s.SentimentMomentum,
			},
			"congress": {
				"recent_related": s.CongressionalRecentRelated,
				"events":         headTrades(s.CongressionalEvents, 3),
			},
			"indicators": {
				"rsi":          s.RSI,
				"macd":         s.MACD,
				"ivr":          s.IVRank,
				"trend_regime": s.TrendRegime,
			},
			"macro": {
				"next_events": headStrings(s.MacroEvents, 3),
				"risk_flag":   s.MacroRiskFlag,
			},
		},
	}
}

func headTrades(xs []models.CongressionalTrade, n int) []models.CongressionalTrade {
	if len(xs) > n {
		xs = xs[:n]
	}
	if xs == nil {
		return []models.CongressionalTrade{}
	}
	return xs
}

func headStrings(xs []string, n int) []string {
	if len(xs) > n {
		xs = xs[:n]
	}
	if xs == nil {
		return []string{}
	}
	return xs
}
