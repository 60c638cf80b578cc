package usecase

import (
	"context"
	"fmt"
	"time"

	"OptionPilot/internal/domain/models"
	domrepo "OptionPilot/internal/domain/repository"
	applogger "OptionPilot/pkg/logger"
	"OptionPilot/pkg/util"
)

const (
	rationaleDocLimit = 5
	// primerDocumentID marks the company background document; every other
	// document counts as a sentiment source.
	primerDocumentID = "primer"
)

// RationaleBuilder explains a recommendation with signals and retrieved documents.
type RationaleBuilder struct {
	docs    domrepo.DocumentStore
	metrics domrepo.Metrics
	log     *applogger.Logger
	now     func() time.Time
}

// NewRationaleBuilder creates the builder. docs may be nil; placeholder documents are used then.
func NewRationaleBuilder(docs domrepo.DocumentStore, metrics domrepo.Metrics, log *applogger.Logger) *RationaleBuilder {
	if log == nil {
		log = applogger.Nop()
	}
	return &RationaleBuilder{docs: docs, metrics: metrics, log: log.Component("rationale"), now: time.Now}
}

// Build returns the narrative for req.
func (b *RationaleBuilder) Build(ctx context.Context, req models.RationaleRequest) models.Rationale {
	symbol := util.NormalizeSymbol(req.Symbol)
	docs := b.retrieve(ctx, symbol)

	var signals models.SignalSnapshot
	if req.Signals != nil {
		signals = *req.Signals
	}

	momentum := signals.SentimentMomentum
	if momentum == "" {
		momentum = "flat"
	}
	related := signals.CongressionalRecentRelated
	if related == "" {
		related = "none"
	}

	sources := make([]string, 0, len(docs))
	for _, d := range docs {
		if d.ID != primerDocumentID {
			sources = append(sources, d.Content)
		}
	}

	var oi, spread any = "n/a", "n/a"
	if cs := req.Recommendation.Contracts; len(cs) > 0 {
		oi, spread = cs[0].OpenInterest, cs[0].SpreadPct
	}

	return models.Rationale{
		Summary: fmt.Sprintf("%s shows constructive momentum with manageable macro risk.", symbol),
		Layers: map[string]map[string]any{
			"liquidity": {
				"oi":         oi,
				"spread_pct": spread,
			},
			"sentiment": {
				"sources":  sources,
				"score":    signals.SentimentScore,
				"momentum": momentum,
			},
			"congress": {
				"notes":          headTrades(signals.CongressionalEvents, 2),
				"recent_related": related,
			},
			"indicators": {
				"rsi":          signals.RSI,
				"macd":         signals.MACD,
				"ivr":          signals.IVRank,
				"trend_regime": signals.TrendRegime,
			},
			"macro": {
				"next_events": headStrings(signals.MacroEvents, 3),
				"risk_flag":   signals.MacroRiskFlag,
				"as_of":       b.now().UTC().Format(time.RFC3339),
			},
		},
		Compliance: map[string]any{"disclaimer": models.Disclosure},
	}
}

func (b *RationaleBuilder) retrieve(ctx context.Context, symbol string) []models.ContextDocument {
	if b.docs != nil {
		docs, err := b.docs.Retrieve(ctx, symbol, rationaleDocLimit)
		switch {
		case err != nil:
			b.metrics.RecordError("document_store")
			b.log.Warn("document retrieval failed", applogger.String("symbol", symbol), applogger.Error(err))
		case len(docs) > 0:
			return docs
		}
	}
	b.metrics.RecordFallback("documents")
	return placeholderDocuments(symbol)
}

func placeholderDocuments(symbol string) []models.ContextDocument {
	return []models.ContextDocument{
		{ID: primerDocumentID, Content: fmt.Sprintf("%s operates in consumer electronics.", symbol), Score: 0.92},
		{ID: "news", Content: fmt.Sprintf("%s reported steady demand last week.", symbol), Score: 0.88},
	}
}
