package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"OptionPilot/internal/domain/models"
	"OptionPilot/pkg/metrics"
)

func newTestRationale(docs *stubDocuments) *RationaleBuilder {
	var b *RationaleBuilder
	if docs == nil {
		b = NewRationaleBuilder(nil, metrics.Nop{}, nil)
	} else {
		b = NewRationaleBuilder(docs, metrics.Nop{}, nil)
	}
	b.now = fixedClock
	return b
}

func TestRationaleWithPlaceholderDocuments(t *testing.T) {
	for name, docs := range map[string]*stubDocuments{
		"no store":    nil,
		"empty store": {},
		"store error": {err: errors.New("pg down")},
	} {
		t.Run(name, func(t *testing.T) {
			r := newTestRationale(docs).Build(context.Background(), models.RationaleRequest{UserID: "u", Symbol: "aapl"})

			assert.Equal(t, "AAPL shows constructive momentum with manageable macro risk.", r.Summary)
			assert.Equal(t, []string{"AAPL reported steady demand last week."}, r.Layers["sentiment"]["sources"])
			assert.Equal(t, "flat", r.Layers["sentiment"]["momentum"])
			assert.Equal(t, "none", r.Layers["congress"]["recent_related"])
			assert.Equal(t, "n/a", r.Layers["liquidity"]["oi"])
			assert.Equal(t, "n/a", r.Layers["liquidity"]["spread_pct"])
			assert.Equal(t, "2026-03-02T14:30:00Z", r.Layers["macro"]["as_of"])
			assert.Equal(t, models.Disclosure, r.Compliance["disclaimer"])
		})
	}
}

func TestRationaleFromRecommendationAndSignals(t *testing.T) {
	docs := &stubDocuments{docs: []models.ContextDocument{
		{ID: "primer", Content: "background", Score: 0.9},
		{ID: "d-17", Content: "beat estimates", Score: 0.8},
	}}
	req := models.RationaleRequest{
		UserID: "u",
		Symbol: "AAPL",
		Recommendation: models.RecommendationResponse{
			Contracts: []models.ContractCandidate{{Symbol: "AAPL 2026-04-17 150C", OpenInterest: 1500, SpreadPct: 0.004}},
		},
		Signals: &models.SignalSnapshot{
			SentimentScore:             0.24,
			SentimentMomentum:          "improving",
			CongressionalRecentRelated: "mild",
			CongressionalEvents: []models.CongressionalTrade{
				{Name: "a"}, {Name: "b"}, {Name: "c"},
			},
			MacroEvents:   []string{"CPI on 2026-03-07", "FOMC on 2026-03-14"},
			MacroRiskFlag: true,
		},
	}
	r := newTestRationale(docs).Build(context.Background(), req)

	assert.Equal(t, int64(1500), r.Layers["liquidity"]["oi"])
	assert.Equal(t, 0.004, r.Layers["liquidity"]["spread_pct"])
	assert.Equal(t, []string{"beat estimates"}, r.Layers["sentiment"]["sources"])
	assert.Equal(t, "improving", r.Layers["sentiment"]["momentum"])
	assert.Len(t, r.Layers["congress"]["notes"], 2)
	assert.Equal(t, "mild", r.Layers["congress"]["recent_related"])
	assert.Equal(t, []string{"CPI on 2026-03-07", "FOMC on 2026-03-14"}, r.Layers["macro"]["next_events"])
	assert.Equal(t, true, r.Layers["macro"]["risk_flag"])
}
