package usecase

import (
	"context"
	"sync"
	"time"

	"OptionPilot/internal/domain/models"
)

var testNow = time.Date(2026, 3, 2, 14, 30, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

type stubChainSource struct {
	payload *models.ChainPayload
	err     error
	calls   int
}

func (s *stubChainSource) FetchChain(context.Context, string) (*models.ChainPayload, error) {
	s.calls++
	return s.payload, s.err
}

type stubArchiver struct {
	symbol string
	n      int
	err    error
}

func (a *stubArchiver) Archive(_ context.Context, symbol string, cs []models.ContractCandidate, _ time.Time) error {
	a.symbol, a.n = symbol, len(cs)
	return a.err
}

type stubFeatures struct {
	got models.FeatureKey
	out models.LiquidityFeatures
	err error
}

func (f *stubFeatures) Lookup(_ context.Context, key models.FeatureKey) (models.LiquidityFeatures, error) {
	f.got = key
	return f.out, f.err
}

type stubPredictor struct {
	out float64
	err error
	got []float64
}

func (p *stubPredictor) Predict(_ context.Context, features []float64) (float64, error) {
	p.got = features
	return p.out, p.err
}

type stubDecisions struct {
	got []*models.RecommendationResponse
	err error
}

func (d *stubDecisions) PublishDecision(_ context.Context, r *models.RecommendationResponse) error {
	d.got = append(d.got, r)
	return d.err
}

type stubQuoteStore struct {
	mu     sync.Mutex
	quotes []map[string]any
	agg    map[string]any
	err    error
	saved  []models.NormalizedOptionQuote
	aggs   []models.EquityAggregate
}

func (s *stubQuoteStore) OptionQuotes(_ context.Context, _ string, limit int) ([]map[string]any, error) {
	if s.err != nil {
		return nil, s.err
	}
	q := s.quotes
	if limit > 0 && len(q) > limit {
		q = q[:limit]
	}
	return q, nil
}

func (s *stubQuoteStore) EquityAggregate(context.Context, string) (map[string]any, error) {
	return s.agg, s.err
}

func (s *stubQuoteStore) SaveOptionQuote(_ context.Context, q models.NormalizedOptionQuote) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.saved = append(s.saved, q)
	return nil
}

func (s *stubQuoteStore) SaveEquityAggregate(_ context.Context, a models.EquityAggregate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.aggs = append(s.aggs, a)
	return nil
}

type stubSignalsStore struct {
	trades []models.CongressionalTrade
	macro  []string
	err    error
}

func (s *stubSignalsStore) CongressionalTrades(context.Context, string) ([]models.CongressionalTrade, error) {
	return s.trades, s.err
}

func (s *stubSignalsStore) MacroEvents(context.Context) ([]string, error) {
	return s.macro, s.err
}

type stubDocuments struct {
	docs []models.ContextDocument
	err  error
}

func (d *stubDocuments) Retrieve(context.Context, string, int) ([]models.ContextDocument, error) {
	return d.docs, d.err
}

type stubMaterializer struct {
	history   []models.ContractHistory
	histErr   []error
	saved     []models.FeatureRow
	since     time.Time
	histCalls int
}

func (m *stubMaterializer) ContractHistory(_ context.Context, since time.Time) ([]models.ContractHistory, error) {
	m.since = since
	m.histCalls++
	if len(m.histErr) > 0 {
		err := m.histErr[0]
		m.histErr = m.histErr[1:]
		if err != nil {
			return nil, err
		}
	}
	return m.history, nil
}

func (m *stubMaterializer) SaveFeatures(_ context.Context, rows []models.FeatureRow) (int64, error) {
	m.saved = append(m.saved, rows...)
	return int64(len(rows)), nil
}

func liveRecord(strike float64, expiryDays int, delta float64, liq int) map[string]any {
	expiry := testNow.AddDate(0, 0, expiryDays).Format("2006-01-02")
	return map[string]any{
		"symbol":          "AAPL " + expiry,
		"strike":          strike,
		"expiry":          expiry,
		"delta":           delta,
		"gamma":           0.05,
		"theta":           -0.03,
		"vega":            0.1,
		"iv":              0.3,
		"oi":              1500,
		"volume":          400,
		"bid":             2.4,
		"ask":             2.5,
		"spread_pct":      0.004,
		"liquidity_score": liq,
	}
}
