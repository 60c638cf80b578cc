package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"OptionPilot/internal/domain/models"
	domrepo "OptionPilot/internal/domain/repository"
	"OptionPilot/pkg/cache"
	"OptionPilot/pkg/util"
)

const (
	optionQuotePrefix  = "options:quote"
	equityAggregateKey = "equity:aggregate"
)

// RedisQuoteStore keeps the latest quotes and aggregates in Redis.
type RedisQuoteStore struct {
	c            cache.Service
	quoteTTL     time.Duration
	aggregateTTL time.Duration
}

// NewRedisQuoteStore creates the store over a namespaced cache.
func NewRedisQuoteStore(c cache.Service, quoteTTL, aggregateTTL time.Duration) *RedisQuoteStore {
	if quoteTTL <= 0 {
		quoteTTL = 10 * time.Second
	}
	if aggregateTTL <= 0 {
		aggregateTTL = 15 * time.Minute
	}
	return &RedisQuoteStore{c: c, quoteTTL: quoteTTL, aggregateTTL: aggregateTTL}
}

// OptionQuotes returns the cached quotes of an underlying, highest mid first.
// Entries that are not JSON objects are skipped.
func (s *RedisQuoteStore) OptionQuotes(ctx context.Context, symbol string, limit int) ([]map[string]any, error) {
	// contract keys are "<UNDERLYING> <expiry> <strike><C|P>"; the space keeps A from matching AAPL
	prefix := cache.Key(optionQuotePrefix, util.NormalizeSymbol(symbol)) + " "
	keys, err := s.c.ScanKeys(ctx, cache.PrefixPattern(prefix))
	if err != nil {
		return nil, fmt.Errorf("scan quotes: %w", err)
	}
	if len(keys) == 0 {
		return nil, nil
	}

	raw, err := cache.DecodeAll[map[string]any](ctx, s.c, keys...)
	if err != nil {
		return nil, fmt.Errorf("mget quotes: %w", err)
	}

	out := make([]map[string]any, 0, len(raw.Values))
	for _, q := range raw.Values {
		if q != nil {
			out = append(out, q)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return midOf(out[i]) > midOf(out[j])
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// EquityAggregate returns the cached aggregate or nil when absent.
func (s *RedisQuoteStore) EquityAggregate(ctx context.Context, symbol string) (map[string]any, error) {
	var agg map[string]any
	err := s.c.Get(ctx, cache.Key(equityAggregateKey, util.NormalizeSymbol(symbol)), &agg)
	switch {
	case errors.Is(err, cache.ErrCacheMiss):
		return nil, nil
	case err != nil:
		return nil, fmt.Errorf("get aggregate: %w", err)
	}
	return agg, nil
}

// SaveOptionQuote stores q under its contract symbol.
func (s *RedisQuoteStore) SaveOptionQuote(ctx context.Context, q models.NormalizedOptionQuote) error {
	if q.Symbol == "" {
		return fmt.Errorf("save quote: empty symbol")
	}
	return s.c.Set(ctx, cache.Key(optionQuotePrefix, q.Symbol), q, s.quoteTTL)
}

// SaveEquityAggregate stores a under its underlying symbol.
func (s *RedisQuoteStore) SaveEquityAggregate(ctx context.Context, a models.EquityAggregate) error {
	a.Symbol = util.NormalizeSymbol(a.Symbol)
	if a.Symbol == "" {
		return fmt.Errorf("save aggregate: empty symbol")
	}
	return s.c.Set(ctx, cache.Key(equityAggregateKey, a.Symbol), a, s.aggregateTTL)
}

func midOf(q map[string]any) float64 {
	switch v := q["mid"].(type) {
	case float64:
		return v
	case json.Number:
		f, _ := v.Float64()
		return f
	default:
		return 0
	}
}

var _ domrepo.QuoteStore = (*RedisQuoteStore)(nil)
