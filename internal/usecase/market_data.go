package usecase

import (
	"context"
	"time"

	domrepo "OptionPilot/internal/domain/repository"
	"OptionPilot/internal/services/options"
	applogger "OptionPilot/pkg/logger"
	"OptionPilot/pkg/util"
)

// ChainResponse is the body of GET /chains/:symbol.
type ChainResponse struct {
	Symbol    string           `json:"symbol"`
	Contracts []map[string]any `json:"contracts"`
}

// MarketData serves cached chains and aggregates, synthesizing them when
// the cache has nothing.
type MarketData struct {
	store        domrepo.QuoteStore
	metrics      domrepo.Metrics
	log          *applogger.Logger
	defaultLimit int
	now          func() time.Time
}

// NewMarketData creates the service. defaultLimit applies when a request has no limit.
func NewMarketData(store domrepo.QuoteStore, metrics domrepo.Metrics, defaultLimit int, log *applogger.Logger) *MarketData {
	if defaultLimit <= 0 {
		defaultLimit = 5
	}
	if log == nil {
		log = applogger.Nop()
	}
	return &MarketData{
		store:        store,
		metrics:      metrics,
		log:          log.Component("market_data"),
		defaultLimit: defaultLimit,
		now:          time.Now,
	}
}

// Chain returns up to limit cached quotes of symbol, highest mid first.
func (m *MarketData) Chain(ctx context.Context, symbol string, limit int) ChainResponse {
	symbol = util.NormalizeSymbol(symbol)
	if limit <= 0 {
		limit = m.defaultLimit
	}

	quotes, err := m.store.OptionQuotes(ctx, symbol, limit)
	if err != nil {
		m.metrics.RecordError("quote_store")
		m.log.Warn("read cached chain failed", applogger.String("symbol", symbol), applogger.Error(err))
	}
	if len(quotes) == 0 {
		m.metrics.RecordFallback("chain_cache")
		quotes = options.SyntheticChainRecords(symbol, limit, m.now())
	}
	return ChainResponse{Symbol: symbol, Contracts: quotes}
}

// Quote returns the cached aggregate of symbol or a synthetic one.
func (m *MarketData) Quote(ctx context.Context, symbol string) any {
	symbol = util.NormalizeSymbol(symbol)
	agg, err := m.store.EquityAggregate(ctx, symbol)
	if err != nil {
		m.metrics.RecordError("quote_store")
		m.log.Warn("read cached aggregate failed", applogger.String("symbol", symbol), applogger.Error(err))
	}
	if agg != nil {
		return agg
	}
	m.metrics.RecordFallback("aggregate_cache")
	return options.SyntheticEquityQuote(symbol, m.now())
}
