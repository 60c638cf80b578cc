package repository

import (
	"context"
	"errors"
	"time"

	"OptionPilot/internal/domain/models"
)

var (
	// ErrFetchFailed wraps any failure of the live market-data call.
	ErrFetchFailed = errors.New("market data fetch failed")
	// ErrMarketDataDisabled means no market-data endpoint is configured.
	ErrMarketDataDisabled = errors.New("market data disabled")
)

// ChainSource fetches the live option chain of a symbol.
// A nil payload with nil error means the provider had nothing for the symbol.
type ChainSource interface {
	FetchChain(ctx context.Context, symbol string) (*models.ChainPayload, error)
}

// FallbackChainProvider supplies a local chain when no live data is available.
type FallbackChainProvider interface {
	FallbackChain(symbol string, now time.Time) []models.ContractCandidate
}

// FeatureLookup reads online liquidity features of a contract.
type FeatureLookup interface {
	Lookup(ctx context.Context, key models.FeatureKey) (models.LiquidityFeatures, error)
}

// FeatureMaterializer reads archived chain history and writes liquidity features.
type FeatureMaterializer interface {
	ContractHistory(ctx context.Context, since time.Time) ([]models.ContractHistory, error)
	SaveFeatures(ctx context.Context, rows []models.FeatureRow) (int64, error)
}

// ChainArchiver records screened chains; the history feeds the feature ETL.
type ChainArchiver interface {
	Archive(ctx context.Context, symbol string, cs []models.ContractCandidate, at time.Time) error
}

// QuoteStore is the market-data cache.
type QuoteStore interface {
	OptionQuotes(ctx context.Context, symbol string, limit int) ([]map[string]any, error)
	EquityAggregate(ctx context.Context, symbol string) (map[string]any, error)
	SaveOptionQuote(ctx context.Context, q models.NormalizedOptionQuote) error
	SaveEquityAggregate(ctx context.Context, a models.EquityAggregate) error
}

// SignalsStore reads congressional and macro calendar data.
type SignalsStore interface {
	CongressionalTrades(ctx context.Context, symbol string) ([]models.CongressionalTrade, error)
	MacroEvents(ctx context.Context) ([]string, error)
}

// DocumentStore retrieves context documents for rationales.
type DocumentStore interface {
	Retrieve(ctx context.Context, symbol string, limit int) ([]models.ContextDocument, error)
}

// QuoteStream is a live feed of quotes and aggregates.
type QuoteStream interface {
	Connect(ctx context.Context) error
	Subscribe(ctx context.Context) error
	Read(ctx context.Context) (<-chan models.MarketEvent, <-chan error)
	Reconnect(ctx context.Context) error
	Close() error
	IsConnected() bool
}

// EventPublisher publishes ingested market events.
type EventPublisher interface {
	Publish(ctx context.Context, e models.MarketEvent) error
	Close() error
}

// DecisionPublisher publishes recommendation decisions for audit.
type DecisionPublisher interface {
	PublishDecision(ctx context.Context, r *models.RecommendationResponse) error
}

// Metrics records pipeline telemetry.
type Metrics interface {
	RecordScreening(profile string, universe, filtered int)
	RecordFallback(source string)
	RecordError(kind string)
	RecordLatency(op string, seconds float64)
	RecordConfidence(strategy string, confidence float64)
	RecordMessageSent(topic, symbol string)
}
