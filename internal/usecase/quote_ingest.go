package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"OptionPilot/internal/domain/models"
	domrepo "OptionPilot/internal/domain/repository"
	pkgkafka "OptionPilot/pkg/kafka"
)

// QuoteIngestHandler consumes market events and writes them to the quote cache.
type QuoteIngestHandler struct {
	topic   string
	store   domrepo.QuoteStore
	metrics domrepo.Metrics
}

func NewQuoteIngestHandler(topic string, store domrepo.QuoteStore, metrics domrepo.Metrics) *QuoteIngestHandler {
	return &QuoteIngestHandler{topic: topic, store: store, metrics: metrics}
}

func (h *QuoteIngestHandler) Topic() string { return h.topic }

// Handle decodes one MarketEvent and caches it.
func (h *QuoteIngestHandler) Handle(ctx context.Context, b []byte) error {
	var e models.MarketEvent
	if err := json.Unmarshal(b, &e); err != nil {
		h.metrics.RecordError("consumer_unmarshal")
		return fmt.Errorf("decode event: %w", err)
	}

	start := time.Now()
	var (
		err error
		ts  time.Time
	)
	switch {
	case e.Kind == models.EventOptionQuote && e.Quote != nil:
		ts = e.Quote.Timestamp
		err = h.store.SaveOptionQuote(ctx, *e.Quote)
	case e.Kind == models.EventEquityAggregate && e.Aggregate != nil:
		ts = e.Aggregate.Timestamp
		err = h.store.SaveEquityAggregate(ctx, *e.Aggregate)
	default:
		h.metrics.RecordError("consumer_kind")
		return fmt.Errorf("unsupported event %q", e.Kind)
	}
	h.metrics.RecordLatency("cache_write_seconds", time.Since(start).Seconds())
	if err != nil {
		h.metrics.RecordError("consumer_store")
		return err
	}
	if !ts.IsZero() {
		h.metrics.RecordLatency("ingest_e2e_seconds", time.Since(ts).Seconds())
	}
	h.metrics.RecordMessageSent("redis", e.Key())
	return nil
}

var _ pkgkafka.MessageHandler = (*QuoteIngestHandler)(nil)
