package repository

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"OptionPilot/internal/domain/models"
	pkgkafka "OptionPilot/pkg/kafka"
	"OptionPilot/pkg/metrics"
)

type captureWriter struct {
	msgs []kafka.Message
}

func (w *captureWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *captureWriter) Close() error { return nil }

func TestKafkaEventPublisherKeysBySymbol(t *testing.T) {
	w := &captureWriter{}
	prod := pkgkafka.NewProducerWithWriter(w, "none", prometheus.NewRegistry())
	pub := NewKafkaEventPublisher(prod, "market.events", metrics.Nop{})

	e := models.MarketEvent{Kind: models.EventEquityAggregate, Aggregate: &models.EquityAggregate{Symbol: "AAPL", Close: 101}}
	require.NoError(t, pub.Publish(context.Background(), e))

	require.Len(t, w.msgs, 1)
	assert.Equal(t, "market.events", w.msgs[0].Topic)
	assert.Equal(t, []byte("AAPL"), w.msgs[0].Key)

	var got models.MarketEvent
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &got))
	assert.Equal(t, 101.0, got.Aggregate.Close)
}

func TestKafkaEventPublisherRejectsKeylessEvent(t *testing.T) {
	w := &captureWriter{}
	pub := NewKafkaEventPublisher(pkgkafka.NewProducerWithWriter(w, "none", prometheus.NewRegistry()), "market.events", nil)

	assert.Error(t, pub.Publish(context.Background(), models.MarketEvent{Kind: models.EventOptionQuote}))
	assert.Empty(t, w.msgs)
}

func TestKafkaDecisionPublisher(t *testing.T) {
	w := &captureWriter{}
	pub := NewKafkaDecisionPublisher(pkgkafka.NewProducerWithWriter(w, "none", prometheus.NewRegistry()), "recommendation.decisions")

	require.NoError(t, pub.PublishDecision(context.Background(), &models.RecommendationResponse{ID: "r1", UserID: "u1"}))
	require.Len(t, w.msgs, 1)
	assert.Equal(t, []byte("u1"), w.msgs[0].Key)
}
