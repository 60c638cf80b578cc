package repository

import (
	"context"
	"fmt"

	"OptionPilot/internal/domain/models"
	domrepo "OptionPilot/internal/domain/repository"
	pkgkafka "OptionPilot/pkg/kafka"
)

// KafkaEventPublisher publishes market events keyed by symbol.
type KafkaEventPublisher struct {
	producer *pkgkafka.Producer
	topic    string
	metrics  domrepo.Metrics
}

// NewKafkaEventPublisher creates the market event publisher.
func NewKafkaEventPublisher(producer *pkgkafka.Producer, topic string, m domrepo.Metrics) *KafkaEventPublisher {
	return &KafkaEventPublisher{producer: producer, topic: topic, metrics: m}
}

func (p *KafkaEventPublisher) Publish(ctx context.Context, e models.MarketEvent) error {
	key := e.Key()
	if key == "" {
		return fmt.Errorf("publish %s event: missing symbol", e.Kind)
	}
	if err := p.producer.Publish(ctx, p.topic, []byte(key), e); err != nil {
		return err
	}
	if p.metrics != nil {
		p.metrics.RecordMessageSent(p.topic, key)
	}
	return nil
}

func (p *KafkaEventPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}

// KafkaDecisionPublisher publishes recommendation decisions keyed by user.
type KafkaDecisionPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

// NewKafkaDecisionPublisher creates the decision publisher.
func NewKafkaDecisionPublisher(producer *pkgkafka.Producer, topic string) *KafkaDecisionPublisher {
	return &KafkaDecisionPublisher{producer: producer, topic: topic}
}

func (p *KafkaDecisionPublisher) PublishDecision(ctx context.Context, r *models.RecommendationResponse) error {
	if r == nil {
		return nil
	}
	return p.producer.Publish(ctx, p.topic, []byte(r.UserID), r)
}

var (
	_ domrepo.EventPublisher    = (*KafkaEventPublisher)(nil)
	_ domrepo.DecisionPublisher = (*KafkaDecisionPublisher)(nil)
)
