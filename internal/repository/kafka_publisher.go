package repository

import (
	"context"

	"StockPulse/internal/domain/models"
	domrepo "StockPulse/internal/domain/repository"
	pkgkafka "StockPulse/pkg/kafka"
)

// KafkaPostPublisher emits analyzed-post events, keyed by source ID so
// replays of the same post land on the same partition.
type KafkaPostPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

// NewKafkaPostPublisher creates a Kafka publisher for post events.
func NewKafkaPostPublisher(producer *pkgkafka.Producer, topic string) domrepo.Publisher {
	return &KafkaPostPublisher{producer: producer, topic: topic}
}

func (p *KafkaPostPublisher) Publish(ctx context.Context, post *models.Post) error {
	return p.producer.Publish(ctx, p.topic, []byte(post.SourceID), post)
}

func (p *KafkaPostPublisher) Close() error {
	return p.producer.Close()
}

// NoopPublisher drops events; used when Kafka is not configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(ctx context.Context, post *models.Post) error { return nil }
func (NoopPublisher) Close() error                                         { return nil }
