package repository

import (
	"context"
	"time"

	"SignalRelay/internal/domain/models"
	pkgkafka "SignalRelay/pkg/kafka"
)

// KafkaPublisher fans matched signals out to a Kafka topic for
// downstream consumers. Failures here are recoverable and never affect
// the Telegram forward.
type KafkaPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

// NewKafkaPublisher creates a Kafka-backed signal publisher.
func NewKafkaPublisher(producer *pkgkafka.Producer, topic string) *KafkaPublisher {
	return &KafkaPublisher{producer: producer, topic: topic}
}

type signalEnvelope struct {
	SourceChat string    `json:"source_chat"`
	TargetChat string    `json:"target_chat"`
	Raw        string    `json:"raw"`
	Forwarded  string    `json:"forwarded"`
	MatchedAt  time.Time `json:"matched_at"`
}

// Publish writes one signal keyed by source chat so per-chat ordering
// is preserved.
func (p *KafkaPublisher) Publish(ctx context.Context, s *models.Signal) error {
	return p.producer.Publish(ctx, p.topic, []byte(s.SourceChat), signalEnvelope{
		SourceChat: s.SourceChat,
		TargetChat: s.TargetChat,
		Raw:        s.Raw,
		Forwarded:  s.Forwarded,
		MatchedAt:  s.MatchedAt,
	})
}

// Close closes the underlying producer.
func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}
