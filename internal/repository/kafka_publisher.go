package repository

import (
	"context"

	domrepo "FinStudies/internal/domain/repository"
	pkgkafka "FinStudies/pkg/kafka"
)

type producer interface {
	Publish(ctx context.Context, topic string, key []byte, value interface{}) error
	Close() error
}

// KafkaPublisher publishes JSON values to a fixed topic.
type KafkaPublisher struct {
	p     producer
	topic string
}

var _ domrepo.Publisher = (*KafkaPublisher)(nil)

func NewKafkaPublisher(p *pkgkafka.Producer, topic string) *KafkaPublisher {
	return &KafkaPublisher{p: p, topic: topic}
}

func (k *KafkaPublisher) Publish(ctx context.Context, key string, v interface{}) error {
	var kb []byte
	if key != "" {
		kb = []byte(key)
	}
	return k.p.Publish(ctx, k.topic, kb, v)
}

func (k *KafkaPublisher) Close() error { return k.p.Close() }
