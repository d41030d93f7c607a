package kafka

import (
	"context"
	"fmt"

	"github.com/IBM/sarama"
)

// SyncProducer publishes with IBM/sarama, waiting for all in-sync
// replicas.
type SyncProducer struct {
	producer sarama.SyncProducer
	topic    string
}

func NewSyncProducer(brokers []string, topic string) (*SyncProducer, error) {
	cfg := sarama.NewConfig()
	cfg.Producer.Return.Successes = true
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Retry.Max = 5
	cfg.Producer.Partitioner = sarama.NewHashPartitioner

	producer, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, fmt.Errorf("sarama: new producer: %w", err)
	}
	return newSyncProducer(producer, topic), nil
}

func newSyncProducer(p sarama.SyncProducer, topic string) *SyncProducer {
	return &SyncProducer{producer: p, topic: topic}
}

// Publish ignores ctx; sarama's sync producer bounds the call with its
// own timeouts.
func (p *SyncProducer) Publish(_ context.Context, key, value []byte) error {
	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.ByteEncoder(key),
		Value: sarama.ByteEncoder(value),
	}
	if _, _, err := p.producer.SendMessage(msg); err != nil {
		return fmt.Errorf("sarama: publish: %w", err)
	}
	return nil
}

func (p *SyncProducer) Close() error {
	return p.producer.Close()
}

// New builds the publisher named by client: "sarama" or "kafka-go".
func New(client string, brokers []string, topic string) (Publisher, error) {
	switch client {
	case "", "sarama":
		p, err := NewSyncProducer(brokers, topic)
		if err != nil {
			return nil, err
		}
		return p, nil
	case "kafka-go":
		return NewProducer(brokers, topic), nil
	default:
		return nil, fmt.Errorf("kafka: unknown client %q", client)
	}
}
