package kafka

import (
	"context"
	"testing"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSyncProducerPublishes(t *testing.T) {
	cfg := sarama.NewConfig()
	cfg.Producer.Return.Successes = true
	mock := mocks.NewSyncProducer(t, cfg)
	mock.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		assert.Equal(t, []byte("payload"), val)
		return nil
	})

	p := newSyncProducer(mock, "order-events")
	require.NoError(t, p.Publish(context.Background(), []byte("k"), []byte("payload")))
	require.NoError(t, p.Close())
}

func TestSyncProducerError(t *testing.T) {
	mock := mocks.NewSyncProducer(t, nil)
	mock.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	p := newSyncProducer(mock, "order-events")
	err := p.Publish(context.Background(), nil, []byte("x"))
	assert.ErrorIs(t, err, sarama.ErrOutOfBrokers)
	require.NoError(t, p.Close())
}

func TestNewRejectsUnknownClient(t *testing.T) {
	_, err := New("carrier-pigeon", []string{"localhost:9092"}, "t")
	assert.ErrorContains(t, err, "unknown client")
}

func TestNewKafkaGoDoesNotDial(t *testing.T) {
	p, err := New("kafka-go", []string{"localhost:9092"}, "t")
	require.NoError(t, err)
	assert.IsType(t, &Producer{}, p)
	require.NoError(t, p.Close())
}
