package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingProducer struct {
	topic  string
	key    []byte
	value  interface{}
	closed bool
}

func (p *recordingProducer) Publish(_ context.Context, topic string, key []byte, value interface{}) error {
	p.topic, p.key, p.value = topic, key, value
	return nil
}

func (p *recordingProducer) Close() error {
	p.closed = true
	return nil
}

func TestKafkaPublisherUsesFixedTopic(t *testing.T) {
	rp := &recordingProducer{}
	pub := &KafkaPublisher{p: rp, topic: "study.results"}

	require.NoError(t, pub.Publish(context.Background(), "req-1", map[string]string{"a": "b"}))
	assert.Equal(t, "study.results", rp.topic)
	assert.Equal(t, []byte("req-1"), rp.key)

	require.NoError(t, pub.Publish(context.Background(), "", "x"))
	assert.Nil(t, rp.key)

	require.NoError(t, pub.Close())
	assert.True(t, rp.closed)
}
