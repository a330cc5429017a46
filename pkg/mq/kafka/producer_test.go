package kafka

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	mu     sync.Mutex
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func TestProducer_PublishJSON(t *testing.T) {
	w := &fakeWriter{}
	p := newProducerWithWriter("petpark.ledger", w, nil)

	err := p.PublishJSON(context.Background(), "user-1", map[string]any{"delta": -15}, map[string]string{"reason": "feed"})
	require.NoError(t, err)

	require.Len(t, w.msgs, 1)
	assert.Equal(t, []byte("user-1"), w.msgs[0].Key)
	assert.JSONEq(t, `{"delta":-15}`, string(w.msgs[0].Value))
	assert.Len(t, w.msgs[0].Headers, 2)
	assert.Equal(t, ProducerStats{Produced: 1, Succeeded: 1}, p.Stats())
}

func TestProducer_PublishFailure(t *testing.T) {
	boom := errors.New("broker down")
	p := newProducerWithWriter("petpark.ledger", &fakeWriter{err: boom}, nil)

	err := p.Publish(context.Background(), &Message{Key: []byte("k"), Value: []byte("v")})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, int64(1), p.Stats().Failed)
}

func TestProducer_Closed(t *testing.T) {
	w := &fakeWriter{}
	p := newProducerWithWriter("petpark.ledger", w, nil)

	require.NoError(t, p.Close())
	require.NoError(t, p.Close())
	assert.True(t, w.closed)
	assert.ErrorIs(t, p.Publish(context.Background(), &Message{}), ErrProducerClosed)
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())

	cfg := DefaultConfig()
	cfg.Brokers = nil
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)

	cfg = DefaultConfig()
	cfg.Compression = "brotli"
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)

	_, err := NewProducer(DefaultConfig(), "", nil)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}
