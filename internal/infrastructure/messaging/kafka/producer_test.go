package kafka

import (
	"context"
	"errors"
	"sync"
	"testing"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docsight/docsight/internal/testutil"
)

type captureWriter struct {
	mu       sync.Mutex
	messages []kafkago.Message
	err      error
	closed   bool
}

func (w *captureWriter) WriteMessages(_ context.Context, msgs ...kafkago.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *captureWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
	return nil
}

func TestProducer_Publish(t *testing.T) {
	w := &captureWriter{}
	p := NewProducerWithWriter(w, testutil.NewMockLogger())

	err := p.Publish(context.Background(), Message{
		Topic:   TopicFeedback,
		Key:     []byte("doc-1"),
		Value:   []byte(`{"feedback":"positive"}`),
		Headers: map[string]string{"content-type": "application/json"},
	})

	require.NoError(t, err)
	require.Len(t, w.messages, 1)
	assert.Equal(t, TopicFeedback, w.messages[0].Topic)
	assert.Equal(t, []byte("doc-1"), w.messages[0].Key)
	assert.Equal(t, int64(1), p.Sent())
}

func TestProducer_PublishValidation(t *testing.T) {
	p := NewProducerWithWriter(&captureWriter{}, testutil.NewMockLogger())

	assert.Error(t, p.Publish(context.Background(), Message{Value: []byte("x")}))
	assert.Error(t, p.Publish(context.Background(), Message{Topic: TopicFeedback}))
}

func TestProducer_PublishWriteError(t *testing.T) {
	w := &captureWriter{err: errors.New("broker down")}
	p := NewProducerWithWriter(w, testutil.NewMockLogger())

	err := p.Publish(context.Background(), Message{Topic: TopicFeedback, Value: []byte("x")})

	require.Error(t, err)
	assert.Equal(t, int64(1), p.Failed())
}

func TestProducer_CloseIsIdempotent(t *testing.T) {
	w := &captureWriter{}
	p := NewProducerWithWriter(w, testutil.NewMockLogger())

	require.NoError(t, p.Close())
	require.NoError(t, p.Close())
	assert.True(t, w.closed)

	err := p.Publish(context.Background(), Message{Topic: TopicFeedback, Value: []byte("x")})
	assert.ErrorIs(t, err, ErrProducerClosed)
}

func TestNewProducer_RequiresBrokers(t *testing.T) {
	_, err := NewProducer(Config{}, testutil.NewMockLogger())
	assert.Error(t, err)
}
