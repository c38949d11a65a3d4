// Package kafka provides the event producer used for annotation feedback
// emission.
package kafka

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/docsight/docsight/internal/infrastructure/monitoring/logging"
	apperrors "github.com/docsight/docsight/pkg/errors"
)

var ErrProducerClosed = apperrors.New(apperrors.ErrCodeInternal, "kafka producer is closed")

// TopicFeedback carries user feedback events on individual annotations.
const TopicFeedback = "docsight.annotation.feedback"

// Message is one event to publish.
type Message struct {
	Topic   string
	Key     []byte
	Value   []byte
	Headers map[string]string
}

// Writer abstracts kafka.Writer so tests can capture published messages.
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Config holds producer settings.
type Config struct {
	Brokers      []string      `mapstructure:"brokers"`
	Acks         string        `mapstructure:"acks"` // none, one, all
	MaxRetries   int           `mapstructure:"max_retries"`
	BatchTimeout time.Duration `mapstructure:"batch_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// Producer publishes events to Kafka.
type Producer struct {
	writer Writer
	logger logging.Logger
	closed atomic.Bool
	sent   atomic.Int64
	failed atomic.Int64
}

// NewProducer creates a producer for the configured brokers.
func NewProducer(cfg Config, log logging.Logger) (*Producer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, apperrors.New(apperrors.ErrCodeValidation, "kafka brokers required")
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	if cfg.BatchTimeout == 0 {
		cfg.BatchTimeout = time.Second
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = 10 * time.Second
	}

	var acks kafka.RequiredAcks
	switch cfg.Acks {
	case "none":
		acks = kafka.RequireNone
	case "all":
		acks = kafka.RequireAll
	default:
		acks = kafka.RequireOne
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Balancer:     &kafka.Hash{},
		MaxAttempts:  cfg.MaxRetries + 1,
		BatchTimeout: cfg.BatchTimeout,
		WriteTimeout: cfg.WriteTimeout,
		RequiredAcks: acks,
	}

	return &Producer{writer: writer, logger: log}, nil
}

// NewProducerWithWriter builds a producer over an existing writer, for tests.
func NewProducerWithWriter(w Writer, log logging.Logger) *Producer {
	return &Producer{writer: w, logger: log}
}

// Publish sends one message synchronously.
func (p *Producer) Publish(ctx context.Context, msg Message) error {
	if p.closed.Load() {
		return ErrProducerClosed
	}
	if msg.Topic == "" {
		return apperrors.New(apperrors.ErrCodeValidation, "topic required")
	}
	if len(msg.Value) == 0 {
		return apperrors.New(apperrors.ErrCodeValidation, "value required")
	}

	headers := make([]kafka.Header, 0, len(msg.Headers))
	for k, v := range msg.Headers {
		headers = append(headers, kafka.Header{Key: k, Value: []byte(v)})
	}

	err := p.writer.WriteMessages(ctx, kafka.Message{
		Topic:   msg.Topic,
		Key:     msg.Key,
		Value:   msg.Value,
		Headers: headers,
		Time:    time.Now(),
	})
	if err != nil {
		p.failed.Add(1)
		return apperrors.Wrap(err, apperrors.ErrCodeExternalService, "kafka publish")
	}
	p.sent.Add(1)
	p.logger.Debug("Message published", logging.String("topic", msg.Topic))
	return nil
}

// Sent reports the number of successfully published messages.
func (p *Producer) Sent() int64 { return p.sent.Load() }

// Failed reports the number of failed publishes.
func (p *Producer) Failed() int64 { return p.failed.Load() }

// Close shuts the producer down.  Idempotent.
func (p *Producer) Close() error {
	if !p.closed.CompareAndSwap(false, true) {
		return nil
	}
	err := p.writer.Close()
	p.logger.Info("Kafka producer closed", logging.Int64("sent", p.sent.Load()))
	return err
}
