// Package feedback records per-annotation user feedback and emits it as
// fire-and-forget events.  Emission failures are logged and counted, never
// retried, and never surfaced to the interaction path.
package feedback

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/docsight/docsight/internal/domain/annotation"
	"github.com/docsight/docsight/internal/infrastructure/messaging/kafka"
	"github.com/docsight/docsight/internal/infrastructure/monitoring/logging"
	"github.com/docsight/docsight/internal/infrastructure/monitoring/prometheus"
	apperrors "github.com/docsight/docsight/pkg/errors"
)

// Type is the feedback polarity.
type Type string

const (
	TypePositive Type = "positive"
	TypeNegative Type = "negative"
)

// IsValid reports whether t is a known polarity.
func (t Type) IsValid() bool {
	return t == TypePositive || t == TypeNegative
}

// Event is the wire envelope published for each feedback action.  Category
// and Message carry the annotation's topic bucket and display text so the
// consumer never has to re-resolve the document.
type Event struct {
	ID           string    `json:"id"`
	DocumentKey  string    `json:"document_key"`
	AnnotationID string    `json:"annotation_id"`
	FeedbackType Type      `json:"feedback_type"`
	Category     string    `json:"category"`
	Message      string    `json:"message"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// Publisher is the transport the emitter publishes through.
type Publisher interface {
	Publish(ctx context.Context, msg kafka.Message) error
}

// Emitter tracks which annotations have received feedback in a session and
// publishes each action.  Feedback is sticky per annotation: giving it
// again replaces the recorded polarity.
type Emitter struct {
	mu        sync.Mutex
	given     map[string]Type
	publisher Publisher
	now       func() time.Time
	logger    logging.Logger
	metrics   *prometheus.Metrics
}

// NewEmitter builds an emitter over publisher.  A nil publisher records
// feedback locally without emitting, which is how the engine runs when no
// broker is configured.
func NewEmitter(publisher Publisher, log logging.Logger, metrics *prometheus.Metrics) *Emitter {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Emitter{
		given:     make(map[string]Type),
		publisher: publisher,
		now:       time.Now,
		logger:    log.Named("feedback"),
		metrics:   metrics,
	}
}

// Emit validates and records feedback for an annotation, then publishes it.
// Validation failures are returned; publish failures are not.
func (e *Emitter) Emit(ctx context.Context, documentKey string, ann annotation.Annotation, typ Type) error {
	if !typ.IsValid() {
		return apperrors.Newf(apperrors.ErrCodeFeedbackTypeInvalid,
			"feedback must be positive or negative, got %q", typ)
	}
	if ann.ID == "" {
		return apperrors.New(apperrors.ErrCodeValidation, "annotation id required")
	}

	e.mu.Lock()
	e.given[ann.ID] = typ
	e.mu.Unlock()

	if e.publisher == nil {
		return nil
	}

	event := Event{
		ID:           uuid.NewString(),
		DocumentKey:  documentKey,
		AnnotationID: ann.ID,
		FeedbackType: typ,
		Category:     string(ann.Category),
		Message:      ann.DisplayText,
		OccurredAt:   e.now(),
	}
	value, err := json.Marshal(event)
	if err != nil {
		e.logger.Error("Feedback event encode failed", logging.Err(err))
		e.count("failed")
		return nil
	}

	err = e.publisher.Publish(ctx, kafka.Message{
		Topic: kafka.TopicFeedback,
		Key:   []byte(documentKey),
		Value: value,
		Headers: map[string]string{
			"content-type": "application/json",
		},
	})
	if err != nil {
		e.logger.Warn("Feedback event publish failed",
			logging.String("annotation_id", ann.ID),
			logging.Err(err),
		)
		e.count("failed")
		return nil
	}
	e.count("emitted")
	return nil
}

// Given returns the recorded polarity for an annotation, if any.
func (e *Emitter) Given(annotationID string) (Type, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	t, ok := e.given[annotationID]
	return t, ok
}

// All returns a copy of the per-annotation feedback map.
func (e *Emitter) All() map[string]Type {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make(map[string]Type, len(e.given))
	for k, v := range e.given {
		out[k] = v
	}
	return out
}

// Reset drops recorded feedback, used when the session switches documents.
func (e *Emitter) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.given = make(map[string]Type)
}

func (e *Emitter) count(result string) {
	if e.metrics != nil {
		e.metrics.FeedbackEventsTotal.WithLabelValues(result).Inc()
	}
}
