package submission

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/twmb/franz-go/pkg/kgo"

	"onboarding/internal/form/models"
	"onboarding/pkg/platform/circuit"
	"onboarding/pkg/platform/sentinel"
)

// Producer is the part of *kgo.Client the publisher uses.
type Producer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
}

// KafkaPublisher publishes each submission as one record keyed by form ID,
// so all events of a form land on the same partition. Delivery is synchronous:
// Submit returns only after the broker acknowledged the record.
type KafkaPublisher struct {
	producer Producer
	topic    string
	breaker  *circuit.Breaker
	logger   *slog.Logger
}

// Option configures a KafkaPublisher.
type Option func(*KafkaPublisher)

func WithLogger(logger *slog.Logger) Option {
	return func(p *KafkaPublisher) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithBreaker replaces the default circuit breaker.
func WithBreaker(b *circuit.Breaker) Option {
	return func(p *KafkaPublisher) {
		if b != nil {
			p.breaker = b
		}
	}
}

func NewKafkaPublisher(producer Producer, topic string, opts ...Option) *KafkaPublisher {
	p := &KafkaPublisher{
		producer: producer,
		topic:    topic,
		breaker:  circuit.New("submission-kafka"),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Submit publishes rec. While the breaker is open it fails fast with
// sentinel.ErrUnavailable.
func (p *KafkaPublisher) Submit(ctx context.Context, rec models.Record) error {
	if !p.breaker.Allow() {
		return fmt.Errorf("submission transport open: %w", sentinel.ErrUnavailable)
	}

	event := NewEvent(rec)
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal submission: %w", err)
	}
	record := &kgo.Record{
		Topic: p.topic,
		Key:   []byte(rec.FormID.String()),
		Value: payload,
		Headers: []kgo.RecordHeader{
			{Key: "event-type", Value: []byte(EventType)},
			{Key: "event-id", Value: []byte(event.ID.String())},
			{Key: "content-type", Value: []byte("application/json")},
		},
	}

	if err := p.producer.ProduceSync(ctx, record).FirstErr(); err != nil {
		if _, change := p.breaker.RecordFailure(); change.Opened {
			p.logger.WarnContext(ctx, "submission circuit opened", "breaker", p.breaker.Name())
		}
		return fmt.Errorf("produce submission: %w", errors.Join(sentinel.ErrUnavailable, err))
	}
	if _, change := p.breaker.RecordSuccess(); change.Closed {
		p.logger.InfoContext(ctx, "submission circuit closed", "breaker", p.breaker.Name())
	}
	p.logger.DebugContext(ctx, "submission published",
		"form_id", rec.FormID,
		"event_id", event.ID,
		"topic", p.topic,
	)
	return nil
}
