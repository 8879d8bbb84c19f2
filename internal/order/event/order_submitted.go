package event

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"astryxnodes/internal/domain"
)

const (
	EventOrderSubmitted = "OrderSubmitted"
	eventVersion        = 1
)

type Envelope struct {
	EventID      string          `json:"event_id"`
	EventType    string          `json:"event_type"`
	EventVersion int             `json:"event_version"`
	OccurredAt   time.Time       `json:"occurred_at"`
	Producer     string          `json:"producer"`
	TraceID      string          `json:"trace_id,omitempty"`
	Payload      json.RawMessage `json:"payload"`
}

type MessagePublisher interface {
	Publish(key, value []byte, headers ...kafka.Header) bool
}

type Publisher struct {
	messages MessagePublisher
	service  string
	logger   *zap.Logger
}

func NewPublisher(messages MessagePublisher, service string, logger *zap.Logger) *Publisher {
	return &Publisher{
		messages: messages,
		service:  service,
		logger:   logger,
	}
}

func (p *Publisher) OrderSubmitted(ctx context.Context, traceID string, order domain.Order) {
	payload, err := json.Marshal(order)
	if err != nil {
		p.logger.Error("encoding order event payload", zap.String("orderNumber", order.OrderNumber), zap.Error(err))
		return
	}

	value, err := json.Marshal(Envelope{
		EventID:      uuid.NewString(),
		EventType:    EventOrderSubmitted,
		EventVersion: eventVersion,
		OccurredAt:   time.Now().UTC(),
		Producer:     p.service,
		TraceID:      traceID,
		Payload:      payload,
	})
	if err != nil {
		p.logger.Error("encoding order event", zap.String("orderNumber", order.OrderNumber), zap.Error(err))
		return
	}

	p.messages.Publish([]byte(order.OrderNumber), value,
		kafka.Header{Key: "x-event-type", Value: []byte(EventOrderSubmitted)},
		kafka.Header{Key: "x-event-version", Value: []byte("1")},
	)
}

// NopPublisher is used when no Kafka brokers are configured.
type NopPublisher struct{}

func (NopPublisher) OrderSubmitted(context.Context, string, domain.Order) {}
