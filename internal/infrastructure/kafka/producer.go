package kafka

import (
	"context"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer hands messages to a single writer goroutine through a bounded
// inbox. Publish never blocks; a full inbox drops the message.
type Producer struct {
	w       MessageWriter
	inbox   chan kafka.Message
	closeCh chan struct{}
	logger  *zap.Logger

	mu     sync.RWMutex
	closed bool
}

func NewProducer(brokers []string, topic string, buf int, logger *zap.Logger) *Producer {
	return NewProducerWithWriter(&kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		WriteTimeout: 10 * time.Second,
	}, buf, logger)
}

func NewProducerWithWriter(w MessageWriter, buf int, logger *zap.Logger) *Producer {
	if buf < 1 {
		buf = 1
	}
	return &Producer{
		w:       w,
		inbox:   make(chan kafka.Message, buf),
		closeCh: make(chan struct{}),
		logger:  logger,
	}
}

func (p *Producer) Start() {
	go func() {
		defer close(p.closeCh)
		for m := range p.inbox {
			if err := p.w.WriteMessages(context.Background(), m); err != nil {
				p.logger.Error("kafka write failed", zap.ByteString("key", m.Key), zap.Error(err))
			}
		}
		if err := p.w.Close(); err != nil {
			p.logger.Error("kafka writer close failed", zap.Error(err))
		}
	}()
}

func (p *Producer) Publish(key, value []byte, headers ...kafka.Header) bool {
	msg := kafka.Message{
		Key:     key,
		Value:   value,
		Time:    time.Now(),
		Headers: headers,
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		p.logger.Warn("kafka producer closed, dropping message", zap.ByteString("key", key))
		return false
	}
	select {
	case p.inbox <- msg:
		return true
	default:
		p.logger.Warn("kafka inbox full, dropping message", zap.ByteString("key", key))
		return false
	}
}

// Close stops accepting messages and waits for the inbox to drain or ctx to
// expire. Calling it more than once only waits again.
func (p *Producer) Close(ctx context.Context) error {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.inbox)
	}
	p.mu.Unlock()

	select {
	case <-p.closeCh:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
