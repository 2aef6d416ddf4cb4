package event

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/shopfront/backend/internal/domain/shared"
	"github.com/shopfront/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

const (
	defaultForwardQueueSize = 256
	defaultForwardTimeout   = 10 * time.Second
)

// ErrForwarderClosed is returned when events arrive after Close
var ErrForwarderClosed = errors.New("kafka forwarder closed")

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaForwarder is a wildcard handler that copies every domain event to a
// Kafka topic, keyed by aggregate id so events of one aggregate stay ordered.
// Handlers only enqueue; a single background goroutine talks to the broker,
// so a slow broker never holds up Publish.
type KafkaForwarder struct {
	writer       messageWriter
	serializer   *EventSerializer
	logger       *zap.Logger
	writeTimeout time.Duration

	mu        sync.RWMutex
	closed    bool
	queue     chan []kafka.Message
	done      chan struct{}
	closeOnce sync.Once
	closeErr  error
}

var (
	_ shared.EventHandler = (*KafkaForwarder)(nil)
	_ BatchHandler        = (*KafkaForwarder)(nil)
)

// NewKafkaForwarder creates a forwarder writing to cfg.KafkaTopic
func NewKafkaForwarder(cfg config.EventsConfig, logger *zap.Logger) *KafkaForwarder {
	w := &kafka.Writer{
		Addr:         kafka.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaTopic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		BatchTimeout: 50 * time.Millisecond,
		WriteTimeout: defaultForwardTimeout,
	}
	return newKafkaForwarder(w, NewEventSerializer(), logger, defaultForwardQueueSize)
}

func newKafkaForwarder(w messageWriter, s *EventSerializer, logger *zap.Logger, queueSize int) *KafkaForwarder {
	f := &KafkaForwarder{
		writer:       w,
		serializer:   s,
		logger:       logger,
		writeTimeout: defaultForwardTimeout,
		queue:        make(chan []kafka.Message, queueSize),
		done:         make(chan struct{}),
	}
	go f.run()
	return f
}

// EventTypes returns nil: the forwarder receives all events
func (f *KafkaForwarder) EventTypes() []string {
	return nil
}

// Handle queues a single event
func (f *KafkaForwarder) Handle(ctx context.Context, event shared.DomainEvent) error {
	return f.HandleBatch(ctx, []shared.DomainEvent{event})
}

// HandleBatch queues events to be written in one WriteMessages call. It
// never waits on the broker: when the queue is full the batch is dropped.
func (f *KafkaForwarder) HandleBatch(_ context.Context, events []shared.DomainEvent) error {
	msgs := make([]kafka.Message, 0, len(events))
	for _, event := range events {
		msg, err := f.message(event)
		if err != nil {
			return err
		}
		msgs = append(msgs, msg)
	}
	if len(msgs) == 0 {
		return nil
	}

	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.closed {
		return ErrForwarderClosed
	}
	select {
	case f.queue <- msgs:
		return nil
	default:
		return fmt.Errorf("kafka forward queue full, dropped %d events", len(msgs))
	}
}

// Close stops accepting events, writes what is already queued and closes
// the writer. If ctx ends first the writer is closed with batches pending.
func (f *KafkaForwarder) Close(ctx context.Context) error {
	f.closeOnce.Do(func() {
		f.mu.Lock()
		f.closed = true
		close(f.queue)
		f.mu.Unlock()

		var drainErr error
		select {
		case <-f.done:
		case <-ctx.Done():
			drainErr = fmt.Errorf("kafka forwarder drain: %w", ctx.Err())
		}
		f.closeErr = errors.Join(drainErr, f.writer.Close())
	})
	return f.closeErr
}

func (f *KafkaForwarder) message(event shared.DomainEvent) (kafka.Message, error) {
	value, err := f.serializer.Marshal(event)
	if err != nil {
		return kafka.Message{}, err
	}
	return kafka.Message{
		Key:   []byte(event.AggregateID().String()),
		Value: value,
		Time:  event.OccurredAt(),
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.EventType())},
			{Key: "event_id", Value: []byte(event.EventID().String())},
		},
	}, nil
}

func (f *KafkaForwarder) run() {
	defer close(f.done)
	for msgs := range f.queue {
		f.write(msgs)
	}
}

func (f *KafkaForwarder) write(msgs []kafka.Message) {
	ctx, cancel := context.WithTimeout(context.Background(), f.writeTimeout)
	defer cancel()

	ids := make([]string, len(msgs))
	for i, msg := range msgs {
		ids[i] = headerValue(msg, "event_id")
	}
	if err := f.writer.WriteMessages(ctx, msgs...); err != nil {
		f.logger.Error("Failed to forward events to kafka",
			zap.Strings("event_ids", ids),
			zap.Error(err),
		)
		return
	}
	f.logger.Debug("Events forwarded to kafka", zap.Strings("event_ids", ids))
}

func headerValue(msg kafka.Message, key string) string {
	for _, h := range msg.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}
