package adapters

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"cargo-tracker/internal/features/notifications/domain"

	"github.com/segmentio/kafka-go"
)

// MessageWriter is the part of *kafka.Writer the sender uses.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaSender publishes notification events to a Kafka topic, keyed by container id so every
// event of one container lands on the same partition in ledger order.
type KafkaSender struct {
	writer MessageWriter
	topic  string
}

// NewKafkaSender creates a sender with its own writer.
func NewKafkaSender(brokers []string, topic string) *KafkaSender {
	return NewKafkaSenderWithWriter(&kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafka.RequireAll,
	}, topic)
}

// NewKafkaSenderWithWriter wraps an existing writer.
func NewKafkaSenderWithWriter(writer MessageWriter, topic string) *KafkaSender {
	return &KafkaSender{writer: writer, topic: topic}
}

// Name implements ports.Sender.
func (s *KafkaSender) Name() string {
	return "kafka"
}

// Send writes the event as a binary-mode CloudEvent.
func (s *KafkaSender) Send(ctx context.Context, event domain.CloudEvent) error {
	data, err := json.Marshal(event.Data)
	if err != nil {
		return fmt.Errorf("failed to marshal notification %s: %w", event.ID, err)
	}

	msg := kafka.Message{
		Key:   []byte(event.Subject),
		Value: data,
		Time:  event.Time,
	}
	for key, value := range event.Headers() {
		msg.Headers = append(msg.Headers, kafka.Header{Key: key, Value: []byte(value)})
	}

	if err := s.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish notification %s to topic %s: %w", event.ID, s.topic, err)
	}
	return nil
}

// Close flushes and closes the writer.
func (s *KafkaSender) Close() error {
	return s.writer.Close()
}
