package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/segmentio/kafka-go"
)

// Producer publishes JSON-encoded storefront activity to one topic. Writes
// are asynchronous: Publish returns once the message is queued and
// delivery failures are only logged.
type Producer struct {
	writer *kafka.Writer
}

func NewProducer(brokers []string, topic string) *Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: 10 * time.Millisecond,
		Async:        true,
		Completion:   logFailedDeliveries,
	}
	return &Producer{writer: writer}
}

func logFailedDeliveries(messages []kafka.Message, err error) {
	if err == nil {
		return
	}
	log.Printf("[Kafka] Failed to deliver %d activity message(s): %v", len(messages), err)
}

// Publish keys the message so all activity of one client lands on the same
// partition and stays ordered.
func (p *Producer) Publish(ctx context.Context, key string, event any) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode activity: %w", err)
	}

	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: data,
		Time:  time.Now(),
	})
}

// Close flushes queued messages
func (p *Producer) Close() error {
	return p.writer.Close()
}
