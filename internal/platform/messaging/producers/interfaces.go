package producers

import (
	"context"

	"github.com/segmentio/kafka-go"
)

// MessagePublisher publishes expense request messages to their primary topic.
// The value is marshaled to JSON by the implementation.
type MessagePublisher interface {
	Publish(ctx context.Context, key string, value interface{}) error
	Close() error
}

// DeadLetterPublisher routes unprocessable messages to the dead letter topic,
// preserving the original payload alongside the failure reason.
type DeadLetterPublisher interface {
	PublishToDLQ(ctx context.Context, key string, originalMessageValue []byte, reason string) error
	Close() error
}

// KafkaWriter wraps kafka.Writer methods for testing
type KafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}
