package events

import (
	"context"
	"encoding/json"
	"fmt"
	"user-management-service/internal/entity"

	"github.com/segmentio/kafka-go"
)

const (
	TypeCreated = "created"
	TypeUpdated = "updated"
	TypeDeleted = "deleted"
)

// Publisher delivers user change notifications.
type Publisher interface {
	Publish(ctx context.Context, event entity.UserEvent) error
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes one message per event, keyed user.<type>.<id>.
type KafkaPublisher struct {
	writer messageWriter
}

func NewKafkaPublisher(writer *kafka.Writer) *KafkaPublisher {
	return &KafkaPublisher{writer: writer}
}

func (p *KafkaPublisher) Publish(ctx context.Context, event entity.UserEvent) error {
	eventJSON, err := json.Marshal(event)
	if err != nil {
		return err
	}

	// user.created.1 or user.deleted.1
	msg := kafka.Message{
		Key:   []byte(fmt.Sprintf("user.%s.%d", event.Type, event.UserID)),
		Value: eventJSON,
	}

	return p.writer.WriteMessages(ctx, msg)
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// Nop discards every event. Used when no brokers are configured.
type Nop struct{}

func (Nop) Publish(context.Context, entity.UserEvent) error { return nil }
