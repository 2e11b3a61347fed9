package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"
	"user-management-service/internal/entity"

	"github.com/segmentio/kafka-go"
)

type mockWriter struct {
	messages []kafka.Message
	err      error
	closed   bool
}

func (m *mockWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if m.err != nil {
		return m.err
	}
	m.messages = append(m.messages, msgs...)
	return nil
}

func (m *mockWriter) Close() error {
	m.closed = true
	return nil
}

func TestKafkaPublisher_Publish(t *testing.T) {
	writer := &mockWriter{}
	publisher := &KafkaPublisher{writer: writer}

	event := entity.UserEvent{
		Type:       TypeUpdated,
		UserID:     42,
		Fields:     []string{"email", "password_hash"},
		OccurredAt: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	if err := publisher.Publish(context.Background(), event); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	if len(writer.messages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(writer.messages))
	}
	msg := writer.messages[0]
	if string(msg.Key) != "user.updated.42" {
		t.Errorf("key = %s, want user.updated.42", msg.Key)
	}

	var decoded entity.UserEvent
	if err := json.Unmarshal(msg.Value, &decoded); err != nil {
		t.Fatalf("failed to decode message: %v", err)
	}
	if decoded.UserID != 42 || decoded.Type != TypeUpdated {
		t.Errorf("decoded event = %+v", decoded)
	}
	if len(decoded.Fields) != 2 {
		t.Errorf("expected 2 fields, got %v", decoded.Fields)
	}
}

func TestKafkaPublisher_PublishError(t *testing.T) {
	writer := &mockWriter{err: errors.New("broker down")}
	publisher := &KafkaPublisher{writer: writer}

	err := publisher.Publish(context.Background(), entity.UserEvent{Type: TypeCreated, UserID: 1})
	if err == nil || err.Error() != "broker down" {
		t.Errorf("expected broker error, got %v", err)
	}
}

func TestKafkaPublisher_Close(t *testing.T) {
	writer := &mockWriter{}
	publisher := &KafkaPublisher{writer: writer}

	if err := publisher.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if !writer.closed {
		t.Error("expected writer to be closed")
	}
}

func TestNop_Publish(t *testing.T) {
	if err := (Nop{}).Publish(context.Background(), entity.UserEvent{}); err != nil {
		t.Errorf("Nop.Publish() error = %v", err)
	}
}
