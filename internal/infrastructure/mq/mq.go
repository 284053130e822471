// Package mq publishes chat events to a message broker.
package mq

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/connectly/support-api/internal/core/domain"
)

// EventMessageCreated is the type attribute of a stored-message event.
const EventMessageCreated = "chat.message.created"

// Backend defines the broker operations the service needs.
type Backend interface {
	Publish(ctx context.Context, queue string, data []byte, attrs map[string]string) (string, error)
	Close() error
}

// MessagePublisher encodes stored messages and hands them to a Backend.
// It implements ports.MessageEventSink.
type MessagePublisher struct {
	backend Backend
	queue   string
}

func NewMessagePublisher(backend Backend, queue string) *MessagePublisher {
	return &MessagePublisher{backend: backend, queue: queue}
}

// Deliver publishes msg as JSON on the configured queue.
func (p *MessagePublisher) Deliver(ctx context.Context, msg domain.Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode message event: %w", err)
	}
	_, err = p.backend.Publish(ctx, p.queue, body, map[string]string{
		"type":    EventMessageCreated,
		"chat_id": msg.ChatID,
	})
	if err != nil {
		return fmt.Errorf("publish message event: %w", err)
	}
	return nil
}
