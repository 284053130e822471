package ports

import (
	"context"

	"github.com/connectly/support-api/internal/core/domain"
)

// SendMessageInput is the payload of a new chat message.
type SendMessageInput struct {
	ChatID       string
	CustomerName string
	Message      string
}

type ChatService interface {
	ListChats(ctx context.Context) ([]domain.ChatSummary, error)
	ListMessages(ctx context.Context, chatID string) ([]domain.Message, error)
	SendMessage(ctx context.Context, input SendMessageInput) (*domain.Message, error)
}

// MessageNotifier is told about every stored message. Enqueue must not block.
type MessageNotifier interface {
	Enqueue(msg domain.Message)
}

// MessageEventSink delivers a stored message to downstream consumers.
type MessageEventSink interface {
	Deliver(ctx context.Context, msg domain.Message) error
}
