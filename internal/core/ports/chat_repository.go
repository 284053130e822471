package ports

import (
	"context"

	"github.com/connectly/support-api/internal/core/domain"
)

// MessageRepository persists messages and answers the two chat queries.
// Implementations may scan and reduce in memory or use an index; callers
// only rely on the results.
type MessageRepository interface {
	Create(ctx context.Context, msg *domain.Message) error
	// ListByChat returns the messages of one chat in ascending timestamp order.
	ListByChat(ctx context.Context, chatID string) ([]domain.Message, error)
	// ChatSummaries returns the latest message of every chat.
	ChatSummaries(ctx context.Context) ([]domain.ChatSummary, error)
}
