package memory

import (
	"context"
	"sync"

	"github.com/connectly/support-api/internal/core/domain"
)

// MessageRepository keeps messages in insertion order.
type MessageRepository struct {
	mu   sync.RWMutex
	msgs []domain.Message
}

func NewMessageRepository() *MessageRepository {
	return &MessageRepository{}
}

func (r *MessageRepository) Create(_ context.Context, msg *domain.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, *msg)
	return nil
}

func (r *MessageRepository) ListByChat(_ context.Context, chatID string) ([]domain.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []domain.Message{}
	for _, m := range r.msgs {
		if m.ChatID == chatID {
			out = append(out, m)
		}
	}
	domain.SortMessages(out)
	return out, nil
}

func (r *MessageRepository) ChatSummaries(_ context.Context) ([]domain.ChatSummary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return domain.SummarizeChats(r.msgs), nil
}
