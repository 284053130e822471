package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/connectly/support-api/internal/core/domain"
	"github.com/connectly/support-api/internal/core/ports"
)

type ChatService struct {
	repo     ports.MessageRepository
	notifier ports.MessageNotifier
	logger   zerolog.Logger
	now      func() time.Time
	newID    func() string
}

// NewChatService returns a ChatService. notifier may be nil when no
// downstream consumer is configured.
func NewChatService(repo ports.MessageRepository, notifier ports.MessageNotifier, logger zerolog.Logger) *ChatService {
	return &ChatService{
		repo:     repo,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// ListChats returns the latest message of every chat, newest chat first.
func (s *ChatService) ListChats(ctx context.Context) ([]domain.ChatSummary, error) {
	summaries, err := s.repo.ChatSummaries(ctx)
	if err != nil {
		return nil, fmt.Errorf("list chats: %w", err)
	}
	if summaries == nil {
		summaries = []domain.ChatSummary{}
	}
	domain.SortSummaries(summaries)
	return summaries, nil
}

// ListMessages returns a chat's messages oldest first. An unknown chat is an
// empty list, not an error.
func (s *ChatService) ListMessages(ctx context.Context, chatID string) ([]domain.Message, error) {
	msgs, err := s.repo.ListByChat(ctx, chatID)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	if msgs == nil {
		msgs = []domain.Message{}
	}
	domain.SortMessages(msgs)
	return msgs, nil
}

// SendMessage stores a new message stamped with the current time. The chat id
// is kept byte for byte so ListMessages finds it under the same key.
func (s *ChatService) SendMessage(ctx context.Context, in ports.SendMessageInput) (*domain.Message, error) {
	chatID := in.ChatID
	customerName := strings.TrimSpace(in.CustomerName)
	text := strings.TrimSpace(in.Message)

	if chatID == "" {
		return nil, domain.NewValidationError("chatId", "chatId is required")
	}
	if customerName == "" || text == "" {
		return nil, domain.NewValidationError("", "Customer name and message are required")
	}

	msg := domain.Message{
		ID:           s.newID(),
		ChatID:       chatID,
		CustomerName: customerName,
		Message:      text,
		Timestamp:    domain.FormatTimestamp(s.now()),
	}

	if err := s.repo.Create(ctx, &msg); err != nil {
		s.logger.Error().Err(err).Str("chat_id", chatID).Msg("failed to store message")
		return nil, fmt.Errorf("send message: %w", err)
	}

	if s.notifier != nil {
		s.notifier.Enqueue(msg)
	}

	s.logger.Info().Str("chat_id", chatID).Str("message_id", msg.ID).Msg("message stored")
	return &msg, nil
}
