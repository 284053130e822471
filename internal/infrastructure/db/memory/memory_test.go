package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/connectly/support-api/internal/core/domain"
)

func TestUserRepository_CreateAndFind(t *testing.T) {
	repo := NewUserRepository()
	ctx := context.Background()

	u := &domain.User{ID: "user_1", Email: "a@example.com", Role: domain.RoleAgent, CreatedAt: time.Now()}
	created, err := repo.Create(ctx, u)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	created.Role = domain.RoleAdmin

	byEmail, err := repo.FindByEmail(ctx, "a@example.com")
	if err != nil {
		t.Fatalf("FindByEmail: %v", err)
	}
	if byEmail.Role != domain.RoleAgent {
		t.Fatalf("stored user must not alias the returned copy")
	}
	if _, err := repo.FindByID(ctx, "user_1"); err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if _, err := repo.FindByID(ctx, "user_2"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestUserRepository_ConcurrentCreate(t *testing.T) {
	repo := NewUserRepository()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		success int
	)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, _ := domain.NewUserID(time.Now())
			_, err := repo.Create(context.Background(), &domain.User{
				ID:    id,
				Email: "same@example.com",
			})
			if err == nil {
				mu.Lock()
				success++
				mu.Unlock()
			} else if !errors.Is(err, domain.ErrUserExists) {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if success != 1 {
		t.Fatalf("expected exactly one insert, got %d", success)
	}
	users, _ := repo.List(context.Background())
	if len(users) != 1 {
		t.Fatalf("expected one stored user, got %d", len(users))
	}
}

func TestMessageRepository_ReadSide(t *testing.T) {
	repo := NewMessageRepository()
	ctx := context.Background()

	for _, m := range []domain.Message{
		{ID: "1", ChatID: "A", Message: "a2", Timestamp: "2025-01-01T00:00:02.000Z"},
		{ID: "2", ChatID: "B", Message: "b1", Timestamp: "2025-01-01T00:00:01.000Z"},
		{ID: "3", ChatID: "A", Message: "a1", Timestamp: "2025-01-01T00:00:00.000Z"},
	} {
		m := m
		if err := repo.Create(ctx, &m); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	msgs, _ := repo.ListByChat(ctx, "A")
	if len(msgs) != 2 || msgs[0].Message != "a1" || msgs[1].Message != "a2" {
		t.Fatalf("unexpected messages %+v", msgs)
	}

	summaries, _ := repo.ChatSummaries(ctx)
	if len(summaries) != 2 || summaries[0].ChatID != "A" || summaries[0].Message != "a2" {
		t.Fatalf("unexpected summaries %+v", summaries)
	}

	none, _ := repo.ListByChat(ctx, "missing")
	if none == nil || len(none) != 0 {
		t.Fatalf("expected empty non-nil slice")
	}
}
