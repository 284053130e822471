package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/connectly/support-api/internal/core/domain"
)

type recordingSink struct {
	mu     sync.Mutex
	byChat map[string][]string
	fail   bool
	block  chan struct{}
}

func newRecordingSink() *recordingSink {
	return &recordingSink{byChat: make(map[string][]string)}
}

func (s *recordingSink) Deliver(_ context.Context, msg domain.Message) error {
	if s.block != nil {
		<-s.block
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return errors.New("broker unavailable")
	}
	s.byChat[msg.ChatID] = append(s.byChat[msg.ChatID], msg.ID)
	return nil
}

type countingRecorder struct {
	mu        sync.Mutex
	depth     map[int]int
	dropped   int
	delivered int
	failed    int
}

func newCountingRecorder() *countingRecorder {
	return &countingRecorder{depth: make(map[int]int)}
}

func (r *countingRecorder) EventQueued(worker int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.depth[worker]++
}

func (r *countingRecorder) EventDequeued(worker int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.depth[worker]--
}

func (r *countingRecorder) EventDropped() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dropped++
}

func (r *countingRecorder) EventDelivered(err error, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err != nil {
		r.failed++
		return
	}
	r.delivered++
}

func TestDispatcher_PerChatOrdering(t *testing.T) {
	sink := newRecordingSink()
	d := NewDispatcher(3, sink, nil, zerolog.Nop())
	d.Start(context.Background())

	for i := 0; i < 50; i++ {
		for _, chat := range []string{"A", "B", "C", "D"} {
			d.Enqueue(domain.Message{ID: fmt.Sprintf("%s-%d", chat, i), ChatID: chat})
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := d.Close(ctx); err != nil {
		t.Fatalf("Close: %v", err)
	}

	for _, chat := range []string{"A", "B", "C", "D"} {
		got := sink.byChat[chat]
		if len(got) != 50 {
			t.Fatalf("chat %s: expected 50 events, got %d", chat, len(got))
		}
		for i, id := range got {
			want := fmt.Sprintf("%s-%d", chat, i)
			if id != want {
				t.Fatalf("chat %s: event %d out of order: got %s want %s", chat, i, id, want)
			}
		}
	}
}

func TestDispatcher_ShardIndexIsStable(t *testing.T) {
	d := NewDispatcher(8, newRecordingSink(), nil, zerolog.Nop())
	first := d.shardIndex("chat-42")
	for i := 0; i < 10; i++ {
		if got := d.shardIndex("chat-42"); got != first {
			t.Fatalf("shard changed from %d to %d", first, got)
		}
	}
}

func TestDispatcher_EnqueueNeverBlocks(t *testing.T) {
	sink := newRecordingSink()
	sink.block = make(chan struct{})
	d := NewDispatcher(1, sink, nil, zerolog.Nop())
	d.Start(context.Background())

	done := make(chan struct{})
	go func() {
		for i := 0; i < channelBuffer*2; i++ {
			d.Enqueue(domain.Message{ID: "m", ChatID: "A"})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("Enqueue blocked on a full shard")
	}

	close(sink.block)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := d.Close(ctx); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestDispatcher_DeliveryFailureIsContained(t *testing.T) {
	sink := newRecordingSink()
	sink.fail = true
	d := NewDispatcher(2, sink, nil, zerolog.Nop())
	d.Start(context.Background())

	d.Enqueue(domain.Message{ID: "m1", ChatID: "A"})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := d.Close(ctx); err != nil {
		t.Fatalf("Close: %v", err)
	}
	// Enqueue after Close must not panic.
	d.Enqueue(domain.Message{ID: "m2", ChatID: "A"})
}

func TestDispatcher_RecordsOutcomes(t *testing.T) {
	sink := newRecordingSink()
	sink.block = make(chan struct{})
	rec := newCountingRecorder()
	d := NewDispatcher(1, sink, rec, zerolog.Nop())
	d.Start(context.Background())

	total := channelBuffer * 2
	for i := 0; i < total; i++ {
		d.Enqueue(domain.Message{ID: fmt.Sprintf("m-%d", i), ChatID: "A"})
	}

	close(sink.block)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := d.Close(ctx); err != nil {
		t.Fatalf("Close: %v", err)
	}
	d.Enqueue(domain.Message{ID: "late", ChatID: "A"})

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if rec.dropped == 0 {
		t.Fatalf("expected drops on a full shard")
	}
	if rec.delivered+rec.dropped != total+1 {
		t.Fatalf("every event must be delivered or dropped: delivered=%d dropped=%d", rec.delivered, rec.dropped)
	}
	if rec.depth[0] != 0 {
		t.Fatalf("queue depth must return to zero, got %d", rec.depth[0])
	}
}

func TestDispatcher_RecordsFailures(t *testing.T) {
	sink := newRecordingSink()
	sink.fail = true
	rec := newCountingRecorder()
	d := NewDispatcher(2, sink, rec, zerolog.Nop())
	d.Start(context.Background())

	d.Enqueue(domain.Message{ID: "m1", ChatID: "A"})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := d.Close(ctx); err != nil {
		t.Fatalf("Close: %v", err)
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if rec.failed != 1 || rec.delivered != 0 {
		t.Fatalf("expected one failed delivery, got failed=%d delivered=%d", rec.failed, rec.delivered)
	}
}
