package queue

import (
	"context"
	"hash/fnv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/connectly/support-api/internal/core/domain"
	"github.com/connectly/support-api/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
	deliverTimeout = 5 * time.Second
)

// Recorder receives dispatcher measurements. worker is the shard index.
type Recorder interface {
	EventQueued(worker int)
	EventDequeued(worker int)
	EventDropped()
	EventDelivered(err error, elapsed time.Duration)
}

type nopRecorder struct{}

func (nopRecorder) EventQueued(int)                     {}
func (nopRecorder) EventDequeued(int)                   {}
func (nopRecorder) EventDropped()                       {}
func (nopRecorder) EventDelivered(error, time.Duration) {}

// Dispatcher routes stored messages to a fixed set of workers using
// consistent hashing on the chat id, so events of one chat are delivered in
// order. It implements ports.MessageNotifier.
type Dispatcher struct {
	workers []chan domain.Message
	sink    ports.MessageEventSink
	rec     Recorder
	log     zerolog.Logger

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used. rec may be nil.
func NewDispatcher(numWorkers int, sink ports.MessageEventSink, rec Recorder, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	if rec == nil {
		rec = nopRecorder{}
	}
	d := &Dispatcher{
		workers: make([]chan domain.Message, numWorkers),
		sink:    sink,
		rec:     rec,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.Message, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Cancelling ctx does not abort
// pending deliveries; call Close to drain and stop.
func (d *Dispatcher) Start(ctx context.Context) {
	base := context.WithoutCancel(ctx)
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(base, i, ch)
	}
}

// Enqueue hands msg to the worker responsible for its chat. It never blocks:
// when that worker's buffer is full, or the dispatcher is closed, the event
// is dropped.
func (d *Dispatcher) Enqueue(msg domain.Message) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		d.rec.EventDropped()
		return
	}

	idx := d.shardIndex(msg.ChatID)
	select {
	case d.workers[idx] <- msg:
		d.rec.EventQueued(idx)
	default:
		d.rec.EventDropped()
		d.log.Warn().
			Str("chat_id", msg.ChatID).
			Str("message_id", msg.ID).
			Int("worker_id", idx).
			Msg("event queue full, dropping chat event")
	}
}

// Close stops accepting events and waits until every queued event has been
// delivered or ctx expires.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		for _, ch := range d.workers {
			close(ch)
		}
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// shardIndex maps a chat id deterministically to a worker index.
func (d *Dispatcher) shardIndex(chatID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(chatID))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.Message) {
	defer d.wg.Done()

	for msg := range ch {
		d.rec.EventDequeued(id)

		start := time.Now()
		deliverCtx, cancel := context.WithTimeout(ctx, deliverTimeout)
		err := d.sink.Deliver(deliverCtx, msg)
		cancel()

		d.rec.EventDelivered(err, time.Since(start))
		if err != nil {
			d.log.Error().Err(err).
				Str("chat_id", msg.ChatID).
				Str("message_id", msg.ID).
				Int("worker_id", id).
				Msg("chat event delivery failed")
		}
	}
}
