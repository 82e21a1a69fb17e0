package events

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

var ErrBusClosed = errors.New("event bus closed")

// MemoryBus delivers events to in-process handlers on background workers.
// Publish never blocks on handler work; it fails only when the buffer is full
// or the bus is closed.
type MemoryBus struct {
	log      *zap.Logger
	queue    chan Event
	mu       sync.RWMutex
	handlers []Handler
	closed   bool
	wg       sync.WaitGroup
	timeout  time.Duration
}

func NewMemoryBus(log *zap.Logger, buffer, workers int) *MemoryBus {
	if log == nil {
		log = zap.NewNop()
	}
	if buffer <= 0 {
		buffer = 256
	}
	if workers <= 0 {
		workers = 2
	}
	b := &MemoryBus{
		log:     log,
		queue:   make(chan Event, buffer),
		timeout: 30 * time.Second,
	}
	for i := 0; i < workers; i++ {
		b.wg.Add(1)
		go b.run()
	}
	return b
}

func (b *MemoryBus) Subscribe(h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = append(b.handlers, h)
}

func (b *MemoryBus) Publish(_ context.Context, e Event) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return ErrBusClosed
	}
	select {
	case b.queue <- e:
		return nil
	default:
		return errors.New("event bus buffer full")
	}
}

func (b *MemoryBus) run() {
	defer b.wg.Done()
	for e := range b.queue {
		b.dispatch(e)
	}
}

func (b *MemoryBus) dispatch(e Event) {
	b.mu.RLock()
	handlers := append([]Handler(nil), b.handlers...)
	b.mu.RUnlock()

	for _, h := range handlers {
		ctx, cancel := context.WithTimeout(context.Background(), b.timeout)
		func() {
			defer func() {
				if r := recover(); r != nil {
					b.log.Error("event handler panic", zap.String("event", e.Name), zap.Any("panic", r))
				}
			}()
			if err := h(ctx, e); err != nil {
				b.log.Warn("event handler failed",
					zap.String("event", e.Name),
					zap.String("event_id", e.ID),
					zap.Error(err))
			}
		}()
		cancel()
	}
}

// Close stops accepting events and waits until queued ones are handled.
func (b *MemoryBus) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	close(b.queue)
	b.mu.Unlock()

	b.wg.Wait()
	return nil
}
