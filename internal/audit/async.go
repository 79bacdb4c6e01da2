package audit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

const writeTimeout = 5 * time.Second

// AsyncLogger queues entries and writes them to a Store from a single
// worker goroutine. A full queue drops the entry.
type AsyncLogger struct {
	store Store
	queue chan Entry
	done  chan struct{}
	now   func() time.Time

	mu     sync.RWMutex
	closed bool
}

func NewAsyncLogger(store Store, buffer int) *AsyncLogger {
	if buffer <= 0 {
		buffer = 1
	}
	l := &AsyncLogger{
		store: store,
		queue: make(chan Entry, buffer),
		done:  make(chan struct{}),
		now:   time.Now,
	}
	go l.run()
	return l
}

func (l *AsyncLogger) LogAction(e Entry) {
	if e.Timestamp.IsZero() {
		e.Timestamp = l.now().UTC()
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.closed {
		return
	}
	select {
	case l.queue <- e:
	default:
		log.Warn().Str("module", "audit").Str("action", string(e.Action)).Msg("audit queue full, entry dropped")
	}
}

func (l *AsyncLogger) run() {
	defer close(l.done)
	for e := range l.queue {
		l.write(e)
	}
}

func (l *AsyncLogger) write(e Entry) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Str("module", "audit").Interface("panic", r).Msg("audit store panicked")
		}
	}()
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	if err := l.store.Insert(ctx, e); err != nil {
		log.Error().Err(err).Str("module", "audit").Str("action", string(e.Action)).Str("room_id", e.RoomID).Msg("audit write failed")
	}
}

// Close stops accepting entries, flushes the queue and closes the store.
func (l *AsyncLogger) Close() error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return nil
	}
	l.closed = true
	close(l.queue)
	l.mu.Unlock()

	<-l.done
	if err := l.store.Close(); err != nil {
		return fmt.Errorf("audit: closing store: %w", err)
	}
	return nil
}
