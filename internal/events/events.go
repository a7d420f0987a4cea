package events

import "sync"

// Board states carried by BoardChangeEvent.
const (
	StateLoading = "loading"
	StateLoaded  = "loaded"
	StateError   = "error"
)

type BoardChangeEvent struct {
	Page  int
	State string
}

type Bus struct {
	mu           sync.Mutex
	closed       bool
	BoardChanges chan BoardChangeEvent
}

func NewBus() *Bus {
	return &Bus{
		BoardChanges: make(chan BoardChangeEvent, 10),
	}
}

// Publish queues ev without blocking. Events are dropped when the buffer is full
// or the bus is closed.
func (b *Bus) Publish(ev BoardChangeEvent) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return false
	}
	select {
	case b.BoardChanges <- ev:
		return true
	default:
		return false
	}
}

// Close ends the stream; consumers ranging over BoardChanges return.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.closed {
		b.closed = true
		close(b.BoardChanges)
	}
}
