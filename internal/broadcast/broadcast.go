package broadcast

import (
	"darkdungeon/internal/events"
	"sync"
)

type HxEventMessage struct {
	Event string
	Msg   string
}

type Broadcaster struct {
	Mu      sync.Mutex
	Clients map[chan HxEventMessage]bool
}

// NewBroadcaster forwards board changes from bus to subscribers until bus is closed.
func NewBroadcaster(bus *events.Bus) *Broadcaster {
	b := &Broadcaster{
		Clients: make(map[chan HxEventMessage]bool),
	}
	go func() {
		for ev := range bus.BoardChanges {
			b.BroadcastOOB("boardChange", ev.State)
		}
	}()
	return b
}

func (b *Broadcaster) Subscribe() chan HxEventMessage {
	ch := make(chan HxEventMessage, 10)
	b.Mu.Lock()
	b.Clients[ch] = true
	b.Mu.Unlock()
	return ch
}

func (b *Broadcaster) Unsubscribe(ch chan HxEventMessage) {
	b.Mu.Lock()
	defer b.Mu.Unlock()
	if b.Clients[ch] {
		delete(b.Clients, ch)
		close(ch)
	}
}

// CloseAll unsubscribes every client, ending their event streams.
func (b *Broadcaster) CloseAll() {
	b.Mu.Lock()
	defer b.Mu.Unlock()
	for ch := range b.Clients {
		delete(b.Clients, ch)
		close(ch)
	}
}

func (b *Broadcaster) BroadcastOOB(event string, message string) {
	b.Mu.Lock()
	defer b.Mu.Unlock()
	for ch := range b.Clients {
		select {
		case ch <- HxEventMessage{Event: event, Msg: message}:
		default:
			// skip clients with full data channels
		}
	}
}
