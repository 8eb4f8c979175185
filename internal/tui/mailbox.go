package tui

import (
	"sync"

	"github.com/yoockh/isthissoup/internal/console"
)

// mailbox holds the newest console snapshot. put never blocks, so the console
// may call it from the update loop (Submit) as well as from stream goroutines.
// Intermediate snapshots are coalesced; each one carries the full state.
type mailbox struct {
	mu     sync.Mutex
	latest console.Snapshot
	full   bool
	ready  chan struct{}
}

func newMailbox() *mailbox {
	return &mailbox{ready: make(chan struct{}, 1)}
}

func (b *mailbox) put(s console.Snapshot) {
	b.mu.Lock()
	// a late snapshot of a superseded request must not displace a newer one
	if !b.full || s.RequestID >= b.latest.RequestID {
		b.latest = s
		b.full = true
	}
	b.mu.Unlock()

	select {
	case b.ready <- struct{}{}:
	default:
	}
}

// take waits for a snapshot and empties the box.
func (b *mailbox) take() console.Snapshot {
	for {
		<-b.ready
		b.mu.Lock()
		if b.full {
			s := b.latest
			b.full = false
			b.mu.Unlock()
			return s
		}
		b.mu.Unlock()
	}
}
