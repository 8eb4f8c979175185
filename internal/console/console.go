package console

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/yoockh/isthissoup/internal/models"
)

// FallbackMessage replaces the answer whenever a submission fails.
const FallbackMessage = "The Soup Oracle is momentarily speechless. Please try again."

// State of the latest submission. Streaming starts with the first chunk, so
// a response with no chunks goes from Submitting straight to Done.
type State int

const (
	Idle State = iota
	Submitting
	Streaming
	Done
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Submitting:
		return "submitting"
	case Streaming:
		return "streaming"
	case Done:
		return "done"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Snapshot is a copy of the console state at one point in time.
type Snapshot struct {
	RequestID uint64
	StreamID  int64
	Query     string
	State     State
	Answer    string
	Err       error
}

func (s Snapshot) Loading() bool { return s.State == Submitting || s.State == Streaming }

// Console holds the answer for the latest submission. A newer submission
// cancels the one in flight; anything still arriving for an older request id
// is dropped.
type Console struct {
	asker    Asker
	onChange func(Snapshot)

	mu     sync.Mutex
	snap   Snapshot
	answer strings.Builder
	cancel context.CancelFunc
}

// New returns an idle console. onChange, if set, is called after every state
// change, outside the lock and from the submission's goroutine.
func New(asker Asker, onChange func(Snapshot)) *Console {
	return &Console{asker: asker, onChange: onChange}
}

func (c *Console) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snap
}

// Submission is one accepted Submit call.
type Submission struct {
	ID   uint64
	done chan struct{}
}

// Done is closed once the submission's read loop has returned.
func (s *Submission) Done() <-chan struct{} { return s.done }

// Submit starts a new request for query. The query is sent as typed; it
// returns nil, and changes nothing, when the trimmed query is empty.
func (c *Console) Submit(ctx context.Context, query string) *Submission {
	if strings.TrimSpace(query) == "" {
		return nil
	}

	ctx, cancel := context.WithCancel(ctx)

	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
	}
	c.cancel = cancel
	c.answer.Reset()
	id := c.snap.RequestID + 1
	c.snap = Snapshot{RequestID: id, Query: query, State: Submitting}
	snap := c.snap
	c.mu.Unlock()

	c.notify(snap)

	sub := &Submission{ID: id, done: make(chan struct{})}
	go func() {
		defer close(sub.done)
		defer cancel()
		c.run(ctx, id, query)
	}()
	return sub
}

// Cancel aborts the submission in flight, if any.
func (c *Console) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

func (c *Console) run(ctx context.Context, id uint64, query string) {
	events, err := c.asker.Ask(ctx, query)
	if err != nil {
		c.fail(id, err)
		return
	}
	defer events.Close()

	var seq int64
	for {
		ev, err := events.Next()
		if errors.Is(err, io.EOF) {
			c.fail(id, errors.New("stream ended without done"))
			return
		}
		if err != nil {
			c.fail(id, err)
			return
		}

		seq++
		if ev.Seq != seq {
			c.fail(id, fmt.Errorf("event out of order: got seq %d, want %d", ev.Seq, seq))
			return
		}

		switch ev.Type {
		case models.EventChunk:
			if !c.appendChunk(id, ev) {
				return
			}
		case models.EventDone:
			c.finish(id)
			return
		case models.EventError:
			c.fail(id, errors.New(ev.Error))
			return
		default:
			c.fail(id, fmt.Errorf("unknown event type %q", ev.Type))
			return
		}
	}
}

// update applies fn to the state of request id. It reports false when id has
// been superseded.
func (c *Console) update(id uint64, fn func()) bool {
	c.mu.Lock()
	if c.snap.RequestID != id {
		c.mu.Unlock()
		return false
	}
	fn()
	snap := c.snap
	c.mu.Unlock()

	c.notify(snap)
	return true
}

func (c *Console) appendChunk(id uint64, ev models.StreamEvent) bool {
	return c.update(id, func() {
		c.answer.WriteString(ev.Text)
		c.snap.Answer = c.answer.String()
		c.snap.StreamID = ev.StreamID
		c.snap.State = Streaming
	})
}

func (c *Console) finish(id uint64) {
	c.update(id, func() {
		c.snap.State = Done
	})
}

func (c *Console) fail(id uint64, err error) {
	c.update(id, func() {
		c.answer.Reset()
		c.snap.Answer = FallbackMessage
		c.snap.State = Failed
		c.snap.Err = err
	})
}

func (c *Console) notify(s Snapshot) {
	if c.onChange != nil {
		c.onChange(s)
	}
}
