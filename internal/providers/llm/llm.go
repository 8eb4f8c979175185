package llm

import (
	"context"

	"github.com/yoockh/isthissoup/internal/models"
)

// Provider is the minimal streaming-completion contract the gateway needs.
//
// StreamAnswer returns a stream of text chunks (incremental) in provider
// order. The chunks channel is closed when generation ends. A failure is
// delivered on errs (buffered, at most one value) before chunks is closed, so
// a reader that drains chunks can then poll errs without blocking.
type Provider interface {
	StreamAnswer(ctx context.Context, prompt models.Prompt) (chunks <-chan string, errs <-chan error)
	Name() string
	Close() error
}

// send delivers s unless ctx is done first.
func send(ctx context.Context, out chan<- string, s string) bool {
	select {
	case out <- s:
		return true
	case <-ctx.Done():
		return false
	}
}

func newStreamChans() (chan string, chan error) {
	return make(chan string, 32), make(chan error, 1)
}

// Unavailable stands in for a provider that could not be constructed (for
// example a missing API key). Every call fails before its first chunk, so the
// gateway keeps serving and answers each ask with a server error.
type Unavailable struct {
	Err error
}

func (u Unavailable) Name() string { return "unavailable" }

func (u Unavailable) Close() error { return nil }

func (u Unavailable) StreamAnswer(context.Context, models.Prompt) (<-chan string, <-chan error) {
	out, errs := newStreamChans()
	errs <- u.Err
	close(errs)
	close(out)
	return out, errs
}
