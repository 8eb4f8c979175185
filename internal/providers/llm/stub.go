package llm

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/yoockh/isthissoup/internal/models"
)

// Stub is a deterministic, no-network provider for local runs and tests.
//
// With an empty Script it answers from a small built-in verdict table. Err
// fails the call before any chunk; ErrAfter fails it after the whole Script
// has been sent.
type Stub struct {
	Script   []string
	Err      error
	ErrAfter error
	Delay    time.Duration

	mu    sync.Mutex
	calls []models.Prompt
}

func NewStub() *Stub { return &Stub{} }

func (s *Stub) Name() string { return "stub" }

func (s *Stub) Close() error { return nil }

// Calls returns every prompt the stub has been asked to answer.
func (s *Stub) Calls() []models.Prompt {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Prompt, len(s.calls))
	copy(out, s.calls)
	return out
}

func (s *Stub) StreamAnswer(ctx context.Context, p models.Prompt) (<-chan string, <-chan error) {
	s.mu.Lock()
	s.calls = append(s.calls, p)
	s.mu.Unlock()

	out, errs := newStreamChans()

	go func() {
		defer close(out)
		defer close(errs)

		if s.Err != nil {
			errs <- s.Err
			return
		}

		script := s.Script
		if len(script) == 0 {
			script = stubVerdict(p.User)
		}

		for _, chunk := range script {
			if s.Delay > 0 {
				select {
				case <-time.After(s.Delay):
				case <-ctx.Done():
					errs <- ctx.Err()
					return
				}
			}
			if !send(ctx, out, chunk) {
				errs <- ctx.Err()
				return
			}
		}

		if s.ErrAfter != nil {
			errs <- s.ErrAfter
		}
	}()

	return out, errs
}

var stubSoups = map[string]bool{
	"tomato soup":       true,
	"french onion soup": true,
	"minestrone":        true,
	"gazpacho":          true,
	"pho":               true,
	"beef stew":         true,
}

func stubVerdict(user string) []string {
	food := user
	if i := strings.Index(user, "'"); i >= 0 {
		if j := strings.LastIndex(user, "'"); j > i {
			food = user[i+1 : j]
		}
	}
	food = strings.ToLower(strings.TrimSpace(food))

	if stubSoups[food] {
		return []string{"**Yes.**", "\n\n", food + " is mostly liquid ", "and counts as soup. 🥣"}
	}
	return []string{"**No.**", "\n\n", food + " has enough substance ", "to be a proper meal. 🍽️"}
}
