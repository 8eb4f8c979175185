package console

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yoockh/isthissoup/internal/models"
)

// chanEvents replays whatever the test pushes into ch; a closed ch reads as
// the end of the body.
type chanEvents struct {
	ch <-chan models.StreamEvent
}

func (e *chanEvents) Next() (models.StreamEvent, error) {
	ev, ok := <-e.ch
	if !ok {
		return models.StreamEvent{}, io.EOF
	}
	return ev, nil
}

func (e *chanEvents) Close() error { return nil }

type fakeAsker struct {
	mu      sync.Mutex
	queries []string
	ctxs    []context.Context
	streams []chan models.StreamEvent
	err     error
}

func (f *fakeAsker) Ask(ctx context.Context, query string) (Events, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, query)
	f.ctxs = append(f.ctxs, ctx)
	if f.err != nil {
		return nil, f.err
	}
	ch := f.streams[len(f.queries)-1]
	return &chanEvents{ch: ch}, nil
}

func scripted(events ...models.StreamEvent) chan models.StreamEvent {
	ch := make(chan models.StreamEvent, len(events))
	for _, ev := range events {
		ch <- ev
	}
	close(ch)
	return ch
}

func chunk(seq int64, text string) models.StreamEvent {
	return models.StreamEvent{Type: models.EventChunk, StreamID: 1, Seq: seq, Text: text}
}

func terminal(typ string, seq int64) models.StreamEvent {
	ev := models.StreamEvent{Type: typ, StreamID: 1, Seq: seq}
	if typ == models.EventError {
		ev.Error = "boom"
	}
	return ev
}

type recorder struct {
	mu    sync.Mutex
	snaps []Snapshot
}

func (r *recorder) record(s Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snaps = append(r.snaps, s)
}

func (r *recorder) all() []Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Snapshot(nil), r.snaps...)
}

func wait(t *testing.T, s *Submission) {
	t.Helper()
	require.NotNil(t, s)
	select {
	case <-s.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("submission did not finish")
	}
}

func TestSubmit_ConcatenatesInOrder(t *testing.T) {
	asker := &fakeAsker{streams: []chan models.StreamEvent{scripted(
		chunk(1, "**No.**"),
		chunk(2, "\n\nRamen has"),
		chunk(3, " substantial noodles..."),
		terminal(models.EventDone, 4),
	)}}
	rec := &recorder{}
	c := New(asker, rec.record)

	wait(t, c.Submit(context.Background(), "  ramen "))

	snap := c.Snapshot()
	assert.Equal(t, Done, snap.State)
	assert.False(t, snap.Loading())
	assert.Equal(t, "**No.**\n\nRamen has substantial noodles...", snap.Answer)
	assert.Equal(t, []string{"  ramen "}, asker.queries)

	var answers []string
	for _, s := range rec.all() {
		if s.State == Streaming {
			answers = append(answers, s.Answer)
		}
	}
	assert.Equal(t, []string{
		"**No.**",
		"**No.**\n\nRamen has",
		"**No.**\n\nRamen has substantial noodles...",
	}, answers)
	assert.Equal(t, Submitting, rec.all()[0].State)
}

func TestSubmit_EmptyQueryIsIgnored(t *testing.T) {
	asker := &fakeAsker{}
	c := New(asker, nil)

	assert.Nil(t, c.Submit(context.Background(), "   "))
	assert.Equal(t, Idle, c.Snapshot().State)
	assert.Empty(t, asker.queries)
}

func TestSubmit_TransportErrorFallsBack(t *testing.T) {
	c := New(&fakeAsker{err: &StatusError{StatusCode: 500, Message: "Failed to process your soup question"}}, nil)

	wait(t, c.Submit(context.Background(), "gazpacho"))

	snap := c.Snapshot()
	assert.Equal(t, Failed, snap.State)
	assert.False(t, snap.Loading())
	assert.Equal(t, FallbackMessage, snap.Answer)

	var se *StatusError
	require.ErrorAs(t, snap.Err, &se)
	assert.Equal(t, 500, se.StatusCode)
}

func TestSubmit_ErrorEventReplacesPartialAnswer(t *testing.T) {
	c := New(&fakeAsker{streams: []chan models.StreamEvent{scripted(
		chunk(1, "**No.**"),
		terminal(models.EventError, 2),
	)}}, nil)

	wait(t, c.Submit(context.Background(), "cereal"))

	snap := c.Snapshot()
	assert.Equal(t, Failed, snap.State)
	assert.Equal(t, FallbackMessage, snap.Answer)
	assert.EqualError(t, snap.Err, "boom")
}

func TestSubmit_TruncatedStreamFails(t *testing.T) {
	c := New(&fakeAsker{streams: []chan models.StreamEvent{scripted(
		chunk(1, "**Yes.**"),
		chunk(2, " Pho is"),
	)}}, nil)

	wait(t, c.Submit(context.Background(), "pho"))

	snap := c.Snapshot()
	assert.Equal(t, Failed, snap.State)
	assert.Equal(t, FallbackMessage, snap.Answer)
}

func TestSubmit_OutOfOrderEventFails(t *testing.T) {
	c := New(&fakeAsker{streams: []chan models.StreamEvent{scripted(
		chunk(1, "a"),
		chunk(3, "c"),
		terminal(models.EventDone, 4),
	)}}, nil)

	wait(t, c.Submit(context.Background(), "pho"))
	assert.Equal(t, Failed, c.Snapshot().State)
}

func TestSubmit_NewerSubmissionWins(t *testing.T) {
	first := make(chan models.StreamEvent)
	asker := &fakeAsker{streams: []chan models.StreamEvent{
		first,
		scripted(chunk(1, "**Yes.**"), terminal(models.EventDone, 2)),
	}}
	c := New(asker, nil)

	sub1 := c.Submit(context.Background(), "ramen")
	first <- chunk(1, "**No.**")
	require.Eventually(t, func() bool { return c.Snapshot().Answer == "**No.**" }, time.Second, 5*time.Millisecond)

	sub2 := c.Submit(context.Background(), "pho")
	assert.Greater(t, sub2.ID, sub1.ID)
	wait(t, sub2)

	// the first stream is still being read; its late chunk must not land
	first <- chunk(2, " stale")
	close(first)
	wait(t, sub1)

	snap := c.Snapshot()
	assert.Equal(t, sub2.ID, snap.RequestID)
	assert.Equal(t, Done, snap.State)
	assert.Equal(t, "**Yes.**", snap.Answer)
	assert.Equal(t, "pho", snap.Query)

	assert.ErrorIs(t, asker.ctxs[0].Err(), context.Canceled)
}

func TestCancel(t *testing.T) {
	blocked := make(chan models.StreamEvent)
	asker := &fakeAsker{streams: []chan models.StreamEvent{blocked}}
	c := New(asker, nil)

	sub := c.Submit(context.Background(), "chili")
	require.Eventually(t, func() bool {
		asker.mu.Lock()
		defer asker.mu.Unlock()
		return len(asker.ctxs) == 1
	}, time.Second, 5*time.Millisecond)

	c.Cancel()
	asker.mu.Lock()
	ctx := asker.ctxs[0]
	asker.mu.Unlock()
	assert.True(t, errors.Is(ctx.Err(), context.Canceled))

	close(blocked)
	wait(t, sub)
	assert.Equal(t, Failed, c.Snapshot().State)
}

func TestSubmit_ResubmitAfterDoneStartsEmpty(t *testing.T) {
	script := func() chan models.StreamEvent {
		return scripted(chunk(1, "**No.**"), chunk(2, " Ramen is a meal."), terminal(models.EventDone, 3))
	}
	asker := &fakeAsker{streams: []chan models.StreamEvent{script(), script()}}
	rec := &recorder{}
	c := New(asker, rec.record)

	wait(t, c.Submit(context.Background(), "ramen"))
	first := c.Snapshot()
	require.Equal(t, Done, first.State)

	sub := c.Submit(context.Background(), "ramen")
	wait(t, sub)

	var second []Snapshot
	for _, s := range rec.all() {
		if s.RequestID == sub.ID {
			second = append(second, s)
		}
	}
	require.GreaterOrEqual(t, len(second), 2)
	assert.Equal(t, Submitting, second[0].State)
	assert.Equal(t, "", second[0].Answer)
	assert.Equal(t, "**No.**", second[1].Answer)

	last := c.Snapshot()
	assert.Equal(t, Done, last.State)
	assert.Equal(t, first.Answer, last.Answer)
	assert.Equal(t, []string{"ramen", "ramen"}, asker.queries)
}

func TestSubmit_ZeroChunksGoesStraightToDone(t *testing.T) {
	rec := &recorder{}
	c := New(&fakeAsker{streams: []chan models.StreamEvent{scripted(terminal(models.EventDone, 1))}}, rec.record)

	wait(t, c.Submit(context.Background(), "air"))

	var states []State
	for _, s := range rec.all() {
		states = append(states, s.State)
	}
	assert.Equal(t, []State{Submitting, Done}, states)
	assert.Equal(t, "", c.Snapshot().Answer)
}
