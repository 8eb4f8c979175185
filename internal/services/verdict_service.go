package services

import (
	"context"
	_ "embed"
	"fmt"
	"strings"
	"time"

	"github.com/yoockh/isthissoup/internal/metrics"
	"github.com/yoockh/isthissoup/internal/models"
	"github.com/yoockh/isthissoup/internal/providers/llm"
	"github.com/yoockh/isthissoup/internal/streamid"
	"github.com/yoockh/isthissoup/internal/utils"
)

//go:embed prompts/soup_system.md
var systemInstruction string

const (
	DefaultMaxOutputTokens = 300

	MsgPromptRequired = "Prompt is required"
	MsgAskFailed      = "Failed to process your soup question"
)

// SystemInstruction is the fixed instruction sent with every query.
func SystemInstruction() string { return systemInstruction }

// BuildPrompt wraps query in the fixed template. The query is used verbatim.
func BuildPrompt(query string, maxOutputTokens int) models.Prompt {
	if maxOutputTokens <= 0 {
		maxOutputTokens = DefaultMaxOutputTokens
	}
	return models.Prompt{
		System:          systemInstruction,
		User:            fmt.Sprintf("Is '%s' soup?", query),
		MaxOutputTokens: maxOutputTokens,
	}
}

type VerdictService interface {
	// Ask validates query, opens the provider stream and waits for its first
	// chunk, so that every failure known before streaming starts is returned
	// here rather than mid-response.
	Ask(ctx context.Context, query string) (*Verdict, error)
}

type verdictService struct {
	provider        llm.Provider
	ids             streamid.Sequencer
	maxOutputTokens int
}

func NewVerdictService(provider llm.Provider, ids streamid.Sequencer, maxOutputTokens int) VerdictService {
	if ids == nil {
		ids = streamid.NewLocal()
	}
	return &verdictService{provider: provider, ids: ids, maxOutputTokens: maxOutputTokens}
}

func (s *verdictService) Ask(ctx context.Context, query string) (*Verdict, error) {
	const op = "VerdictService.Ask"

	if strings.TrimSpace(query) == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, MsgPromptRequired, nil)
	}

	id, err := s.ids.Next(ctx)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, MsgAskFailed, fmt.Errorf("stream id: %w", err))
	}

	start := time.Now()
	chunks, errs := s.provider.StreamAnswer(ctx, BuildPrompt(query, s.maxOutputTokens))

	v := &Verdict{StreamID: id, chunks: chunks, errs: errs}

	first, ok := <-chunks
	if !ok {
		if err := pollErr(errs); err != nil {
			return nil, utils.E(utils.CodeUpstream, op, MsgAskFailed, err)
		}
		// provider finished without producing text
		v.done = true
		return v, nil
	}

	metrics.FirstChunkSeconds.Observe(time.Since(start).Seconds())
	v.pending = first
	v.hasPending = true
	return v, nil
}

func pollErr(errs <-chan error) error {
	select {
	case err := <-errs:
		return err
	default:
		return nil
	}
}

// Verdict is one open provider stream. It is read by a single goroutine.
type Verdict struct {
	StreamID int64

	chunks     <-chan string
	errs       <-chan error
	pending    string
	hasPending bool
	done       bool
	err        error
}

// Next returns the next chunk in provider order; ok is false once the stream
// has ended, after which Err reports whether it ended abnormally.
func (v *Verdict) Next() (chunk string, ok bool) {
	if v.hasPending {
		v.hasPending = false
		return v.pending, true
	}
	if v.done {
		return "", false
	}
	chunk, ok = <-v.chunks
	if !ok {
		v.done = true
		v.err = pollErr(v.errs)
	}
	return chunk, ok
}

func (v *Verdict) Err() error { return v.err }
