package llm

import (
	"context"
	"errors"
	"io"

	openai "github.com/sashabaranov/go-openai"
	"github.com/yoockh/isthissoup/internal/models"
)

// OpenAI streams chat completions from an OpenAI-compatible endpoint.
type OpenAI struct {
	c     *openai.Client
	model string
}

// NewOpenAI returns a provider for the given key and model. baseURL may be
// left empty for the default OpenAI URL.
func NewOpenAI(apiKey, baseURL, model string) (*OpenAI, error) {
	if apiKey == "" {
		return nil, errors.New("openai: api key is empty")
	}
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if model == "" {
		model = openai.GPT4o
	}
	return &OpenAI{c: openai.NewClientWithConfig(cfg), model: model}, nil
}

func (o *OpenAI) Name() string { return "openai" }

func (o *OpenAI) Close() error { return nil }

func (o *OpenAI) StreamAnswer(ctx context.Context, p models.Prompt) (<-chan string, <-chan error) {
	out, errs := newStreamChans()

	go func() {
		defer close(out)
		defer close(errs)

		req := openai.ChatCompletionRequest{
			Model:     o.model,
			MaxTokens: p.MaxOutputTokens,
			Stream:    true,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleSystem, Content: p.System},
				{Role: openai.ChatMessageRoleUser, Content: p.User},
			},
		}

		stream, err := o.c.CreateChatCompletionStream(ctx, req)
		if err != nil {
			errs <- err
			return
		}
		defer stream.Close()

		for {
			resp, err := stream.Recv()
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				errs <- err
				return
			}
			for _, choice := range resp.Choices {
				if choice.Delta.Content == "" {
					continue
				}
				if !send(ctx, out, choice.Delta.Content) {
					errs <- ctx.Err()
					return
				}
			}
		}
	}()

	return out, errs
}
