package llm

import (
	"context"
	"errors"

	"github.com/google/generative-ai-go/genai"
	"github.com/yoockh/isthissoup/internal/models"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// Gemini talks to the Google AI Gemini API with a plain API key.
type Gemini struct {
	client    *genai.Client
	modelName string
}

func NewGemini(ctx context.Context, apiKey, modelName string) (*Gemini, error) {
	if apiKey == "" {
		return nil, errors.New("gemini: api key is empty")
	}
	c, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}
	if modelName == "" {
		modelName = "gemini-1.5-flash"
	}
	return &Gemini{client: c, modelName: modelName}, nil
}

func (g *Gemini) Name() string { return "gemini" }

func (g *Gemini) Close() error { return g.client.Close() }

func (g *Gemini) StreamAnswer(ctx context.Context, p models.Prompt) (<-chan string, <-chan error) {
	out, errs := newStreamChans()

	go func() {
		defer close(out)
		defer close(errs)

		m := g.client.GenerativeModel(g.modelName)
		m.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(p.System)}}
		if p.MaxOutputTokens > 0 {
			m.SetMaxOutputTokens(int32(p.MaxOutputTokens))
		}

		it := m.GenerateContentStream(ctx, genai.Text(p.User))
		for {
			resp, err := it.Next()
			if err == iterator.Done {
				return
			}
			if err != nil {
				errs <- err
				return
			}
			for _, cand := range resp.Candidates {
				if cand.Content == nil {
					continue
				}
				for _, part := range cand.Content.Parts {
					t, ok := part.(genai.Text)
					if !ok || t == "" {
						continue
					}
					if !send(ctx, out, string(t)) {
						errs <- ctx.Err()
						return
					}
				}
			}
		}
	}()

	return out, errs
}
