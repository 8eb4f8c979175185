package llm

import (
	"context"
	"errors"

	vertexgenai "cloud.google.com/go/vertexai/genai"
	"github.com/yoockh/isthissoup/internal/models"
	"google.golang.org/api/iterator"
)

type VertexGemini struct {
	client    *vertexgenai.Client
	modelName string
}

func NewVertexGemini(ctx context.Context, projectID, location, modelName string) (*VertexGemini, error) {
	if projectID == "" {
		return nil, errors.New("vertex: project id is empty")
	}
	c, err := vertexgenai.NewClient(ctx, projectID, location)
	if err != nil {
		return nil, err
	}

	if modelName == "" {
		modelName = "gemini-1.5-flash"
	}
	return &VertexGemini{client: c, modelName: modelName}, nil
}

func (v *VertexGemini) Name() string { return "vertex" }

func (v *VertexGemini) Close() error { return v.client.Close() }

// model is built per call; GenerativeModel carries per-request settings and
// is not safe to mutate from concurrent requests.
func (v *VertexGemini) model(p models.Prompt) *vertexgenai.GenerativeModel {
	m := v.client.GenerativeModel(v.modelName)
	m.SystemInstruction = &vertexgenai.Content{Parts: []vertexgenai.Part{vertexgenai.Text(p.System)}}
	if p.MaxOutputTokens > 0 {
		m.SetMaxOutputTokens(int32(p.MaxOutputTokens))
	}
	return m
}

func (v *VertexGemini) StreamAnswer(ctx context.Context, p models.Prompt) (<-chan string, <-chan error) {
	out, errs := newStreamChans()

	go func() {
		defer close(out)
		defer close(errs)

		it := v.model(p).GenerateContentStream(ctx, vertexgenai.Text(p.User))
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
					if t, ok := part.(vertexgenai.Text); ok && string(t) != "" {
						if !send(ctx, out, string(t)) {
							errs <- ctx.Err()
							return
						}
					}
				}
			}
		}
	}()

	return out, errs
}
