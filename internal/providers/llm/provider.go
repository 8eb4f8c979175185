package llm

import (
	"context"
	"fmt"

	"github.com/yoockh/isthissoup/config"
)

// New builds the provider selected by cfg.Provider.
func New(ctx context.Context, cfg *config.Config) (Provider, error) {
	switch cfg.Provider {
	case config.ProviderOpenAI, "":
		return NewOpenAI(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.Model)
	case config.ProviderGemini:
		return NewGemini(ctx, cfg.GeminiAPIKey, cfg.Model)
	case config.ProviderVertex:
		return NewVertexGemini(ctx, cfg.VertexProjectID, cfg.VertexLocation, cfg.Model)
	case config.ProviderStub:
		return NewStub(), nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
}
