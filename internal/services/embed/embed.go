package embed

import (
	"context"
	"fmt"

	"vidrag/internal/config"
	"vidrag/internal/services"
)

// Embedder computes one vector per input text, in input order.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	// Model identifies the vector space. Vectors from different models must
	// never be compared.
	Model() string
}

// FromConfig constructs the embedder selected by cfg.Embedding.Provider.
func FromConfig(ctx context.Context, cfg *config.Config) (Embedder, error) {
	if cfg == nil {
		return nil, services.Wrap(services.ErrConfiguration, "embedding", "select provider", "config is nil", nil)
	}
	switch cfg.Embedding.Provider {
	case config.ProviderOpenAI:
		return NewOpenAI(OpenAIConfig{
			APIKey:  cfg.OpenAI.APIKey,
			BaseURL: cfg.OpenAI.BaseURL,
			Model:   cfg.Embedding.Model,
		}), nil
	case config.ProviderGemini:
		return NewGemini(ctx, GeminiConfig{
			APIKey: cfg.Gemini.APIKey,
			Model:  cfg.Embedding.Model,
		})
	case config.ProviderLocal:
		return NewLocal(cfg.Embedding.Dimensions), nil
	default:
		return nil, services.Wrap(services.ErrConfiguration, "embedding", "select provider",
			fmt.Sprintf("unsupported provider %q", cfg.Embedding.Provider), nil)
	}
}
