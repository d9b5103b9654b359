package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateChunking(); err != nil {
		return err
	}
	if err := c.validateTranscription(); err != nil {
		return err
	}
	if err := c.validateEmbedding(); err != nil {
		return err
	}
	if err := c.validateIndex(); err != nil {
		return err
	}
	if err := c.validateLLM(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateChunking() error {
	if c.Chunking.ChunkSeconds <= 0 {
		return errors.New("chunking.chunk_seconds must be positive")
	}
	if c.Chunking.OverlapSeconds < 0 {
		return errors.New("chunking.overlap_seconds must not be negative")
	}
	if c.Chunking.OverlapSeconds >= c.Chunking.ChunkSeconds {
		return errors.New("chunking.overlap_seconds must be less than chunking.chunk_seconds")
	}
	return nil
}

func (c *Config) validateTranscription() error {
	if c.Transcription.Workers > 64 {
		return errors.New("transcription.workers must be 64 or fewer")
	}
	if c.Transcription.MaxAttempts > 10 {
		return errors.New("transcription.max_attempts must be 10 or fewer")
	}
	return nil
}

func (c *Config) validateEmbedding() error {
	switch c.Embedding.Provider {
	case ProviderOpenAI, ProviderGemini, ProviderLocal:
	default:
		return fmt.Errorf("embedding.provider must be one of openai, gemini, local (got %q)", c.Embedding.Provider)
	}
	if c.Embedding.Provider == ProviderLocal && c.Embedding.Dimensions < MinLocalEmbeddingDimensions {
		return fmt.Errorf("embedding.dimensions must be at least %d for the local provider", MinLocalEmbeddingDimensions)
	}
	return nil
}

func (c *Config) validateIndex() error {
	if c.Index.OverlapTokens >= c.Index.ChunkTokens {
		return errors.New("index.overlap_tokens must be less than index.chunk_tokens")
	}
	switch c.Index.Mode {
	case ModeVector, ModeHybrid:
	default:
		return fmt.Errorf("index.mode must be vector or hybrid (got %q)", c.Index.Mode)
	}
	switch c.Index.Backend {
	case BackendMemory:
	case BackendPostgres:
		if c.Index.PostgresDSN == "" {
			return errors.New("index.postgres_dsn must be set when index.backend is postgres (or export VIDRAG_POSTGRES_DSN)")
		}
		if c.Index.Mode == ModeHybrid {
			return errors.New("index.mode hybrid is only supported with the memory backend")
		}
	default:
		return fmt.Errorf("index.backend must be memory or postgres (got %q)", c.Index.Backend)
	}
	return nil
}

func (c *Config) validateLLM() error {
	switch c.LLM.Provider {
	case ProviderOpenAI, ProviderGemini:
	default:
		return fmt.Errorf("llm.provider must be openai or gemini (got %q)", c.LLM.Provider)
	}
	if c.LLM.MaxTokens > 4096 {
		return errors.New("llm.max_tokens must be 4096 or fewer")
	}
	return nil
}

// RequireCredentials reports missing API keys for the configured providers.
// Load does not call it so that offline commands keep working without keys.
func (c *Config) RequireCredentials() error {
	if c.OpenAI.APIKey == "" {
		path, err := DefaultConfigPath()
		if err != nil {
			path = defaultConfigPath
		}
		return fmt.Errorf("openai.api_key is required for transcription. Set OPENAI_API_KEY or edit %s (create with 'vidrag config init')", path)
	}
	if c.Embedding.Provider == ProviderGemini && c.Gemini.APIKey == "" {
		return errors.New("gemini.api_key is required when embedding.provider is gemini. Set GEMINI_API_KEY")
	}
	if c.GetLLM().APIKey == "" {
		return fmt.Errorf("llm.api_key is required for provider %s", c.LLM.Provider)
	}
	return nil
}
