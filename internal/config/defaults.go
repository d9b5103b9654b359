package config

// Provider, mode and backend names accepted in the configuration file.
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
	ProviderLocal  = "local"

	ModeVector = "vector"
	ModeHybrid = "hybrid"

	BackendMemory   = "memory"
	BackendPostgres = "postgres"
)

// MinLocalEmbeddingDimensions is the narrowest local embedding accepted.
// Narrower hashed vectors collide often enough to reorder rankings.
const MinLocalEmbeddingDimensions = 256

const (
	defaultConfigPath            = "~/.config/vidrag/config.toml"
	defaultDataDir               = "~/.local/share/vidrag"
	defaultLogDir                = "~/.local/share/vidrag/logs"
	defaultYtDlpBinary           = "yt-dlp"
	defaultFFmpegBinary          = "ffmpeg"
	defaultFFprobeBinary         = "ffprobe"
	defaultChunkSeconds          = 600
	defaultOverlapSeconds        = 10
	defaultTranscriptionModel    = "whisper-1"
	defaultTranscriptionWorkers  = 4
	defaultTranscriptionAttempts = 3
	defaultOpenAIEmbeddingModel  = "text-embedding-3-large"
	defaultGeminiEmbeddingModel  = "text-embedding-004"
	defaultLocalEmbeddingDims    = 512
	defaultEmbeddingBatchSize    = 64
	defaultChunkTokens           = 256
	defaultOverlapTokens         = 32
	defaultTokenEncoding         = "cl100k_base"
	defaultTopK                  = 5
	defaultOpenAIChatModel       = "gpt-3.5-turbo"
	defaultGeminiChatModel       = "gemini-2.0-flash"
	defaultOpenAIChatURL         = "https://api.openai.com/v1/chat/completions"
	defaultLLMMaxTokens          = 300
	defaultLLMTimeoutSeconds     = 60
	defaultLogFormat             = "console"
	defaultLogLevel              = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
		},
		Tools: Tools{
			YtDlp:   defaultYtDlpBinary,
			FFmpeg:  defaultFFmpegBinary,
			FFprobe: defaultFFprobeBinary,
		},
		Chunking: Chunking{
			ChunkSeconds:   defaultChunkSeconds,
			OverlapSeconds: defaultOverlapSeconds,
		},
		Transcription: Transcription{
			Model:       defaultTranscriptionModel,
			Workers:     defaultTranscriptionWorkers,
			MaxAttempts: defaultTranscriptionAttempts,
		},
		Embedding: Embedding{
			Provider:   ProviderOpenAI,
			Dimensions: defaultLocalEmbeddingDims,
			BatchSize:  defaultEmbeddingBatchSize,
		},
		Index: Index{
			ChunkTokens:   defaultChunkTokens,
			OverlapTokens: defaultOverlapTokens,
			Encoding:      defaultTokenEncoding,
			TopK:          defaultTopK,
			Mode:          ModeVector,
			Backend:       BackendMemory,
		},
		LLM: LLM{
			Provider:       ProviderOpenAI,
			MaxTokens:      defaultLLMMaxTokens,
			TimeoutSeconds: defaultLLMTimeoutSeconds,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
