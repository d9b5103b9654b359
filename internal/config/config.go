package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	DataDir string `toml:"data_dir"`
	WorkDir string `toml:"work_dir"`
	LogDir  string `toml:"log_dir"`
}

// Tools names the external binaries used by the pipeline.
type Tools struct {
	YtDlp   string `toml:"ytdlp"`
	FFmpeg  string `toml:"ffmpeg"`
	FFprobe string `toml:"ffprobe"`
}

// Chunking controls how downloaded audio is split before transcription.
type Chunking struct {
	ChunkSeconds   int `toml:"chunk_seconds"`
	OverlapSeconds int `toml:"overlap_seconds"`
}

// Transcription contains speech-to-text settings.
type Transcription struct {
	Model       string `toml:"model"`
	Language    string `toml:"language"`
	Workers     int    `toml:"workers"`
	MaxAttempts int    `toml:"max_attempts"`
	BackoffMS   int    `toml:"backoff_ms"`
}

// Embedding selects the embedding capability used for indexing and retrieval.
type Embedding struct {
	// Provider is one of "openai", "gemini" or "local".
	Provider string `toml:"provider"`
	Model    string `toml:"model"`
	// Dimensions only applies to the local provider.
	Dimensions int `toml:"dimensions"`
	BatchSize  int `toml:"batch_size"`
}

// Index contains transcript chunking and retrieval settings.
type Index struct {
	ChunkTokens   int    `toml:"chunk_tokens"`
	OverlapTokens int    `toml:"overlap_tokens"`
	Encoding      string `toml:"encoding"`
	TopK          int    `toml:"top_k"`
	// Mode is "vector" or "hybrid".
	Mode string `toml:"mode"`
	// Backend is "memory" or "postgres".
	Backend     string `toml:"backend"`
	PostgresDSN string `toml:"postgres_dsn"`
}

// LLM contains text generation settings.
type LLM struct {
	// Provider is "openai" (any OpenAI-compatible chat endpoint) or "gemini".
	Provider       string `toml:"provider"`
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	Model          string `toml:"model"`
	MaxTokens      int    `toml:"max_tokens"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// OpenAI contains credentials for the OpenAI API (transcription and embeddings).
type OpenAI struct {
	APIKey  string `toml:"api_key"`
	BaseURL string `toml:"base_url"`
}

// Gemini contains credentials for the Gemini API.
type Gemini struct {
	APIKey string `toml:"api_key"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for vidrag.
//
// Configuration sections by subsystem:
//   - Paths: persistent data, per-run scratch space, and logs
//   - Tools: yt-dlp, ffmpeg and ffprobe binaries
//   - Chunking: audio chunk length and overlap
//   - Transcription: speech-to-text model, worker pool and retry policy
//   - Embedding: embedding provider and batching
//   - Index: transcript chunking, retrieval mode and index backend
//   - LLM: answer, summary and suggestion generation
//   - OpenAI, Gemini: provider credentials
//   - Logging: log format and level
type Config struct {
	Paths         Paths         `toml:"paths"`
	Tools         Tools         `toml:"tools"`
	Chunking      Chunking      `toml:"chunking"`
	Transcription Transcription `toml:"transcription"`
	Embedding     Embedding     `toml:"embedding"`
	Index         Index         `toml:"index"`
	LLM           LLM           `toml:"llm"`
	OpenAI        OpenAI        `toml:"openai"`
	Gemini        Gemini        `toml:"gemini"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized. A .env file in the working directory is read
// first; it never overrides variables that are already set.
func Load(path string) (*Config, string, bool, error) {
	if err := loadDotEnv(".env"); err != nil {
		return nil, "", false, err
	}

	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func loadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("stat env file: %w", err)
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("vidrag.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the data, work and log directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.WorkDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// DatabasePath returns the SQLite database location inside the data directory.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.Paths.DataDir, "vidrag.db")
}

// LockDir returns the directory holding per-source ingest lock files.
func (c *Config) LockDir() string {
	return filepath.Join(c.Paths.DataDir, "locks")
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// LLMConfig contains the resolved text generation settings.
type LLMConfig struct {
	Provider       string
	APIKey         string
	BaseURL        string
	Model          string
	MaxTokens      int
	TimeoutSeconds int
}

// GetLLM returns the text generation settings. The API key falls back to the
// provider's credentials section when [llm] does not set one.
func (c *Config) GetLLM() LLMConfig {
	cfg := LLMConfig{
		Provider:       c.LLM.Provider,
		APIKey:         strings.TrimSpace(c.LLM.APIKey),
		BaseURL:        strings.TrimSpace(c.LLM.BaseURL),
		Model:          strings.TrimSpace(c.LLM.Model),
		MaxTokens:      c.LLM.MaxTokens,
		TimeoutSeconds: c.LLM.TimeoutSeconds,
	}
	if cfg.APIKey == "" {
		switch cfg.Provider {
		case ProviderGemini:
			cfg.APIKey = c.Gemini.APIKey
		default:
			cfg.APIKey = c.OpenAI.APIKey
		}
	}
	return cfg
}
