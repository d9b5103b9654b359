package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"testing"

	"vidrag/internal/config"
	"vidrag/internal/index"
	"vidrag/internal/services/embed"
	"vidrag/internal/store"
	"vidrag/internal/testsupport"
)

const (
	testAnswer      = "Cats are warm-blooded mammals."
	testSuggestions = "1. Why are cats mammals?\n2. What do cats eat?\n3. Is the sky blue?"
)

// fakeLLM is an OpenAI-compatible chat endpoint. Requests limited to 100
// tokens are answered with suggestions, everything else with testAnswer.
type fakeLLM struct {
	server *httptest.Server

	mu       sync.Mutex
	requests []map[string]any
}

func newFakeLLM(t *testing.T) *fakeLLM {
	t.Helper()
	f := &fakeLLM{}
	f.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]any
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		f.mu.Lock()
		f.requests = append(f.requests, payload)
		f.mu.Unlock()

		content := testAnswer
		if tokens, ok := payload["max_tokens"].(float64); ok && tokens == 100 {
			content = testSuggestions
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": content}},
			},
		})
	}))
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeLLM) requestCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

type cliTestEnv struct {
	cfg        *config.Config
	store      *store.Store
	llm        *fakeLLM
	configPath string
	baseDir    string
}

func setupCLITestEnv(t *testing.T, opts ...testsupport.ConfigOption) *cliTestEnv {
	t.Helper()

	llm := newFakeLLM(t)
	opts = append([]testsupport.ConfigOption{
		testsupport.WithStubbedBinaries(),
		testsupport.WithLLMEndpoint(llm.server.URL),
	}, opts...)
	cfg := testsupport.NewConfig(t, opts...)
	base := testsupport.BaseDir(cfg)
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}

	configPath := filepath.Join(base, "config.toml")
	writeTestConfig(t, configPath, cfg)

	return &cliTestEnv{
		cfg:        cfg,
		store:      testsupport.MustOpenStore(t, cfg),
		llm:        llm,
		configPath: configPath,
		baseDir:    base,
	}
}

// seedRun stores a run whose chunks are embedded with the configured local
// embedder, so retrieval works without network access.
func (e *cliTestEnv) seedRun(t *testing.T, id string, texts ...string) store.Run {
	t.Helper()
	embedder := embed.NewLocal(e.cfg.Embedding.Dimensions)
	vectors, err := embedder.Embed(context.Background(), texts)
	if err != nil {
		t.Fatalf("embed: %v", err)
	}
	chunks := make([]index.TextChunk, len(texts))
	for i, text := range texts {
		chunks[i] = index.TextChunk{Position: i, Text: text, TokenCount: len(strings.Fields(text)), Embedding: vectors[i]}
	}
	return testsupport.SaveRun(t, e.store, id, embedder.Model(), chunks)
}

func runCLI(t *testing.T, args []string, configPath string, stdin io.Reader) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	if stdin != nil {
		cmd.SetIn(stdin)
	}
	flags := []string{"--log-level", "error"}
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	content := fmt.Sprintf(`[paths]
data_dir = %q
work_dir = %q
log_dir = %q

[embedding]
provider = "local"
dimensions = %d

[llm]
provider = "openai"
api_key = %q
base_url = %q

[openai]
api_key = %q
`,
		cfg.Paths.DataDir,
		cfg.Paths.WorkDir,
		cfg.Paths.LogDir,
		cfg.Embedding.Dimensions,
		cfg.LLM.APIKey,
		cfg.LLM.BaseURL,
		cfg.OpenAI.APIKey,
	)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

var sessionLine = regexp.MustCompile(`Session: ([0-9a-f-]{36})`)

func sessionFromOutput(t *testing.T, output string) string {
	t.Helper()
	match := sessionLine.FindStringSubmatch(output)
	if match == nil {
		t.Fatalf("no session id in output %q", output)
	}
	return match[1]
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
