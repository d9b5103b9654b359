package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDoctorOfflinePasses(t *testing.T) {
	env := setupCLITestEnv(t)
	stub := "#!/bin/sh\necho ' A..... libmp3lame           libmp3lame MP3 (MPEG audio layer 3)'\n"
	if err := os.WriteFile(filepath.Join(env.baseDir, "bin", "ffmpeg"), []byte(stub), 0o755); err != nil {
		t.Fatalf("write ffmpeg stub: %v", err)
	}

	out, _, err := runCLI(t, []string{"doctor", "--offline"}, env.configPath, nil)
	if err != nil {
		t.Fatalf("doctor: %v\n%s", err, out)
	}
	requireContains(t, out, "checks passed")
	requireContains(t, out, "yt-dlp")
	requireContains(t, out, "ffmpeg libmp3lame")
}

func TestDoctorReportsMissingEncoder(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"doctor", "--offline"}, env.configPath, nil)
	if err == nil {
		t.Fatalf("expected doctor to fail without libmp3lame, got %q", out)
	}
	requireContains(t, out, "[ERROR]")
	requireContains(t, out, "libmp3lame")
}

func TestDoctorChecksLLM(t *testing.T) {
	env := setupCLITestEnv(t)
	stub := "#!/bin/sh\necho ' A..... libmp3lame           libmp3lame MP3 (MPEG audio layer 3)'\n"
	if err := os.WriteFile(filepath.Join(env.baseDir, "bin", "ffmpeg"), []byte(stub), 0o755); err != nil {
		t.Fatalf("write ffmpeg stub: %v", err)
	}

	out, _, err := runCLI(t, []string{"doctor"}, env.configPath, nil)
	if err != nil {
		t.Fatalf("doctor: %v\n%s", err, out)
	}
	requireContains(t, out, "API reachable")
	if env.llm.requestCount() != 1 {
		t.Fatalf("expected one health check request, got %d", env.llm.requestCount())
	}
}
