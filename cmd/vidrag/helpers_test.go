package main

import (
	"errors"
	"strings"
	"testing"

	"vidrag/internal/services"
)

func TestFormatCommandError(t *testing.T) {
	plain := errors.New("boom")
	if got := formatCommandError(plain); got != "Error: boom" {
		t.Fatalf("plain error = %q", got)
	}

	wrapped := services.Wrap(services.ErrAcquisition, "acquisition", "yt-dlp", "exit status 1", nil)
	got := formatCommandError(wrapped)
	if !strings.HasPrefix(got, "Error: could not download audio") {
		t.Fatalf("expected described message first, got %q", got)
	}
	if !strings.Contains(got, "exit status 1") {
		t.Fatalf("expected detail line, got %q", got)
	}
}

func TestExcerpt(t *testing.T) {
	if got := excerpt("  cats\n are\tmammals ", 40); got != "cats are mammals" {
		t.Fatalf("excerpt = %q", got)
	}
	got := excerpt(strings.Repeat("é", 50), 10)
	if got != strings.Repeat("é", 7)+"..." {
		t.Fatalf("truncated excerpt = %q", got)
	}
}

func TestShortID(t *testing.T) {
	if got := shortID("0123456789abcdef"); got != "01234567" {
		t.Fatalf("shortID = %q", got)
	}
	if got := shortID("abc"); got != "abc" {
		t.Fatalf("shortID short = %q", got)
	}
}

func TestRenderTablePadsRows(t *testing.T) {
	out := renderTable([]string{"A", "B"}, [][]string{{"only"}}, []columnAlignment{alignLeft, alignRight})
	if !strings.Contains(out, "only") || !strings.Contains(out, "A") {
		t.Fatalf("unexpected table %q", out)
	}
	if renderTable(nil, nil, nil) != "" {
		t.Fatal("expected empty render for no headers")
	}
}
