package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"vidrag/internal/services"
	"vidrag/internal/textutil"
)

const shortIDLength = 8

// formatCommandError prefers the user-facing description of a pipeline error
// and appends the underlying detail when the description hides it.
func formatCommandError(err error) string {
	if err == nil {
		return ""
	}
	detail := err.Error()
	message := services.Describe(err)
	if message == "" || message == detail || strings.Contains(message, detail) {
		return "Error: " + detail
	}
	return "Error: " + message + "\n  " + detail
}

func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

func shortID(id string) string {
	if len(id) <= shortIDLength {
		return id
	}
	return id[:shortIDLength]
}

// excerpt collapses whitespace and truncates text for table cells.
func excerpt(text string, limit int) string {
	collapsed := strings.Join(strings.Fields(text), " ")
	if len([]rune(collapsed)) <= limit {
		return collapsed
	}
	return strings.TrimSpace(textutil.TruncateRunes(collapsed, limit-3)) + "..."
}

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}
