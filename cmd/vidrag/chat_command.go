package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"vidrag/internal/store"
)

func newChatCommand(ctx *commandContext) *cobra.Command {
	var sessionID string
	var topK int

	cmd := &cobra.Command{
		Use:   "chat <run-id>",
		Short: "Start an interactive conversation about an ingested video",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			runCtx, stop := signalContext(cmd)
			defer stop()

			return ctx.withStore(func(st *store.Store) error {
				qa, err := openQASession(runCtx, ctx, st, args[0], sessionID, topK, logger)
				if err != nil {
					return err
				}
				defer qa.Close()
				return runChatLoop(runCtx, qa, cmd.InOrStdin(), cmd.OutOrStdout())
			})
		},
	}

	cmd.Flags().StringVar(&sessionID, "session", "", "Continue an existing conversation session")
	cmd.Flags().IntVar(&topK, "top-k", 0, "Number of transcript chunks to retrieve (defaults to index.top_k)")
	return cmd
}

// runChatLoop reads one question per line until EOF, "exit" or cancellation.
// Entering the number of a suggested question asks that question.
func runChatLoop(ctx context.Context, qa *qaSession, in io.Reader, out io.Writer) error {
	fmt.Fprintf(out, "Chatting about %s\nSession: %s\n", qa.run.SourceURL, qa.session.ID)
	fmt.Fprintln(out, "Type a question, a suggestion number, or \"exit\" to quit.")

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	var suggestions []string
	for {
		fmt.Fprint(out, "> ")
		var line string
		select {
		case <-ctx.Done():
			fmt.Fprintln(out)
			return nil
		case l, ok := <-lines:
			if !ok {
				fmt.Fprintln(out)
				return nil
			}
			line = strings.TrimSpace(l)
		}

		switch strings.ToLower(line) {
		case "":
			continue
		case "exit", "quit":
			return nil
		}
		if n, err := strconv.Atoi(line); err == nil && n >= 1 && n <= len(suggestions) {
			line = suggestions[n-1]
			fmt.Fprintf(out, "Q: %s\n", line)
		}

		result, err := qa.Ask(ctx, line)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			fmt.Fprintln(out, formatCommandError(err))
			continue
		}
		fmt.Fprintln(out)
		fmt.Fprintln(out, result.Turn.Answer)

		suggestions = qa.Suggest(ctx, result.Hits)
		printSuggestions(out, suggestions)
		fmt.Fprintln(out)
	}
}
