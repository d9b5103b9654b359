package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"vidrag/internal/index"
	"vidrag/internal/store"
)

const sourceExcerptRunes = 80

func newAskCommand(ctx *commandContext) *cobra.Command {
	var sessionID string
	var topK int
	var showSources bool

	cmd := &cobra.Command{
		Use:   "ask <run-id> <question...>",
		Short: "Answer a question about an ingested video",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			runCtx, stop := signalContext(cmd)
			defer stop()

			question := strings.Join(args[1:], " ")
			return ctx.withStore(func(st *store.Store) error {
				qa, err := openQASession(runCtx, ctx, st, args[0], sessionID, topK, logger)
				if err != nil {
					return err
				}
				defer qa.Close()

				result, err := qa.Ask(runCtx, question)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintln(out, result.Turn.Answer)
				if showSources {
					fmt.Fprintln(out)
					printSources(out, result.Hits)
				}
				fmt.Fprintln(out)
				fmt.Fprintf(out, "Session: %s\n", qa.session.ID)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&sessionID, "session", "", "Continue an existing conversation session")
	cmd.Flags().IntVar(&topK, "top-k", 0, "Number of transcript chunks to retrieve (defaults to index.top_k)")
	cmd.Flags().BoolVar(&showSources, "show-sources", false, "Print the transcript chunks used for the answer")
	return cmd
}

func printSources(out io.Writer, hits []index.Hit) {
	if len(hits) == 0 {
		fmt.Fprintln(out, "No sources retrieved.")
		return
	}
	rows := make([][]string, 0, len(hits))
	for i, hit := range hits {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			strconv.Itoa(hit.Chunk.Position),
			fmt.Sprintf("%.3f", hit.Score),
			excerpt(hit.Chunk.Text, sourceExcerptRunes),
		})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"#", "Chunk", "Score", "Excerpt"},
		rows,
		[]columnAlignment{alignRight, alignRight, alignRight, alignLeft},
	))
}
