package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"vidrag/internal/services"
	"vidrag/internal/store"
)

const historyExcerptRunes = 60

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var full bool

	cmd := &cobra.Command{
		Use:   "history <session-id>",
		Short: "Show the questions and answers of a chat session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sessionID := strings.TrimSpace(args[0])
			return ctx.withStore(func(st *store.Store) error {
				session, err := st.GetSession(cmd.Context(), sessionID)
				if err != nil {
					return err
				}
				if session == nil {
					return services.Wrap(services.ErrNotFound, "history", "load session", fmt.Sprintf("session %q not found", sessionID), nil)
				}
				turns, err := st.ListTurns(cmd.Context(), session.ID)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Session %s (run %s)\n", session.ID, shortID(session.RunID))
				if len(turns) == 0 {
					fmt.Fprintln(out, "No questions asked yet.")
					return nil
				}
				if full {
					for i, turn := range turns {
						fmt.Fprintf(out, "\n[%d] %s\nQ: %s\nA: %s\n", i+1, formatTimestamp(turn.AskedAt), turn.Question, turn.Answer)
					}
					return nil
				}
				rows := make([][]string, 0, len(turns))
				for i, turn := range turns {
					rows = append(rows, []string{
						strconv.Itoa(i + 1),
						formatTimestamp(turn.AskedAt),
						excerpt(turn.Question, historyExcerptRunes),
						excerpt(turn.Answer, historyExcerptRunes),
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"#", "Asked", "Question", "Answer"},
					rows,
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft},
				))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&full, "full", false, "Print complete questions and answers instead of a table")
	return cmd
}
