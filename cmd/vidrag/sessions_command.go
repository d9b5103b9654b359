package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"vidrag/internal/services"
	"vidrag/internal/store"
)

func newSessionsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "sessions <run-id>",
		Short: "List the chat sessions of an ingested video",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(st *store.Store) error {
				run, err := st.GetRun(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if run == nil {
					return services.Wrap(services.ErrNotFound, "sessions", "load run", fmt.Sprintf("run %q not found; list runs with `vidrag runs`", args[0]), nil)
				}
				sessions, err := st.ListSessions(cmd.Context(), run.ID)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(sessions) == 0 {
					fmt.Fprintf(out, "No sessions for run %s yet.\n", shortID(run.ID))
					return nil
				}
				rows := make([][]string, 0, len(sessions))
				for _, session := range sessions {
					turns, err := st.ListTurns(cmd.Context(), session.ID)
					if err != nil {
						return err
					}
					rows = append(rows, []string{
						session.ID,
						formatTimestamp(session.CreatedAt),
						strconv.Itoa(len(turns)),
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Session", "Created", "Turns"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignRight},
				))
				return nil
			})
		},
	}
}
