package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"NotebookValidator/internal/app"
	"NotebookValidator/internal/domain"
)

func newLogsCommand(ctx *commandContext) *cobra.Command {
	var filter domain.LogFilter

	cmd := &cobra.Command{
		Use:   "logs [list-id]",
		Short: "Print audit log entries",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				filter.ListID = args[0]
			}
			return ctx.withApp(cmd.Context(), func(application *app.Application) error {
				entries, err := application.Status().Logs(cmd.Context(), filter)
				if err != nil {
					return err
				}
				if len(entries) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "no log entries")
					return nil
				}

				rows := make([][]string, 0, len(entries))
				for i, e := range entries {
					rows = append(rows, []string{itoa(i + 1), formatTime(e.CreatedAt), short(e.PaperID), short(e.NotebookID), e.Message})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"#", "Time", "Paper", "Notebook", "Message"},
					rows,
					[]columnAlignment{alignRight},
				))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&filter.PaperID, "paper", "", "Only entries for this paper")
	cmd.Flags().StringVar(&filter.NotebookID, "notebook", "", "Only entries for this notebook")
	return cmd
}

func short(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
