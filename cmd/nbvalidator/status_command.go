package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"NotebookValidator/internal/app"
	"NotebookValidator/internal/domain"
	"NotebookValidator/internal/usecase"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status <list-or-task-id>",
		Short: "Show a list with its papers and notebooks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(cmd.Context(), func(application *app.Application) error {
				status, err := application.Status().List(cmd.Context(), args[0])
				if errors.Is(err, domain.ErrNotFound) {
					status, err = application.Status().TaskList(cmd.Context(), args[0])
				}
				if err != nil {
					return err
				}
				printListStatus(cmd.OutOrStdout(), status)
				return nil
			})
		},
	}
}

func printListStatus(w io.Writer, status usecase.ListStatus) {
	list := status.List
	state := "processing"
	if list.IsProcessed {
		state = "processed"
	}
	fmt.Fprintf(w, "list %s (%s, %s)\n", list.ID, list.Type, state)
	if list.Filename != "" {
		fmt.Fprintf(w, "file %s\n", list.Filename)
	}
	fmt.Fprintf(w, "papers %d, notebooks %d, failed %d\n", len(status.Papers), len(status.Notebooks), status.Failed())

	if len(status.Papers) > 0 {
		rows := make([][]string, 0, len(status.Papers))
		for _, p := range status.Papers {
			rows = append(rows, []string{p.ID, p.OriginalURL, string(p.URLType), yesNo(p.IsProcessed)})
		}
		fmt.Fprintln(w, renderTable([]string{"Paper", "Reference", "Type", "Done"}, rows, nil))
	}

	if len(status.Notebooks) > 0 {
		rows := make([][]string, 0, len(status.Notebooks))
		for _, nb := range status.Notebooks {
			rows = append(rows, []string{nb.ID, nb.OriginalURL, nb.Kernel, notebookState(nb), truncate(nb.Message, 60)})
		}
		fmt.Fprintln(w, renderTable([]string{"Notebook", "URL", "Kernel", "State", "Message"}, rows, nil))
	}
}

func notebookState(nb domain.Notebook) string {
	switch {
	case !nb.IsProcessed:
		return "pending"
	case nb.IsFailed:
		return "failed"
	default:
		return "ok"
	}
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Local().Format("2006-01-02 15:04:05")
}

func itoa(n int) string { return strconv.Itoa(n) }
