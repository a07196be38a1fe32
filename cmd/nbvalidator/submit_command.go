package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"NotebookValidator/internal/app"
	"NotebookValidator/internal/domain"
)

func newSubmitCommand(ctx *commandContext) *cobra.Command {
	var (
		file string
		refs []string
	)

	cmd := &cobra.Command{
		Use:   "submit [reference...]",
		Short: "Process a list of paper references and wait for the result",
		Long: "Submit either a table of references (--file, .csv/.tsv/.txt) or references\n" +
			"given as arguments or --ref flags (DOIs or PubMed Central article URLs).",
		RunE: func(cmd *cobra.Command, args []string) error {
			refs = append(refs, args...)
			if file == "" && len(refs) == 0 {
				return errors.New("nothing to submit: pass --file or at least one reference")
			}
			if file != "" && len(refs) > 0 {
				return errors.New("--file cannot be combined with references")
			}

			return ctx.withApp(cmd.Context(), func(application *app.Application) error {
				sub := domain.Submission{Type: domain.ListTypeURLs, References: cleanRefs(refs)}
				if file != "" {
					name, err := application.ImportFile(file)
					if err != nil {
						return err
					}
					sub = domain.Submission{Type: domain.ListTypeFile, Filename: name}
				}

				if err := application.Start(cmd.Context()); err != nil {
					return err
				}
				taskID, err := application.Submit(cmd.Context(), sub)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "task %s\n", taskID)

				if err := application.Wait(cmd.Context()); err != nil {
					return err
				}

				status, err := application.Status().TaskList(cmd.Context(), taskID)
				if err != nil {
					return err
				}
				printListStatus(cmd.OutOrStdout(), status)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Reference table to upload")
	cmd.Flags().StringArrayVarP(&refs, "ref", "r", nil, "Paper reference (repeatable)")
	return cmd
}

func cleanRefs(refs []string) []string {
	out := make([]string, 0, len(refs))
	for _, ref := range refs {
		if ref = strings.TrimSpace(ref); ref != "" {
			out = append(out, ref)
		}
	}
	return out
}
