package main

import (
	"github.com/spf13/cobra"

	"github.com/gorewood/bmadflow/internal/output"
)

// newListCmd creates the list command.
func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List workflows the project can start",
		Long: `List the workflows whose prerequisites are met, grouped by phase.
Completed workflows are marked. Nothing is listed while a workflow is in
progress; finish or complete it first.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runOp(cmd, func(a *app, printer *output.Printer) error {
				res, err := a.ctl.List(a.project)
				if err != nil {
					return err
				}
				return emit(printer, res, res.Text)
			})
		},
	}
}
