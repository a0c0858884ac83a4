package main

import (
	"github.com/spf13/cobra"

	"github.com/gorewood/bmadflow/internal/output"
)

// newCompleteCmd creates the complete command.
func newCompleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "complete",
		Short: "Finish the active workflow",
		Long: `Record the active workflow as completed, advance the project phase when
the workflow belongs to a later one, and recommend what to run next.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runOp(cmd, func(a *app, printer *output.Printer) error {
				res, err := a.ctl.Complete(a.project)
				if err != nil {
					return err
				}
				return emit(printer, res, res.Text)
			})
		},
	}
}
