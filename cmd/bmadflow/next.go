package main

import (
	"github.com/spf13/cobra"

	"github.com/gorewood/bmadflow/internal/output"
)

// newNextCmd creates the next command.
func newNextCmd() *cobra.Command {
	var stepNumber int
	cmd := &cobra.Command{
		Use:   "next",
		Short: "Load the next step of the active workflow",
		Long: `Advance the active workflow and print the next step's instructions.

With --step the workflow jumps forward to that step number instead. At the
last step nothing changes and you are asked to run 'bmadflow complete'.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runOp(cmd, func(a *app, printer *output.Printer) error {
				res, err := a.ctl.Advance(a.project, stepNumber)
				if err != nil {
					return err
				}
				return emit(printer, res, res.Text)
			})
		},
	}
	cmd.Flags().IntVarP(&stepNumber, "step", "s", 0, "Jump to this later step number")
	return cmd
}
