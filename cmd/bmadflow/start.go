package main

import (
	"github.com/spf13/cobra"

	"github.com/gorewood/bmadflow/internal/output"
	"github.com/gorewood/bmadflow/internal/state"
)

// newStartCmd creates the start command.
func newStartCmd() *cobra.Command {
	var mode string
	cmd := &cobra.Command{
		Use:   "start <workflow>",
		Short: "Start a workflow",
		Long: `Start a workflow and print the agent persona, the execution rules and
the first step.

Modes:
  normal  interactive: the agent stops at every menu and waits for input
  yolo    autonomous: the agent continues on its own and decides defaults

Examples:
  bmadflow start create-product-brief
  bmadflow start create-prd --mode yolo`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOp(cmd, func(a *app, printer *output.Printer) error {
				res, err := a.ctl.Start(a.project, args[0], mode)
				if err != nil {
					return err
				}
				return emit(printer, res, res.Text)
			})
		},
	}
	cmd.Flags().StringVarP(&mode, "mode", "m", state.ModeNormal, "Execution mode: normal or yolo")
	return cmd
}
