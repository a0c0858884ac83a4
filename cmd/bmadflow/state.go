package main

import (
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/gorewood/bmadflow/internal/lifecycle"
	"github.com/gorewood/bmadflow/internal/output"
	"github.com/gorewood/bmadflow/internal/state"
)

// newStateCmd creates the state command.
func newStateCmd() *cobra.Command {
	var watch bool
	cmd := &cobra.Command{
		Use:   "state",
		Short: "Show project state",
		Long: `Show the project's phase, the workflow in progress and the completed
workflows.

With --watch the state is printed again every time it changes, for example
while an agent drives the project through 'bmadflow serve'. Stop with Ctrl-C.

Examples:
  bmadflow state
  bmadflow state --watch --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runOp(cmd, func(a *app, printer *output.Printer) error {
				if watch {
					return watchState(cmd, a, printer)
				}
				res, err := a.ctl.State(a.project)
				if err != nil {
					return err
				}
				return emit(printer, res, res.Text)
			})
		},
	}
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Print the state again whenever it changes")
	return cmd
}

// watchState streams the state until interrupted. JSON mode writes one
// document per change.
func watchState(cmd *cobra.Command, a *app, printer *output.Printer) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	var writeErr error
	err := a.store.Watch(ctx, a.project, func(st *state.ProjectState) {
		if writeErr != nil {
			return
		}
		if printer.IsJSON() {
			writeErr = printer.WriteJSON(st)
			return
		}
		printer.Markdown(lifecycle.RenderState(st))
		printer.Println()
	})
	if err != nil {
		return err
	}
	return writeErr
}
