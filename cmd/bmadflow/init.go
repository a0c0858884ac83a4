package main

import (
	"github.com/spf13/cobra"

	"github.com/gorewood/bmadflow/internal/output"
)

// newInitCmd creates the init command.
func newInitCmd() *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a BMad project",
		Long: `Create the BMad layout in the project directory:

  _bmad/bmm/, _bmad/core/          bundle install locations
  _bmad/config.yaml                project settings (user name, languages)
  _bmad/state.json                 workflow state
  _bmad-output/planning-artifacts/ and implementation-artifacts/

Running init on an initialized project changes nothing and reports the
current state.

Examples:
  bmadflow init --name Acme
  bmadflow init -p ~/src/acme --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runOp(cmd, func(a *app, printer *output.Printer) error {
				res, err := a.ctl.Init(a.project, name)
				if err != nil {
					return err
				}
				return emit(printer, res, res.Text)
			})
		},
	}
	cmd.Flags().StringVarP(&name, "name", "n", "", "Project name (defaults to the directory name)")
	return cmd
}
