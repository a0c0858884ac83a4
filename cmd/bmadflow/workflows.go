package main

import (
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gorewood/bmadflow/internal/catalog"
	"github.com/gorewood/bmadflow/internal/output"
	"github.com/gorewood/bmadflow/internal/phase"
)

// newWorkflowsCmd creates the workflows command.
func newWorkflowsCmd() *cobra.Command {
	var phaseFlag string
	cmd := &cobra.Command{
		Use:   "workflows",
		Short: "Browse the workflow catalogue",
		Long: `Show every workflow in the catalogue with its phase, agent and
prerequisites, regardless of project progress. Use 'bmadflow list' for what
the current project can start.

Examples:
  bmadflow workflows
  bmadflow workflows --phase planning --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runOp(cmd, func(a *app, printer *output.Printer) error {
				defs := a.catalog.All()
				if phaseFlag != "" {
					p, err := phase.Parse(phaseFlag)
					if err != nil {
						return output.NewErrorWithCause(output.KindUsage, err.Error(), err)
					}
					defs = a.catalog.ByPhase(p)
				}
				if printer.IsJSON() {
					return printer.WriteJSON(map[string]any{"workflows": defs})
				}
				printWorkflows(printer, defs)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&phaseFlag, "phase", "", "Only show workflows of this phase")
	return cmd
}

// printWorkflows renders one table per phase, in phase order.
func printWorkflows(printer *output.Printer, defs []catalog.Definition) {
	if len(defs) == 0 {
		printer.Println("No workflows.")
		return
	}
	for _, p := range phase.All() {
		var rows [][]string
		for _, d := range defs {
			if d.Phase != p {
				continue
			}
			requires := "-"
			if len(d.Requires) > 0 {
				requires = strings.Join(d.Requires, ", ")
			}
			rows = append(rows, []string{d.ID, d.AgentID, requires, d.Name})
		}
		if len(rows) == 0 {
			continue
		}
		printer.Section(p.Title())
		printer.Table([]string{"ID", "AGENT", "REQUIRES", "NAME"}, rows)
	}
	printer.Println()
	printer.KeyValue("Workflows", strconv.Itoa(len(defs)))
}
