// Package main provides the entry point for the bmadflow CLI.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/gorewood/bmadflow/internal/output"
)

// Build info set via ldflags at build time by goreleaser.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// isJSONMode reads the --json persistent flag from the command hierarchy.
func isJSONMode(cmd *cobra.Command) bool {
	flag := cmd.Flags().Lookup("json")
	if flag == nil {
		flag = cmd.Root().PersistentFlags().Lookup("json")
	}
	return flag != nil && flag.Value.String() == "true"
}

// useColor resolves --color against the command's output writer.
func useColor(cmd *cobra.Command) bool {
	mode := output.ColorAuto
	if flag := cmd.Flags().Lookup("color"); flag != nil {
		mode = flag.Value.String()
	}
	return output.ResolveColorMode(mode, output.IsTTY(cmd.OutOrStdout()))
}

// newPrinter builds the printer every command writes through.
func newPrinter(cmd *cobra.Command) *output.Printer {
	return output.NewPrinter(cmd.OutOrStdout(), isJSONMode(cmd), useColor(cmd)).
		WithStderr(cmd.ErrOrStderr())
}

// buildVersion returns the full version string including commit and date.
func buildVersion() string {
	if commit == "none" && date == "unknown" {
		return version
	}
	shortCommit := commit
	if len(commit) > 7 {
		shortCommit = commit[:7]
	}
	return fmt.Sprintf("%s (%s, %s)", version, shortCommit, date)
}

func main() {
	os.Exit(run())
}

func run() int {
	cmd := newRootCmd()
	err := fang.Execute(context.Background(), cmd, fang.WithVersion(buildVersion()))
	return output.GetExitCode(err)
}

// newRootCmd creates the root command for the bmadflow CLI.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bmadflow",
		Short: "Drive BMad Method workflows step by step",
		Long: `bmadflow - run BMad Method workflows one step at a time.

A project moves through four phases (analysis, planning, solutioning,
implementation). Each workflow is run by an agent persona and is split into
step files that are loaded one at a time, so an agent only ever holds the
current step. Progress lives in <project>/_bmad/state.json.

Typical session:
  bmadflow init --name Acme
  bmadflow list
  bmadflow start create-product-brief
  bmadflow save --file notes.md
  bmadflow next
  bmadflow complete

Agents can drive the same operations over MCP with 'bmadflow serve'.
All commands support --json for structured output.`,
		Version:       buildVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if isJSONMode(cmd) {
				err := output.NewUserError("no command specified. Run 'bmadflow --help' for usage")
				newPrinter(cmd).Error(err)
				return err
			}
			return cmd.Help()
		},
	}

	flags := cmd.PersistentFlags()
	flags.Bool("json", false, "Output in JSON format")
	flags.String("color", output.ColorAuto, "Color output: auto, always or never")
	flags.StringP("project", "p", ".", "Project root directory")
	flags.String("bundle", "", "BMad content bundle directory (overrides BMADFLOW_BUNDLE)")
	flags.BoolP("verbose", "v", false, "Log state transitions to stderr")

	lipgloss.SetHasDarkBackground(true)

	addCommandGroups(cmd)
	addCommands(cmd)

	return cmd
}

// addCommandGroups defines the command groups for help output.
func addCommandGroups(cmd *cobra.Command) {
	cmd.AddGroup(&cobra.Group{ID: "project", Title: "Project Commands:"})
	cmd.AddGroup(&cobra.Group{ID: "workflow", Title: "Workflow Commands:"})
	cmd.AddGroup(&cobra.Group{ID: "agent", Title: "Agent Commands:"})
}

// addCommands adds all subcommands with their group assignments.
func addCommands(cmd *cobra.Command) {
	addGroupedCommand(cmd, newInitCmd(), "project")
	addGroupedCommand(cmd, newStateCmd(), "project")
	addGroupedCommand(cmd, newWorkflowsCmd(), "project")

	addGroupedCommand(cmd, newListCmd(), "workflow")
	addGroupedCommand(cmd, newStartCmd(), "workflow")
	addGroupedCommand(cmd, newNextCmd(), "workflow")
	addGroupedCommand(cmd, newSaveCmd(), "workflow")
	addGroupedCommand(cmd, newCompleteCmd(), "workflow")

	addGroupedCommand(cmd, newServeCmd(), "agent")
}

// addGroupedCommand adds a subcommand with a group assignment.
func addGroupedCommand(parent *cobra.Command, child *cobra.Command, groupID string) {
	child.GroupID = groupID
	parent.AddCommand(child)
}
