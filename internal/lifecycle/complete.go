package lifecycle

import (
	"fmt"
	"slices"
	"strings"

	"github.com/gorewood/bmadflow/internal/phase"
	"github.com/gorewood/bmadflow/internal/state"
)

// CompleteResult reports a finished workflow and what can run next.
type CompleteResult struct {
	Completed    state.CompletedWorkflow `json:"completed"`
	CurrentPhase phase.Phase             `json:"currentPhase"`
	Recommended  []Entry                 `json:"recommended"`
	Text         string                  `json:"text"`
}

// Complete finishes the active workflow, records it in the project history
// and moves the project phase forward when the workflow belongs to a later
// phase.
func (c *Controller) Complete(projectPath string) (*CompleteResult, error) {
	dir, st, err := c.loadActive(projectPath, "Nothing to complete")
	if err != nil {
		return nil, err
	}
	active := st.ActiveWorkflow

	record := state.CompletedWorkflow{
		ID:          active.ID,
		RunID:       active.RunID,
		AgentID:     active.AgentID,
		OutputFile:  active.OutputFile,
		CompletedAt: c.timestamp(),
	}
	st.CompletedWorkflows = append(st.CompletedWorkflows, record)
	st.ActiveWorkflow = nil

	if def, ok := c.catalog.Get(active.ID); ok && def.Phase.Later(st.CurrentPhase) {
		st.CurrentPhase = def.Phase
	}

	if err := c.store.Write(dir, st); err != nil {
		return nil, err
	}
	c.logger.Debug("workflow completed", "project", dir, "workflow", active.ID, "run", active.RunID,
		"phase", st.CurrentPhase)

	completed := st.CompletedIDs()
	recommended := []Entry{}
	for _, d := range c.catalog.Available(completed) {
		if !slices.Contains(completed, d.ID) {
			recommended = append(recommended, entryFor(d, completed))
		}
	}

	return &CompleteResult{
		Completed:    record,
		CurrentPhase: st.CurrentPhase,
		Recommended:  recommended,
		Text:         renderComplete(active, recommended),
	}, nil
}

func renderComplete(a *state.ActiveWorkflow, recommended []Entry) string {
	output := a.OutputFile
	if output == "" {
		output = "none"
	}
	lines := []string{
		fmt.Sprintf("✅ Workflow %q completed!", a.ID),
		"",
		fmt.Sprintf("**Agent:** %s (%s)", a.AgentName, a.AgentID),
		"**Output:** " + output,
		"**Started:** " + a.StartedAt.Format(timeLayout),
		"",
	}

	if len(recommended) == 0 {
		lines = append(lines, "🎉 All available workflows are complete! The project is ready for the next phase.")
		return strings.Join(lines, "\n")
	}

	lines = append(lines, "## Recommended Next Steps", "")
	for _, e := range recommended {
		lines = append(lines, fmt.Sprintf("- **%s** — %s", e.ID, e.Description))
	}
	lines = append(lines, "", "Use `bmad_start_workflow` to begin the next workflow.")
	return strings.Join(lines, "\n")
}
