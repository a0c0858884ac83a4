package lifecycle

import (
	"fmt"
	"strings"
	"time"

	"github.com/gorewood/bmadflow/internal/state"
)

const timeLayout = time.RFC3339

// StateResult carries the project state and its summary.
type StateResult struct {
	State *state.ProjectState `json:"state"`
	Text  string              `json:"text"`
}

// State returns the project's current state.
func (c *Controller) State(projectPath string) (*StateResult, error) {
	_, st, err := c.load(projectPath)
	if err != nil {
		return nil, err
	}
	return &StateResult{State: st, Text: RenderState(st)}, nil
}

// RenderState summarizes st as markdown.
func RenderState(st *state.ProjectState) string {
	lines := []string{
		"## BMad Project: " + st.ProjectName,
		"",
		"**Phase:** " + string(st.CurrentPhase),
		"**Initialized:** " + st.CreatedAt.Format(timeLayout),
		"",
		"### Active Workflow",
	}

	if w := st.ActiveWorkflow; w != nil {
		out := w.OutputFile
		if out == "" {
			out = "not yet set"
		}
		lines = append(lines,
			"- **Workflow:** "+w.ID,
			fmt.Sprintf("- **Agent:** %s (%s)", w.AgentName, w.AgentID),
			"- **Mode:** "+w.Mode,
			"- **Step:** "+stepLabel(w),
			"- **Output:** "+out,
			"- **Started:** "+w.StartedAt.Format(timeLayout),
		)
	} else {
		lines = append(lines, "None")
	}

	lines = append(lines, "", "### Completed Workflows")
	if len(st.CompletedWorkflows) == 0 {
		lines = append(lines, "None yet")
	}
	for _, w := range st.CompletedWorkflows {
		lines = append(lines, fmt.Sprintf("- **%s** — %s → `%s`", w.ID, w.CompletedAt.Format(timeLayout), w.OutputFile))
	}
	return strings.Join(lines, "\n")
}
