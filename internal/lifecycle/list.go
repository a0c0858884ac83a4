package lifecycle

import (
	"fmt"
	"slices"
	"strings"

	"github.com/gorewood/bmadflow/internal/catalog"
	"github.com/gorewood/bmadflow/internal/phase"
	"github.com/gorewood/bmadflow/internal/state"
)

// Entry is one workflow offered to the user.
type Entry struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Phase       phase.Phase `json:"phase"`
	AgentID     string      `json:"agentId"`
	Completed   bool        `json:"completed"`
}

// PhaseGroup holds the entries of one phase.
type PhaseGroup struct {
	Phase     phase.Phase `json:"phase"`
	Workflows []Entry     `json:"workflows"`
}

// ListResult reports the workflows a project can start.
type ListResult struct {
	ProjectName    string                `json:"projectName"`
	CurrentPhase   phase.Phase           `json:"currentPhase"`
	ActiveWorkflow *state.ActiveWorkflow `json:"activeWorkflow,omitempty"`
	Completed      []string              `json:"completed"`
	Groups         []PhaseGroup          `json:"groups"`
	Text           string                `json:"text"`
}

// List returns the workflows available to the project grouped by phase.
// While a workflow is running nothing is listed.
func (c *Controller) List(projectPath string) (*ListResult, error) {
	_, st, err := c.load(projectPath)
	if err != nil {
		return nil, err
	}

	completed := st.CompletedIDs()
	res := &ListResult{
		ProjectName:    st.ProjectName,
		CurrentPhase:   st.CurrentPhase,
		ActiveWorkflow: st.ActiveWorkflow,
		Completed:      completed,
		Groups:         []PhaseGroup{},
	}

	if st.ActiveWorkflow != nil {
		res.Text = renderBusy(st.ActiveWorkflow)
		return res, nil
	}

	res.Groups = group(c.catalog.Available(completed), completed)
	res.Text = renderList(st, completed, res.Groups)
	return res, nil
}

func entryFor(d catalog.Definition, completed []string) Entry {
	return Entry{
		ID:          d.ID,
		Name:        d.Name,
		Description: d.Description,
		Phase:       d.Phase,
		AgentID:     d.AgentID,
		Completed:   slices.Contains(completed, d.ID),
	}
}

// group buckets definitions by phase in the fixed phase order, keeping
// catalogue order inside each phase.
func group(defs []catalog.Definition, completed []string) []PhaseGroup {
	var groups []PhaseGroup
	for _, p := range phase.All() {
		var entries []Entry
		for _, d := range defs {
			if d.Phase == p {
				entries = append(entries, entryFor(d, completed))
			}
		}
		if len(entries) > 0 {
			groups = append(groups, PhaseGroup{Phase: p, Workflows: entries})
		}
	}
	if groups == nil {
		groups = []PhaseGroup{}
	}
	return groups
}

func renderBusy(a *state.ActiveWorkflow) string {
	lines := []string{
		fmt.Sprintf("⚠️ Workflow in progress: **%s** (step %d)", a.ID, stepNumber(a)),
		"Agent: " + a.AgentName,
		"Mode: " + a.Mode,
		"",
		"Complete the current workflow with `bmad_complete_workflow` before starting a new one.",
	}
	return strings.Join(lines, "\n")
}

func renderList(st *state.ProjectState, completed []string, groups []PhaseGroup) string {
	if len(groups) == 0 {
		return "🎉 All workflows completed! The project is fully planned and ready for implementation."
	}

	done := strings.Join(completed, ", ")
	if done == "" {
		done = "none"
	}
	lines := []string{
		fmt.Sprintf("## Available Workflows for %q", st.ProjectName),
		"**Current phase:** " + string(st.CurrentPhase),
		"**Completed:** " + done,
		"",
	}
	for _, g := range groups {
		lines = append(lines, "### "+g.Phase.Title())
		for _, e := range g.Workflows {
			mark := ""
			if e.Completed {
				mark = " ✅"
			}
			lines = append(lines, fmt.Sprintf("- **%s** — %s%s", e.ID, e.Description, mark))
		}
		lines = append(lines, "")
	}
	lines = append(lines, "Use `bmad_start_workflow` with a workflow ID and mode (normal/yolo) to begin.")
	return strings.Join(lines, "\n")
}
