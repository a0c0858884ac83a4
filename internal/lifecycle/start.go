package lifecycle

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/gorewood/bmadflow/internal/catalog"
	"github.com/gorewood/bmadflow/internal/config"
	"github.com/gorewood/bmadflow/internal/output"
	"github.com/gorewood/bmadflow/internal/persona"
	"github.com/gorewood/bmadflow/internal/state"
	"github.com/gorewood/bmadflow/internal/step"
)

// StartResult reports the workflow run that was started.
type StartResult struct {
	Workflow *state.ActiveWorkflow `json:"activeWorkflow"`
	Persona  *persona.Persona      `json:"persona"`
	Text     string                `json:"text"`
}

// required lists the project entries a properly initialized project has.
var required = []string{config.ProjectFile, state.DirName + "/core", state.DirName + "/bmm"}

// Start begins workflowID in the given mode ("normal" or "yolo").
func (c *Controller) Start(projectPath, workflowID, mode string) (*StartResult, error) {
	dir, st, err := c.load(projectPath)
	if err != nil {
		return nil, err
	}

	for _, rel := range required {
		if _, err := os.Stat(filepath.Join(dir, filepath.FromSlash(rel))); err != nil {
			return nil, output.StructuralIncompleteness(fmt.Sprintf(
				"project structure is incomplete: missing `%s`. Run `bmad_init_project` to initialize the project; "+
					"do not create project directories by hand", rel))
		}
	}

	if a := st.ActiveWorkflow; a != nil {
		return nil, output.PreconditionViolation(fmt.Sprintf(
			"workflow %q is already in progress (step %d). Complete it with `bmad_complete_workflow` first",
			a.ID, stepNumber(a)))
	}

	def, ok := c.catalog.Get(workflowID)
	if !ok {
		return nil, output.UnknownIdentifier(fmt.Sprintf(
			"unknown workflow %q. Use `bmad_list_workflows` to see available options", workflowID))
	}

	completed := st.CompletedIDs()
	var unmet []string
	for _, req := range def.Requires {
		if !slices.Contains(completed, req) {
			unmet = append(unmet, req)
		}
	}
	if len(unmet) > 0 {
		return nil, output.PreconditionViolation(fmt.Sprintf(
			"missing prerequisites for %q: %s. Complete those workflows first", workflowID, strings.Join(unmet, ", ")))
	}

	if mode == "" {
		mode = state.ModeNormal
	}
	if !state.ValidMode(mode) {
		return nil, output.NewUserError(fmt.Sprintf("invalid mode %q: must be %q or %q", mode, state.ModeNormal, state.ModeYolo))
	}

	p, err := c.personas.Persona(def.AgentID)
	if err != nil {
		return nil, err
	}

	first, err := c.firstStep(def)
	if err != nil {
		return nil, err
	}

	active := &state.ActiveWorkflow{
		ID:              def.ID,
		RunID:           c.newID(),
		AgentID:         def.AgentID,
		AgentName:       p.Name,
		Mode:            mode,
		CurrentStep:     1,
		TotalSteps:      first.total,
		CurrentStepFile: first.path,
		StartedAt:       c.timestamp(),
	}
	st.ActiveWorkflow = active
	if err := c.store.Write(dir, st); err != nil {
		return nil, err
	}

	c.logger.Debug("workflow started", "project", dir, "workflow", def.ID, "run", active.RunID, "mode", mode)

	content := step.Resolve(first.content, c.vars(dir, st))
	return &StartResult{
		Workflow: active,
		Persona:  p,
		Text:     renderStart(dir, st.ProjectName, def, p, active, content),
	}, nil
}

type firstStep struct {
	path    string
	content string
	total   *int
}

// firstStep loads step 1 of def: the first file of its steps directory, or
// the workflow definition itself for single-body workflows.
func (c *Controller) firstStep(def catalog.Definition) (*firstStep, error) {
	workflowFile := filepath.Join(c.bundleRoot, filepath.FromSlash(def.WorkflowFile))
	if _, err := os.Stat(workflowFile); err != nil {
		return nil, output.ContentError("cannot read workflow file "+workflowFile, err)
	}

	if !def.HasSteps() {
		body, err := step.ReadBody(workflowFile)
		if err != nil {
			return nil, err
		}
		return &firstStep{path: workflowFile, content: body}, nil
	}

	dir := filepath.Join(c.bundleRoot, filepath.FromSlash(def.StepsDir))
	path, err := step.First(dir)
	if err != nil {
		return nil, err
	}
	unit, err := step.Load(path)
	if err != nil {
		return nil, err
	}
	total, err := step.Count(dir)
	if err != nil {
		return nil, err
	}
	return &firstStep{path: path, content: unit.Content, total: &total}, nil
}

func renderStart(
	dir, projectName string, def catalog.Definition, p *persona.Persona, a *state.ActiveWorkflow, content string,
) string {
	steps := "unknown"
	if a.TotalSteps != nil {
		steps = fmt.Sprintf("%d", *a.TotalSteps)
	}

	sections := []string{
		"# BMad Workflow Agent: " + p.Name,
		"",
		"You are a dedicated workflow agent. Complete this workflow and stop.",
		"",
		persona.Format(p),
		"",
		"---",
		"",
		executionRules,
		modeRules(a.Mode),
	}
	if a.Mode == state.ModeNormal {
		sections = append(sections, interactiveRules)
	}
	sections = append(sections,
		"---",
		"",
		"## Workflow Context",
		"",
		fmt.Sprintf("**Project:** %s at `%s`", projectName, dir),
		fmt.Sprintf("**Workflow:** %s (%s)", def.Name, def.ID),
		"**Mode:** "+a.Mode,
		"**Steps:** "+steps,
		"",
		"---",
		"",
		"## Step 1 — Execute Now",
		"",
		content,
		"",
		"---",
		"",
		fmt.Sprintf("**After each step:** Call `bmad_save_artifact` with projectPath=%q to save output, "+
			"then `bmad_load_step` with projectPath=%q for the next step.", dir, dir),
		fmt.Sprintf("**Final step:** Call `bmad_save_artifact`, then `bmad_complete_workflow` with projectPath=%q.", dir),
		"**Do NOT start additional workflows.** Complete this one and stop.",
	)
	return strings.Join(sections, "\n")
}
