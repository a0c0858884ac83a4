package lifecycle

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gorewood/bmadflow/internal/output"
	"github.com/gorewood/bmadflow/internal/state"
	"github.com/gorewood/bmadflow/internal/step"
)

// AdvanceResult reports the step that was loaded, or that none remain.
type AdvanceResult struct {
	// Terminal is set when the current step has no successor; nothing was
	// loaded and state is unchanged.
	Terminal bool `json:"terminal"`
	Final    bool `json:"final"`
	Step     int  `json:"step"`
	// StepNumber is the number in the step's filename. It trails Step once
	// a lettered continuation has been visited.
	StepNumber int    `json:"stepNumber"`
	TotalSteps *int   `json:"totalSteps"`
	StepFile   string `json:"stepFile,omitempty"`
	OutputFile string `json:"outputFile,omitempty"`
	Text       string `json:"text"`
}

// Advance moves the active workflow to its next step. When target is
// positive the primary step with that number is loaded instead; it must lie
// after the current step file's number.
func (c *Controller) Advance(projectPath string, target int) (*AdvanceResult, error) {
	dir, st, err := c.loadActive(projectPath, "Start one with `bmad_start_workflow`")
	if err != nil {
		return nil, err
	}
	active := st.ActiveWorkflow
	vars := c.vars(dir, st)

	var nextPath string
	if target > 0 {
		if at := stepNumber(active); target <= at {
			return nil, output.PreconditionViolation(fmt.Sprintf(
				"cannot move to step %d: workflow %q is already at step %d", target, active.ID, at))
		}
		if nextPath, err = step.Lookup(filepath.Dir(active.CurrentStepFile), target); err != nil {
			return nil, err
		}
	} else {
		ref, ok, err := c.successor(active)
		if err != nil {
			return nil, err
		}
		if !ok {
			return &AdvanceResult{
				Terminal:   true,
				Final:      true,
				Step:       active.CurrentStep,
				StepNumber: stepNumber(active),
				TotalSteps: active.TotalSteps,
				StepFile:   active.CurrentStepFile,
				OutputFile: active.OutputFile,
				Text: fmt.Sprintf("This is the final step of the %q workflow.\n"+
					"Call `bmad_complete_workflow` to finalize.", active.ID),
			}, nil
		}
		nextPath = step.ResolvePath(step.Resolve(ref, vars), active.CurrentStepFile, c.bundleRoot)
	}

	next, err := step.Load(nextPath)
	if err != nil {
		return nil, err
	}

	// The counter only moves forward so a continuation step gets its own
	// save slot.
	counter := max(next.Number, active.CurrentStep+1)
	active.CurrentStep = counter
	active.CurrentStepFile = nextPath
	if next.Frontmatter.OutputFile != "" {
		active.OutputFile = resolveOutput(next.Frontmatter.OutputFile, dir, vars)
	}

	final, err := isFinal(next)
	if err != nil {
		return nil, err
	}

	if err := c.store.Write(dir, st); err != nil {
		return nil, err
	}
	c.logger.Debug("step advanced", "project", dir, "workflow", active.ID, "run", active.RunID,
		"step", counter, "file", filepath.Base(nextPath))

	return &AdvanceResult{
		Final:      final,
		Step:       counter,
		StepNumber: stepNumber(active),
		TotalSteps: active.TotalSteps,
		StepFile:   nextPath,
		OutputFile: active.OutputFile,
		Text:       renderStep(active, next, step.Resolve(next.Content, vars), final),
	}, nil
}

// successor finds the reference to the step after the active one.
// Single-body workflows have no successor.
func (c *Controller) successor(active *state.ActiveWorkflow) (string, bool, error) {
	if def, ok := c.catalog.Get(active.ID); ok && !def.HasSteps() {
		return "", false, nil
	}
	current, err := step.Load(active.CurrentStepFile)
	if err != nil {
		return "", false, err
	}
	return step.Successor(current)
}

func isFinal(u *step.Unit) (bool, error) {
	_, ok, err := step.Successor(u)
	return !ok, err
}

// stepNumber is the number in the active step's filename, or the counter
// for files that carry none.
func stepNumber(a *state.ActiveWorkflow) int {
	if name, ok := step.ParseName(filepath.Base(a.CurrentStepFile)); ok {
		return name.Number
	}
	return a.CurrentStep
}

// stepLabel renders "N" or "N of M" using the step file's number.
func stepLabel(a *state.ActiveWorkflow) string {
	n := stepNumber(a)
	if a.TotalSteps == nil {
		return fmt.Sprintf("%d", n)
	}
	return fmt.Sprintf("%d of %d", n, *a.TotalSteps)
}

func renderStep(a *state.ActiveWorkflow, u *step.Unit, content string, final bool) string {
	label := stepLabel(a)

	footer := "**When complete:** Call `bmad_save_artifact` to save this step's output, then `bmad_load_step` for the next step."
	if final {
		footer = "**This is the final step.** Call `bmad_save_artifact` to save output, then `bmad_complete_workflow` to finalize."
	}

	lines := []string{
		fmt.Sprintf("## Step %s: %s", label, u.Title()),
		"",
		content,
		"",
		"---",
		"",
		footer,
	}
	return strings.Join(lines, "\n")
}
