package lifecycle

import (
	"github.com/gorewood/bmadflow/internal/state"
)

const executionRules = `## BMad Workflow Execution Rules

You are executing a BMad workflow. Follow these rules exactly.

### Core Mandates
- **Read COMPLETE content.** Never read workflow files partially.
- **Execute every instruction in order.**
- **Never skip a step.** Every step's execution is your responsibility.

### Step-File Architecture
- **Just-in-time loading:** only the current step is in context. Never load future steps.
- **Sequential enforcement:** steps are completed in order, without skipping.
- **State tracking:** after a step produces output, call ` + "`bmad_save_artifact`" + ` to persist it.

### Step Processing Rules
1. **READ COMPLETELY:** read the whole step before acting
2. **FOLLOW SEQUENCE:** execute the numbered sections in order
3. **SAVE STATE:** call ` + "`bmad_save_artifact`" + ` when the step produces output
4. **LOAD NEXT:** call ` + "`bmad_load_step`" + ` for the next step. Never open step files directly

### Critical Rules (NO EXCEPTIONS)
- 🛑 **NEVER** process more than one step at a time
- 📖 **ALWAYS** read the entire step before executing it
- 🚫 **NEVER** skip steps or reorder the sequence
- 🎯 **ALWAYS** follow the step's instructions exactly
- 📋 **NEVER** build a todo list from future steps
`

const yoloRules = `### YOLO Mode Active
- Skip confirmations and elicitation
- Keep prompts to a minimum
- Produce the workflow output yourself by simulating an expert user's answers
- When a step offers an [A]/[C]/[P]/[Y] menu, select [C] Continue automatically
- Do NOT halt at checkpoints. Proceed straight to the next step
- Once a step's output is saved, call ` + "`bmad_load_step`" + ` immediately
`

const normalRules = `### Normal Mode Active
- Full user interaction and confirmation at EVERY step
- When a step offers an [A]/[C]/[P]/[Y] menu, HALT and present it to the user
- Wait for the user's input before moving to the next step
- Checkpoint options:
  - [A] Advanced Elicitation: dig deeper into the current section
  - [C] Continue: proceed to the next step
  - [P] Party Mode: a group discussion presenting several agent perspectives
  - [Y] YOLO: finish the remaining steps without further prompts
`

const interactiveRules = `## Interactive Mode Rules
After completing each step:
1. Call ` + "`bmad_save_artifact`" + ` to save your output
2. Summarize what you produced
3. Say: "Step N complete. Awaiting your feedback before proceeding to step N+1."
4. STOP and wait for the user
5. Fold in the feedback, then continue with ` + "`bmad_load_step`" + `
`

// modeRules returns the operating rules for mode.
func modeRules(mode string) string {
	if mode == state.ModeYolo {
		return yoloRules
	}
	return normalRules
}
