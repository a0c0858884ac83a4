package lifecycle

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gorewood/bmadflow/internal/catalog"
	"github.com/gorewood/bmadflow/internal/output"
	"github.com/gorewood/bmadflow/internal/phase"
	"github.com/gorewood/bmadflow/internal/state"
)

var testNow = time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC)

const analystAgent = `agent:
  metadata:
    name: Mary
    title: Business Analyst
  persona:
    role: Strategic Business Analyst
    identity: Senior analyst.
    communication_style: Curious and precise.
    principles:
      - Find the root cause
`

const pmAgent = `agent:
  metadata:
    name: John
    title: Product Manager
  persona:
    role: Product Manager
    identity: Veteran PM.
    communication_style: Direct.
    principles: Ship value.
`

// bundleFiles is a small content bundle with three workflows:
// brief (analysis, three steps plus a continuation), prd (planning, one
// step, requires brief) and sprint (implementation, single body, requires
// prd).
var bundleFiles = map[string]string{
	"bmm/agents/analyst.agent.yaml": analystAgent,
	"bmm/agents/pm.agent.yaml":      pmAgent,

	"bmm/workflows/brief/workflow.md": "# Product Brief\n",
	"bmm/workflows/brief/steps/step-01-init.md": `---
name: 'step-01-init'
description: 'Initialize the brief'
nextStepFile: './step-02-vision.md'
---
Welcome {{project_name}} at {project-root}. Hello {user_name}.
`,
	"bmm/workflows/brief/steps/step-01b-continue.md": "---\nname: 'step-01b-continue'\n---\nResume an interrupted brief.\n",
	"bmm/workflows/brief/steps/step-02-vision.md": `---
name: 'step-02-vision'
outputFile: '{planning_artifacts}/brief-{{project_name}}.md'
---
Describe the vision for {project_name}.
`,
	"bmm/workflows/brief/steps/step-03-finish.md": "---\nname: 'step-03-finish'\n---\nWrap up {unknown_var}.\n",

	"bmm/workflows/prd/workflow.md":              "# PRD\n",
	"bmm/workflows/prd/steps/step-01-only.md":    "Write the PRD.\n",
	"bmm/workflows/sprint/workflow.yaml":         "name: sprint\ninstructions: Plan the sprint for {project_name}.\n",
	"bmm/workflows/orphan/workflow.md":           "# Orphan\n",
	"bmm/workflows/orphan/steps/not-a-step.md":   "nothing here\n",
	"bmm/workflows/faceless/workflow.md":         "# Faceless\n",
	"bmm/workflows/faceless/steps/step-01-a.md":  "A\n",
	"bmm/workflows/missingfile/steps/step-01.md": "A\n",
}

func testCatalog(t testing.TB) *catalog.Catalog {
	t.Helper()
	defs := []catalog.Definition{
		{
			ID: "brief", Name: "Product Brief", Description: "Shape the product idea", Phase: phase.Analysis,
			AgentID: "analyst", WorkflowFile: "bmm/workflows/brief/workflow.md", StepsDir: "bmm/workflows/brief/steps",
		},
		{
			ID: "prd", Name: "PRD", Description: "Write requirements", Phase: phase.Planning,
			AgentID: "pm", WorkflowFile: "bmm/workflows/prd/workflow.md", StepsDir: "bmm/workflows/prd/steps",
			Requires: []string{"brief"},
		},
		{
			ID: "sprint", Name: "Sprint Planning", Description: "Sequence the work", Phase: phase.Implementation,
			AgentID: "pm", WorkflowFile: "bmm/workflows/sprint/workflow.yaml", Requires: []string{"prd"},
		},
		{
			ID: "orphan", Name: "Orphan", Description: "Steps directory without steps", Phase: phase.Analysis,
			AgentID: "analyst", WorkflowFile: "bmm/workflows/orphan/workflow.md", StepsDir: "bmm/workflows/orphan/steps",
		},
		{
			ID: "faceless", Name: "Faceless", Description: "Agent without a persona file", Phase: phase.Analysis,
			AgentID: "ghost", WorkflowFile: "bmm/workflows/faceless/workflow.md", StepsDir: "bmm/workflows/faceless/steps",
		},
		{
			ID: "missingfile", Name: "Missing", Description: "No workflow file", Phase: phase.Analysis,
			AgentID: "analyst", WorkflowFile: "bmm/workflows/missingfile/workflow.md",
			StepsDir: "bmm/workflows/missingfile/steps",
		},
	}
	agents := map[string]string{
		"analyst": "bmm/agents/analyst.agent.yaml",
		"pm":      "bmm/agents/pm.agent.yaml",
		"ghost":   "bmm/agents/ghost.agent.yaml",
	}
	cat, err := catalog.New(defs, agents)
	if err != nil {
		t.Fatalf("catalog.New() error = %v", err)
	}
	return cat
}

func writeFiles(t testing.TB, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatalf("write %s: %v", rel, err)
		}
	}
}

type fixture struct {
	t       *testing.T
	bundle  string
	project string
	store   *state.Store
	ctl     *Controller
}

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("run-%d", n)
	}
}

func newController(bundle string, cat *catalog.Catalog, store StateStore) *Controller {
	return New(bundle, cat, store, WithClock(func() time.Time { return testNow }), WithIDs(sequentialIDs()))
}

// newFixture returns an uninitialized project next to the test bundle.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	bundle := t.TempDir()
	writeFiles(t, bundle, bundleFiles)
	store := state.NewStore()
	return &fixture{
		t:       t,
		bundle:  bundle,
		project: t.TempDir(),
		store:   store,
		ctl:     newController(bundle, testCatalog(t), store),
	}
}

// initialized returns a fixture whose project is named "Demo" and initialized.
func initialized(t *testing.T) *fixture {
	t.Helper()
	f := newFixture(t)
	if _, err := f.ctl.Init(f.project, "Demo"); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	return f
}

func (f *fixture) path(rel string) string {
	return filepath.Join(f.project, filepath.FromSlash(rel))
}

func (f *fixture) bundlePath(rel string) string {
	return filepath.Join(f.bundle, filepath.FromSlash(rel))
}

func (f *fixture) state() *state.ProjectState {
	f.t.Helper()
	st, err := f.store.Read(f.project)
	if err != nil {
		f.t.Fatalf("Read() error = %v", err)
	}
	if st == nil {
		f.t.Fatal("Read() = nil, want state")
	}
	return st
}

func (f *fixture) writeState(st *state.ProjectState) {
	f.t.Helper()
	if err := f.store.Write(f.project, st); err != nil {
		f.t.Fatalf("Write() error = %v", err)
	}
}

// snapshot returns the raw state document, or "" when absent.
func (f *fixture) snapshot() string {
	f.t.Helper()
	data, err := os.ReadFile(state.Path(f.project))
	if err != nil {
		return ""
	}
	return string(data)
}

func (f *fixture) start(workflow, mode string) *StartResult {
	f.t.Helper()
	res, err := f.ctl.Start(f.project, workflow, mode)
	if err != nil {
		f.t.Fatalf("Start(%s) error = %v", workflow, err)
	}
	return res
}

func (f *fixture) advance(target int) *AdvanceResult {
	f.t.Helper()
	res, err := f.ctl.Advance(f.project, target)
	if err != nil {
		f.t.Fatalf("Advance(%d) error = %v", target, err)
	}
	return res
}

func (f *fixture) save(content, file string) *SaveResult {
	f.t.Helper()
	res, err := f.ctl.Save(f.project, content, file)
	if err != nil {
		f.t.Fatalf("Save() error = %v", err)
	}
	return res
}

func (f *fixture) complete() *CompleteResult {
	f.t.Helper()
	res, err := f.ctl.Complete(f.project)
	if err != nil {
		f.t.Fatalf("Complete() error = %v", err)
	}
	return res
}

// markCompleted records ids as finished without running them.
func (f *fixture) markCompleted(ids ...string) {
	f.t.Helper()
	st := f.state()
	for _, id := range ids {
		st.CompletedWorkflows = append(st.CompletedWorkflows, state.CompletedWorkflow{ID: id, AgentID: "pm", CompletedAt: testNow})
	}
	f.writeState(st)
}

func wantKind(t *testing.T, err error, kind output.Kind) {
	t.Helper()
	if err == nil {
		t.Fatalf("error = nil, want %s", kind)
	}
	if got := output.KindOf(err); got != kind {
		t.Fatalf("error kind = %s (%v), want %s", got, err, kind)
	}
}
