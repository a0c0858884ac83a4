package lifecycle

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"pgregory.net/rapid"

	"github.com/gorewood/bmadflow/internal/output"
	"github.com/gorewood/bmadflow/internal/state"
)

func TestAdvance_WalksSteps(t *testing.T) {
	f := initialized(t)
	f.start("brief", state.ModeNormal)

	// step-01-init names step-02 explicitly, skipping the continuation file.
	res := f.advance(0)
	if res.Terminal || res.Final || res.Step != 2 {
		t.Errorf("first advance = %+v, want step 2", res)
	}
	wantOutput := f.path("_bmad-output/planning-artifacts/brief-Demo.md")
	if res.OutputFile != wantOutput {
		t.Errorf("OutputFile = %q, want %q", res.OutputFile, wantOutput)
	}
	for _, want := range []string{"## Step 2 of 3: step-02-vision", "Describe the vision for Demo.", "**When complete:**"} {
		if !strings.Contains(res.Text, want) {
			t.Errorf("Text missing %q:\n%s", want, res.Text)
		}
	}
	a := f.state().ActiveWorkflow
	if a.CurrentStep != 2 || a.OutputFile != wantOutput || a.CurrentStepFile != f.bundlePath("bmm/workflows/brief/steps/step-02-vision.md") {
		t.Errorf("ActiveWorkflow after advance = %+v", a)
	}

	// step-02 has no explicit successor; the listing supplies step-03.
	res = f.advance(0)
	if !res.Final || res.Terminal || res.Step != 3 {
		t.Errorf("second advance = %+v, want final step 3", res)
	}
	if !strings.Contains(res.Text, "**This is the final step.**") || !strings.Contains(res.Text, "Wrap up {unknown_var}.") {
		t.Errorf("Text = %s", res.Text)
	}
	if f.state().ActiveWorkflow.OutputFile != wantOutput {
		t.Error("OutputFile dropped by a step that declares none")
	}

	before := f.snapshot()
	res = f.advance(0)
	if !res.Terminal || res.Step != 3 {
		t.Errorf("third advance = %+v, want terminal", res)
	}
	if !strings.Contains(res.Text, `This is the final step of the "brief" workflow.`) || !strings.Contains(res.Text, "bmad_complete_workflow") {
		t.Errorf("Text = %s", res.Text)
	}
	if f.snapshot() != before {
		t.Error("terminal advance changed state")
	}
}

func TestAdvance_ExplicitStep(t *testing.T) {
	f := initialized(t)
	f.start("brief", state.ModeYolo)

	res := f.advance(3)
	if res.Step != 3 || !res.Final {
		t.Errorf("Advance(3) = %+v", res)
	}
	if got := f.state().ActiveWorkflow.CurrentStepFile; got != f.bundlePath("bmm/workflows/brief/steps/step-03-finish.md") {
		t.Errorf("CurrentStepFile = %q", got)
	}

	before := f.snapshot()
	_, err := f.ctl.Advance(f.project, 2)
	wantKind(t, err, output.KindPreconditionViolation)
	_, err = f.ctl.Advance(f.project, 3)
	wantKind(t, err, output.KindPreconditionViolation)
	_, err = f.ctl.Advance(f.project, 9)
	wantKind(t, err, output.KindContentError)
	if f.snapshot() != before {
		t.Error("rejected advance changed state")
	}
}

func TestAdvance_ContinuationKeepsNumberingMonotonic(t *testing.T) {
	f := initialized(t)
	f.start("brief", state.ModeNormal)

	// Point step-01 at its continuation, which shares number 1.
	writeFiles(t, f.bundle, map[string]string{
		"bmm/workflows/brief/steps/step-01-init.md": "---\nnextStepFile: './step-01b-continue.md'\n---\nInit.\n",
	})

	f.save("init notes", "notes.md")

	res := f.advance(0)
	if res.Step != 2 || res.StepNumber != 1 {
		t.Errorf("continuation Step = %d, StepNumber = %d, want 2 and 1", res.Step, res.StepNumber)
	}
	if filepath.Base(res.StepFile) != "step-01b-continue.md" {
		t.Errorf("StepFile = %q", res.StepFile)
	}
	if !strings.Contains(res.Text, "## Step 1 of 3: step-01b-continue") {
		t.Errorf("Text = %s", res.Text)
	}
	// The continuation has its own save slot.
	if saved := f.save("resumed notes", "notes.md"); *saved.Step != 2 {
		t.Errorf("saved Step = %d, want 2", *saved.Step)
	}

	res = f.advance(0)
	if res.Step != 3 || res.StepNumber != 2 || filepath.Base(res.StepFile) != "step-02-vision.md" {
		t.Errorf("after continuation = %+v, want step-02-vision", res)
	}
	if !strings.Contains(res.Text, "## Step 2 of 3: step-02-vision") {
		t.Errorf("Text = %s", res.Text)
	}

	_, err := f.ctl.Advance(f.project, 2)
	wantKind(t, err, output.KindPreconditionViolation)

	res = f.advance(3)
	if res.StepNumber != 3 || !res.Final || filepath.Base(res.StepFile) != "step-03-finish.md" {
		t.Errorf("Advance(3) = %+v, want final step-03-finish", res)
	}
	if res.Step <= 3 {
		t.Errorf("Step = %d, want the counter past 3", res.Step)
	}
	if !strings.Contains(res.Text, "## Step 3 of 3: step-03-finish") {
		t.Errorf("Text = %s", res.Text)
	}
	if st := RenderState(f.state()); !strings.Contains(st, "**Step:** 3 of 3") {
		t.Errorf("state text = %s", st)
	}
}

func TestAdvance_OutputFolderFromProjectSettings(t *testing.T) {
	absolute := t.TempDir()
	tests := []struct {
		name   string
		folder string
		want   func(f *fixture) string
	}{
		{
			name:   "relative",
			folder: "docs-out",
			want:   func(f *fixture) string { return f.path("docs-out/planning-artifacts/brief-Demo.md") },
		},
		{
			name:   "absolute",
			folder: absolute,
			want: func(*fixture) string {
				return filepath.Join(absolute, "planning-artifacts", "brief-Demo.md")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := initialized(t)
			settings := "user_name: Ada\noutput_folder: " + tt.folder + "\n"
			if err := os.WriteFile(f.path("_bmad/config.yaml"), []byte(settings), 0o600); err != nil {
				t.Fatal(err)
			}
			f.start("brief", state.ModeNormal)

			res := f.advance(0)
			if want := tt.want(f); res.OutputFile != want {
				t.Errorf("OutputFile = %q, want %q", res.OutputFile, want)
			}
		})
	}
}

func TestAdvance_SingleBodyIsTerminal(t *testing.T) {
	f := initialized(t)
	f.markCompleted("brief", "prd")
	f.start("sprint", state.ModeNormal)
	before := f.snapshot()

	res := f.advance(0)
	if !res.Terminal {
		t.Errorf("Advance() = %+v, want terminal", res)
	}
	if f.snapshot() != before {
		t.Error("state changed")
	}
}

func TestAdvance_Failures(t *testing.T) {
	t.Run("no active workflow", func(t *testing.T) {
		f := initialized(t)
		_, err := f.ctl.Advance(f.project, 0)
		wantKind(t, err, output.KindPreconditionViolation)
		if !strings.Contains(err.Error(), "no active workflow") {
			t.Errorf("error = %q", err)
		}
	})

	t.Run("missing successor file", func(t *testing.T) {
		f := initialized(t)
		f.start("brief", state.ModeNormal)
		writeFiles(t, f.bundle, map[string]string{
			"bmm/workflows/brief/steps/step-01-init.md": "---\nnextStepFile: './step-09-gone.md'\n---\nInit.\n",
		})
		before := f.snapshot()

		_, err := f.ctl.Advance(f.project, 0)
		wantKind(t, err, output.KindContentError)
		if !strings.Contains(err.Error(), "step-09-gone.md") {
			t.Errorf("error = %q, want the missing path", err)
		}
		if f.snapshot() != before {
			t.Error("state changed")
		}
	})

	t.Run("current step file removed", func(t *testing.T) {
		f := initialized(t)
		f.start("brief", state.ModeNormal)
		if err := os.Remove(f.bundlePath("bmm/workflows/brief/steps/step-01-init.md")); err != nil {
			t.Fatal(err)
		}
		_, err := f.ctl.Advance(f.project, 0)
		wantKind(t, err, output.KindContentError)
	})

	t.Run("malformed successor header", func(t *testing.T) {
		f := initialized(t)
		f.start("brief", state.ModeNormal)
		writeFiles(t, f.bundle, map[string]string{
			"bmm/workflows/brief/steps/step-02-vision.md": "---\nname: [broken\n---\nbody\n",
		})
		_, err := f.ctl.Advance(f.project, 0)
		wantKind(t, err, output.KindContentError)
	})
}

func TestAdvance_BundleRelativeSuccessor(t *testing.T) {
	f := initialized(t)
	f.start("brief", state.ModeNormal)
	writeFiles(t, f.bundle, map[string]string{
		"bmm/workflows/brief/steps/step-01-init.md": "---\nnextStepFile: 'bmm/workflows/prd/steps/step-01-only.md'\n---\nInit.\n",
	})

	res := f.advance(0)
	if res.StepFile != f.bundlePath("bmm/workflows/prd/steps/step-01-only.md") {
		t.Errorf("StepFile = %q", res.StepFile)
	}
	if res.Step != 2 {
		t.Errorf("Step = %d, want 2", res.Step)
	}
}

func TestAdvance_StepNumbersIncrease(t *testing.T) {
	bundle := t.TempDir()
	writeFiles(t, bundle, bundleFiles)
	cat := testCatalog(t)

	rapid.Check(t, func(rt *rapid.T) {
		project, err := os.MkdirTemp("", "bmadflow-project-")
		if err != nil {
			rt.Fatalf("MkdirTemp: %v", err)
		}
		defer os.RemoveAll(project) //nolint:errcheck // test cleanup

		store := state.NewStore()
		ctl := newController(bundle, cat, store)
		if _, err := ctl.Init(project, "Prop"); err != nil {
			rt.Fatalf("Init() error = %v", err)
		}
		if _, err := ctl.Start(project, "brief", state.ModeYolo); err != nil {
			rt.Fatalf("Start() error = %v", err)
		}

		last := 1
		for range rapid.IntRange(1, 6).Draw(rt, "moves") {
			target := rapid.IntRange(0, 4).Draw(rt, "target")
			res, err := ctl.Advance(project, target)
			st, readErr := store.Read(project)
			if readErr != nil {
				rt.Fatalf("Read() error = %v", readErr)
			}
			current := st.ActiveWorkflow.CurrentStep

			switch {
			case err != nil:
				if current != last {
					rt.Fatalf("failed advance moved step %d -> %d", last, current)
				}
			case res.Terminal:
				if current != last {
					rt.Fatalf("terminal advance moved step %d -> %d", last, current)
				}
			default:
				if current <= last {
					rt.Fatalf("advance to %d moved step %d -> %d", target, last, current)
				}
				if res.Step != current {
					rt.Fatalf("result step %d, state step %d", res.Step, current)
				}
			}
			last = current
		}
	})
}
