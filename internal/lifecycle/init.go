package lifecycle

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gorewood/bmadflow/internal/config"
	"github.com/gorewood/bmadflow/internal/output"
	"github.com/gorewood/bmadflow/internal/state"
)

// InitResult reports the outcome of Init.
type InitResult struct {
	AlreadyInitialized bool                `json:"alreadyInitialized"`
	State              *state.ProjectState `json:"state"`
	Created            []string            `json:"created,omitempty"`
	Text               string              `json:"text"`
}

// scaffold lists the directories init creates, relative to the project root.
var scaffold = []string{
	state.DirName + "/bmm",
	state.DirName + "/core",
	PlanningArtifacts,
	ImplementationArtifacts,
}

// Init prepares projectPath for BMad workflows. Initializing a project
// twice is not an error; the result carries AlreadyInitialized and the
// existing state.
func (c *Controller) Init(projectPath, projectName string) (*InitResult, error) {
	dir, err := root(projectPath)
	if err != nil {
		return nil, err
	}

	existing, err := c.store.Read(dir)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return &InitResult{
			AlreadyInitialized: true,
			State:              existing,
			Text:               renderAlreadyInitialized(dir, existing),
		}, nil
	}

	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return nil, output.PreconditionViolation("project directory does not exist: " + dir)
	}

	name := strings.TrimSpace(projectName)
	if name == "" {
		name = filepath.Base(dir)
	}

	var created []string
	for _, rel := range scaffold {
		if err := os.MkdirAll(filepath.Join(dir, filepath.FromSlash(rel)), 0o755); err != nil {
			return nil, output.NewSystemErrorWithCause("failed to create "+rel, err)
		}
		created = append(created, rel+"/")
	}

	wrote, err := config.WriteDefaultProject(dir, name)
	if err != nil {
		return nil, output.NewSystemErrorWithCause("failed to write project settings", err)
	}
	if wrote {
		created = append(created, config.ProjectFile)
	}

	st := state.New(dir, name, c.timestamp())
	if err := c.store.Write(dir, st); err != nil {
		return nil, err
	}
	created = append(created, state.DirName+"/"+state.FileName)

	c.logger.Debug("project initialized", "project", dir, "name", name)
	return &InitResult{State: st, Created: created, Text: renderInit(name)}, nil
}

func renderAlreadyInitialized(dir string, st *state.ProjectState) string {
	active := "none"
	if st.ActiveWorkflow != nil {
		active = st.ActiveWorkflow.ID
	}
	completed := strings.Join(st.CompletedIDs(), ", ")
	if completed == "" {
		completed = "none"
	}
	return fmt.Sprintf("Project %q is already initialized at %s.\n"+
		"Current phase: %s\n"+
		"Active workflow: %s\n"+
		"Completed workflows: %s", st.ProjectName, dir, st.CurrentPhase, active, completed)
}

func renderInit(name string) string {
	lines := []string{
		fmt.Sprintf("✅ BMad project %q initialized.", name),
		"",
		"**Created:**",
		"- `_bmad/state.json`: project state tracking",
		"- `_bmad/config.yaml`: project settings used in step templates",
		"- `_bmad-output/planning-artifacts/`: briefs, PRDs, architecture docs",
		"- `_bmad-output/implementation-artifacts/`: sprint status, stories, reviews",
		"",
		"**Next step:** Run `bmad_list_workflows` to see available workflows, or start with \"Create Product Brief\".",
	}
	return strings.Join(lines, "\n")
}
