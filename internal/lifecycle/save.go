package lifecycle

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/gorewood/bmadflow/internal/output"
	"github.com/gorewood/bmadflow/internal/state"
)

// How Save combined the new content with the destination.
const (
	WriteCreated  = "created"
	WriteAppended = "appended"
	WriteReplaced = "replaced"
)

// SaveResult reports a persisted artifact.
type SaveResult struct {
	Path  string `json:"path"`
	Bytes int    `json:"bytes"`
	Write string `json:"write"`
	// Step is the step the save was recorded against, absent when no
	// workflow is active.
	Step *int   `json:"step,omitempty"`
	Text string `json:"text"`
}

// Save persists content as workflow output. outputFile overrides the
// active workflow's destination; relative paths resolve against the
// project root. Content is appended to an existing file unless it already
// contains the file's text, in which case it replaces the file.
func (c *Controller) Save(projectPath, content, outputFile string) (*SaveResult, error) {
	dir, st, err := c.load(projectPath)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(content) == "" {
		return nil, output.PreconditionViolation("content is empty; cannot save an empty artifact")
	}

	active := st.ActiveWorkflow
	dest := outputFile
	if dest == "" && active != nil {
		dest = active.OutputFile
	}
	if dest == "" {
		return nil, output.PreconditionViolation(
			"no output file specified. Provide an output file or run a step that declares one")
	}
	if !filepath.IsAbs(dest) {
		dest = filepath.Join(dir, filepath.FromSlash(dest))
	}

	if active != nil && active.HasSavedCurrentStep() {
		return nil, output.PreconditionViolation(fmt.Sprintf(
			"step %d was already saved. Call `bmad_load_step` to advance before saving again", stepNumber(active)))
	}

	mode, restore, err := writeArtifact(dest, content)
	if err != nil {
		return nil, err
	}

	res := &SaveResult{Path: dest, Bytes: len(content), Write: mode}
	if active != nil {
		saved := active.CurrentStep
		active.OutputFile = dest
		active.LastSavedStep = &saved
		if err := c.store.Write(dir, st); err != nil {
			// The artifact and its save record change together.
			if rerr := restore(); rerr != nil {
				c.logger.Warn("cannot restore artifact after failed state write", "path", dest, "err", rerr)
			}
			return nil, err
		}
		res.Step = &saved
		c.logger.Debug("artifact saved", "project", dir, "workflow", active.ID, "run", active.RunID,
			"step", saved, "path", dest, "write", mode)
	}
	res.Text = renderSave(dir, res)
	return res, nil
}

// writeArtifact combines content with whatever dest already holds and
// replaces dest atomically. restore puts dest back as it was.
func writeArtifact(dest, content string) (mode string, restore func() error, err error) {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return "", nil, output.NewSystemErrorWithCause("failed to create "+filepath.Dir(dest), err)
	}

	existing, err := os.ReadFile(dest)
	existed := err == nil
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return "", nil, output.NewSystemErrorWithCause("failed to read "+dest, err)
	}

	mode = WriteCreated
	data := content
	switch {
	case len(existing) == 0:
	case strings.Contains(content, strings.TrimSpace(string(existing))):
		mode = WriteReplaced
	default:
		mode = WriteAppended
		data = string(existing) + "\n\n" + content
	}

	if err := state.AtomicWrite(dest, []byte(data)); err != nil {
		return "", nil, output.NewSystemErrorWithCause("failed to write "+dest, err)
	}

	restore = func() error {
		if !existed {
			return os.Remove(dest)
		}
		return state.AtomicWrite(dest, existing)
	}
	return mode, restore, nil
}

func renderSave(dir string, res *SaveResult) string {
	rel := res.Path
	if r, err := filepath.Rel(dir, res.Path); err == nil && !strings.HasPrefix(r, "..") {
		rel = filepath.ToSlash(r)
	}
	tail := "Output persisted."
	if res.Step != nil {
		tail = fmt.Sprintf("Step %d output persisted.", *res.Step)
	}
	return fmt.Sprintf("✅ Artifact saved: `%s` (%d bytes)\n\n%s", rel, res.Bytes, tail)
}
