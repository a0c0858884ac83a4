package state

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/gorewood/bmadflow/internal/output"
)

// DirName is the project-local directory holding configuration and state.
const DirName = "_bmad"

// FileName is the state document's name inside DirName.
const FileName = "state.json"

// Store reads and writes project state documents.
// It does no locking; callers serialise access per project.
type Store struct {
	logger *log.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used to report ignored state documents.
func WithLogger(l *log.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewStore creates a Store.
func NewStore(opts ...Option) *Store {
	s := &Store{logger: log.New(io.Discard)}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Dir returns the project's _bmad directory.
func Dir(projectPath string) string {
	return filepath.Join(projectPath, DirName)
}

// Path returns the location of the project's state document.
func Path(projectPath string) string {
	return filepath.Join(projectPath, DirName, FileName)
}

// Exists reports whether a state document is present for the project.
func (s *Store) Exists(projectPath string) bool {
	info, err := os.Stat(Path(projectPath))
	return err == nil && info.Mode().IsRegular()
}

// Read loads the project's state. A missing document yields (nil, nil).
// A document that cannot be parsed is treated as missing and logged.
// Other I/O failures are system errors.
func (s *Store) Read(projectPath string) (*ProjectState, error) {
	path := Path(projectPath)
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, output.NewSystemErrorWithCause("failed to stat state file: "+path, err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, output.NewSystemErrorWithCause("failed to read state file: "+path, err)
	}

	st, err := FromJSON(data)
	if err != nil {
		s.logger.Warn("ignoring unparsable state document", "path", path, "err", err)
		return nil, nil
	}
	return st, nil
}

// Write persists st, creating the _bmad directory when absent.
// The document is replaced atomically.
func (s *Store) Write(projectPath string, st *ProjectState) error {
	data, err := st.ToJSON()
	if err != nil {
		return output.NewSystemErrorWithCause("failed to serialize state", err)
	}

	if err := os.MkdirAll(Dir(projectPath), 0o755); err != nil {
		return output.NewSystemErrorWithCause("failed to create state directory", err)
	}

	if err := AtomicWrite(Path(projectPath), data); err != nil {
		return output.NewSystemErrorWithCause("failed to write state", err)
	}
	s.logger.Debug("state written", "project", projectPath, "phase", st.CurrentPhase)
	return nil
}

// AtomicWrite writes data to path through a temp file in the same
// directory followed by a rename, so readers never see a partial file.
func AtomicWrite(path string, data []byte) error {
	tmpFile, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() { _ = os.Remove(tmpPath) }()

	if _, err := tmpFile.Write(data); err != nil {
		_ = tmpFile.Close()
		return fmt.Errorf("write data: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
