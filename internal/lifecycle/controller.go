// Package lifecycle drives BMad workflows through their steps for a project.
//
// Every operation is one read-modify-write cycle against the project state
// document. State is written only after every check has passed and every
// file has been loaded, so a failed operation leaves the project untouched.
// Failures are returned as *output.ExitError values carrying a kind.
//
// The controller does no locking. Callers drive one project from one
// session at a time.
package lifecycle

import (
	"io"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/gorewood/bmadflow/internal/catalog"
	"github.com/gorewood/bmadflow/internal/config"
	"github.com/gorewood/bmadflow/internal/output"
	"github.com/gorewood/bmadflow/internal/persona"
	"github.com/gorewood/bmadflow/internal/state"
)

// ProjectConfigFunc loads the per-project settings used for template
// variables.
type ProjectConfigFunc func(projectPath, projectName string) (config.Project, error)

// StateStore reads and writes project state documents. *state.Store is
// the file-backed implementation.
type StateStore interface {
	Read(projectPath string) (*state.ProjectState, error)
	Write(projectPath string, st *state.ProjectState) error
}

// Controller implements the workflow lifecycle operations.
type Controller struct {
	bundleRoot string
	catalog    *catalog.Catalog
	store      StateStore
	personas   persona.Provider
	project    ProjectConfigFunc
	now        func() time.Time
	newID      func() string
	logger     *log.Logger
}

// Option configures a Controller.
type Option func(*Controller)

// WithPersonas replaces the persona provider, e.g. with a cached one.
func WithPersonas(p persona.Provider) Option {
	return func(c *Controller) { c.personas = p }
}

// WithClock sets the time source for timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// WithIDs sets the generator for workflow run ids.
func WithIDs(newID func() string) Option {
	return func(c *Controller) { c.newID = newID }
}

// WithLogger sets the logger for transition records.
func WithLogger(l *log.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithProjectConfig sets how project settings are loaded.
func WithProjectConfig(fn ProjectConfigFunc) Option {
	return func(c *Controller) { c.project = fn }
}

// New creates a Controller serving workflows from bundleRoot.
func New(bundleRoot string, cat *catalog.Catalog, store StateStore, opts ...Option) *Controller {
	c := &Controller{
		bundleRoot: bundleRoot,
		catalog:    cat,
		store:      store,
		project:    config.LoadProject,
		now:        time.Now,
		newID:      uuid.NewString,
		logger:     log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.personas == nil {
		c.personas = persona.NewLoader(bundleRoot, cat)
	}
	return c
}

// Catalog returns the workflow catalogue the controller serves.
func (c *Controller) Catalog() *catalog.Catalog {
	return c.catalog
}

// BundleRoot returns the content bundle location.
func (c *Controller) BundleRoot() string {
	return c.bundleRoot
}

func (c *Controller) timestamp() time.Time {
	return c.now().UTC()
}

// root normalizes a project path to an absolute, clean path.
func root(projectPath string) (string, error) {
	abs, err := filepath.Abs(projectPath)
	if err != nil {
		return "", output.NewSystemErrorWithCause("cannot resolve project path "+projectPath, err)
	}
	return abs, nil
}

// load reads the project state and fails when the project has none.
func (c *Controller) load(projectPath string) (string, *state.ProjectState, error) {
	dir, err := root(projectPath)
	if err != nil {
		return "", nil, err
	}
	st, err := c.store.Read(dir)
	if err != nil {
		return "", nil, err
	}
	if st == nil {
		return "", nil, output.NotInitialized(dir)
	}
	return dir, st, nil
}

// loadActive is load plus the requirement that a workflow is running.
func (c *Controller) loadActive(projectPath, hint string) (string, *state.ProjectState, error) {
	dir, st, err := c.load(projectPath)
	if err != nil {
		return "", nil, err
	}
	if st.ActiveWorkflow == nil {
		return "", nil, output.PreconditionViolation("no active workflow. " + hint)
	}
	return dir, st, nil
}
