// Package catalog holds the registry of BMad workflow definitions.
//
// A Catalog is built once, validated at construction, and never mutated
// afterwards. The default catalogue ships embedded in the binary; an
// alternate one can be loaded from a YAML file with the same layout.
package catalog

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/gorewood/bmadflow/internal/phase"
)

//go:embed catalog.yaml
var defaultYAML []byte

// Definition describes one workflow.
type Definition struct {
	ID           string      `yaml:"id"                  json:"id"`
	Name         string      `yaml:"name"                json:"name"`
	Description  string      `yaml:"description"         json:"description"`
	Phase        phase.Phase `yaml:"phase"               json:"phase"`
	AgentID      string      `yaml:"agent"               json:"agentId"`
	WorkflowFile string      `yaml:"workflow_file"       json:"workflowFile"`
	StepsDir     string      `yaml:"steps_dir,omitempty" json:"stepsDir,omitempty"`
	Requires     []string    `yaml:"requires,omitempty"  json:"requires"`
}

// HasSteps reports whether the workflow is split into step files.
func (d Definition) HasSteps() bool {
	return d.StepsDir != ""
}

func (d Definition) clone() Definition {
	d.Requires = slices.Clone(d.Requires)
	return d
}

// Catalog is an immutable, validated set of workflow definitions plus the
// agent id to persona file mapping.
type Catalog struct {
	defs   []Definition
	index  map[string]int
	agents map[string]string
}

type document struct {
	Agents    map[string]string `yaml:"agents"`
	Workflows []Definition      `yaml:"workflows"`
}

// New validates defs and agents and returns a Catalog holding copies of them.
// Declaration order of defs is preserved by every query.
func New(defs []Definition, agents map[string]string) (*Catalog, error) {
	c := &Catalog{
		defs:   make([]Definition, 0, len(defs)),
		index:  make(map[string]int, len(defs)),
		agents: make(map[string]string, len(agents)),
	}
	for id, file := range agents {
		c.agents[id] = file
	}
	for _, def := range defs {
		if err := c.add(def); err != nil {
			return nil, err
		}
	}
	if err := c.checkRequires(); err != nil {
		return nil, err
	}
	if err := c.checkAcyclic(); err != nil {
		return nil, err
	}
	return c, nil
}

// Load parses a YAML catalogue document.
func Load(r io.Reader) (*Catalog, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var doc document
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("catalogue document is empty")
		}
		return nil, fmt.Errorf("parsing catalogue: %w", err)
	}
	return New(doc.Workflows, doc.Agents)
}

// LoadFile reads and parses a YAML catalogue file.
func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening catalogue %s: %w", path, err)
	}
	defer f.Close() //nolint:errcheck // read-only file

	c, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

var loadDefault = sync.OnceValues(func() (*Catalog, error) {
	return Load(bytes.NewReader(defaultYAML))
})

// Default returns the built-in BMad Method catalogue.
// It panics if the embedded document is invalid, which tests guard against.
func Default() *Catalog {
	c, err := loadDefault()
	if err != nil {
		panic(fmt.Sprintf("embedded catalogue is invalid: %v", err))
	}
	return c
}

func (c *Catalog) add(def Definition) error {
	switch {
	case def.ID == "":
		return fmt.Errorf("workflow #%d has no id", len(c.defs)+1)
	case def.WorkflowFile == "":
		return fmt.Errorf("workflow %q has no workflow file", def.ID)
	case def.AgentID == "":
		return fmt.Errorf("workflow %q has no agent", def.ID)
	case !def.Phase.Valid():
		return fmt.Errorf("workflow %q has unknown phase %q", def.ID, def.Phase)
	}
	if _, dup := c.index[def.ID]; dup {
		return fmt.Errorf("duplicate workflow id %q", def.ID)
	}
	if _, ok := c.agents[def.AgentID]; !ok {
		return fmt.Errorf("workflow %q uses unknown agent %q", def.ID, def.AgentID)
	}
	c.index[def.ID] = len(c.defs)
	c.defs = append(c.defs, def.clone())
	return nil
}

func (c *Catalog) checkRequires() error {
	for _, def := range c.defs {
		for _, req := range def.Requires {
			if req == def.ID {
				return fmt.Errorf("workflow %q requires itself", def.ID)
			}
			if _, ok := c.index[req]; !ok {
				return fmt.Errorf("workflow %q requires unknown workflow %q", def.ID, req)
			}
		}
	}
	return nil
}

// checkAcyclic walks the requires graph depth-first and reports the first
// cycle found as "a -> b -> a".
func (c *Catalog) checkAcyclic() error {
	const (
		unvisited = iota
		visiting
		done
	)
	marks := make([]int, len(c.defs))
	var path []string

	var visit func(i int) error
	visit = func(i int) error {
		switch marks[i] {
		case done:
			return nil
		case visiting:
			start := slices.Index(path, c.defs[i].ID)
			cycle := append(slices.Clone(path[start:]), c.defs[i].ID)
			return fmt.Errorf("requires cycle: %s", strings.Join(cycle, " -> "))
		}
		marks[i] = visiting
		path = append(path, c.defs[i].ID)
		for _, req := range c.defs[i].Requires {
			if err := visit(c.index[req]); err != nil {
				return err
			}
		}
		path = path[:len(path)-1]
		marks[i] = done
		return nil
	}

	for i := range c.defs {
		if err := visit(i); err != nil {
			return err
		}
	}
	return nil
}

// Get returns the definition with the given id.
func (c *Catalog) Get(id string) (Definition, bool) {
	i, ok := c.index[id]
	if !ok {
		return Definition{}, false
	}
	return c.defs[i].clone(), true
}

// All returns every definition in declaration order.
func (c *Catalog) All() []Definition {
	return c.filter(func(Definition) bool { return true })
}

// Available returns the definitions whose prerequisites are all in completed,
// in declaration order. Completed workflows themselves are included; callers
// that want only new work filter them out.
func (c *Catalog) Available(completed []string) []Definition {
	done := make(map[string]bool, len(completed))
	for _, id := range completed {
		done[id] = true
	}
	return c.filter(func(d Definition) bool {
		for _, req := range d.Requires {
			if !done[req] {
				return false
			}
		}
		return true
	})
}

// ByPhase returns the definitions in the given phase, in declaration order.
func (c *Catalog) ByPhase(p phase.Phase) []Definition {
	return c.filter(func(d Definition) bool { return d.Phase == p })
}

// AgentFile returns the bundle-relative persona file for an agent id.
func (c *Catalog) AgentFile(agentID string) (string, bool) {
	file, ok := c.agents[agentID]
	return file, ok
}

// Len returns the number of definitions.
func (c *Catalog) Len() int {
	return len(c.defs)
}

func (c *Catalog) filter(keep func(Definition) bool) []Definition {
	out := make([]Definition, 0, len(c.defs))
	for _, def := range c.defs {
		if keep(def) {
			out = append(out, def.clone())
		}
	}
	return out
}
