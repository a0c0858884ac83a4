// Package persona loads BMad agent persona definitions.
package persona

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/gorewood/bmadflow/internal/output"
)

// Persona is the identity an agent adopts while running a workflow.
type Persona struct {
	ID                 string `json:"id"`
	Name               string `json:"name"`
	Title              string `json:"title"`
	Role               string `json:"role"`
	Identity           string `json:"identity"`
	CommunicationStyle string `json:"communicationStyle"`
	Principles         string `json:"principles"`
}

// Provider returns the persona for an agent id.
type Provider interface {
	Persona(agentID string) (*Persona, error)
}

// AgentFiles maps agent ids to persona files relative to the bundle root.
type AgentFiles interface {
	AgentFile(agentID string) (string, bool)
}

// Loader reads persona files from a content bundle on every call.
type Loader struct {
	bundleRoot string
	files      AgentFiles
}

// NewLoader creates a Loader reading from bundleRoot.
func NewLoader(bundleRoot string, files AgentFiles) *Loader {
	return &Loader{bundleRoot: bundleRoot, files: files}
}

type agentFile struct {
	Agent *struct {
		Metadata struct {
			Name  string `yaml:"name"`
			Title string `yaml:"title"`
		} `yaml:"metadata"`
		Persona struct {
			Role               string     `yaml:"role"`
			Identity           string     `yaml:"identity"`
			CommunicationStyle string     `yaml:"communication_style"`
			Principles         principles `yaml:"principles"`
		} `yaml:"persona"`
	} `yaml:"agent"`
}

// principles accepts either a block of text or a list of statements.
type principles string

func (p *principles) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		*p = principles(strings.TrimSpace(node.Value))
		return nil
	case yaml.SequenceNode:
		var items []string
		if err := node.Decode(&items); err != nil {
			return err
		}
		lines := make([]string, 0, len(items))
		for _, item := range items {
			lines = append(lines, "- "+strings.TrimSpace(item))
		}
		*p = principles(strings.Join(lines, "\n"))
		return nil
	default:
		return fmt.Errorf("principles must be text or a list, line %d", node.Line)
	}
}

// Persona loads the persona for agentID.
func (l *Loader) Persona(agentID string) (*Persona, error) {
	rel, ok := l.files.AgentFile(agentID)
	if !ok {
		return nil, output.UnknownIdentifier("unknown agent id: " + agentID)
	}

	path := filepath.Join(l.bundleRoot, filepath.FromSlash(rel))
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, output.ContentError("agent file not found: "+path, err)
		}
		return nil, output.ContentError("cannot read agent file "+path, err)
	}

	var doc agentFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, output.ContentError(fmt.Sprintf("invalid agent file %s: %v", path, err), err)
	}
	if doc.Agent == nil {
		return nil, output.ContentError("invalid agent file (no 'agent' root key): "+path, nil)
	}

	p := &Persona{
		ID:                 agentID,
		Name:               strings.TrimSpace(doc.Agent.Metadata.Name),
		Title:              strings.TrimSpace(doc.Agent.Metadata.Title),
		Role:               strings.TrimSpace(doc.Agent.Persona.Role),
		Identity:           strings.TrimSpace(doc.Agent.Persona.Identity),
		CommunicationStyle: strings.TrimSpace(doc.Agent.Persona.CommunicationStyle),
		Principles:         string(doc.Agent.Persona.Principles),
	}
	if p.Name == "" {
		p.Name = agentID
	}
	return p, nil
}

// Format renders p as the role section of workflow instructions.
func Format(p *Persona) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## Your Role: %s", p.Name)
	if p.Title != "" {
		fmt.Fprintf(&b, " — %s", p.Title)
	}
	b.WriteString("\n\n")
	if p.Role != "" {
		fmt.Fprintf(&b, "**Role:** %s\n\n", p.Role)
	}
	fmt.Fprintf(&b, "**Identity:** %s\n\n", p.Identity)
	fmt.Fprintf(&b, "**Communication Style:** %s\n\n", p.CommunicationStyle)
	fmt.Fprintf(&b, "**Principles:**\n%s", p.Principles)
	return b.String()
}
