// Package step loads BMad step files and works out which step comes next.
//
// A step file is markdown with an optional YAML header:
//
//	---
//	name: 'step-02-discovery'
//	description: 'Discover the product vision'
//	nextStepFile: './step-03-success.md'
//	outputFile: '{planning_artifacts}/product-brief-{{project_name}}.md'
//	---
//	# Step 2: Discovery
//	...
//
// Steps are re-read from disk on every access and never cached, so only the
// step currently being executed is ever held in memory.
package step

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/gorewood/bmadflow/internal/output"
)

// Frontmatter is the typed view of a step header. Keys other than the four
// known ones are kept in Extra.
type Frontmatter struct {
	Name         string
	Description  string
	NextStepFile string
	OutputFile   string
	Extra        map[string]any
}

// Unit is one parsed step file.
type Unit struct {
	Number      int
	Frontmatter Frontmatter
	Content     string
	Path        string
}

// Title returns the step name, falling back to its description.
func (u *Unit) Title() string {
	if u.Frontmatter.Name != "" {
		return u.Frontmatter.Name
	}
	return u.Frontmatter.Description
}

// Load reads and parses the step file at path.
// Unreadable files and malformed headers are content errors; missing header
// fields default to empty.
func Load(path string) (*Unit, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, output.ContentError("cannot read step file "+path, err)
	}

	header, body := splitFrontmatter(string(data))
	fm, err := parseFrontmatter(header)
	if err != nil {
		return nil, output.ContentError(fmt.Sprintf("malformed header in %s: %v", path, err), err)
	}

	unit := &Unit{
		Frontmatter: fm,
		Content:     body,
		Path:        path,
	}
	if name, ok := ParseName(filepath.Base(path)); ok {
		unit.Number = name.Number
	}
	return unit, nil
}

// ReadBody returns the trimmed text of a single-body workflow definition
// file, used as the only step of workflows without a steps directory.
func ReadBody(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", output.ContentError("cannot read workflow file "+path, err)
	}
	return strings.TrimSpace(string(data)), nil
}

// splitFrontmatter separates a leading YAML header from the body.
// The header opens and closes with lines holding exactly "---"; a longer
// rule such as "-----" is body text.
func splitFrontmatter(raw string) (header, body string) {
	raw = strings.TrimSpace(raw)
	first, rest, _ := strings.Cut(raw, "\n")
	if !isDelimiter(first) {
		return "", raw
	}

	var lines []string
	for rest != "" {
		var line string
		line, rest, _ = strings.Cut(rest, "\n")
		if isDelimiter(line) {
			return strings.TrimSpace(strings.Join(lines, "\n")), strings.TrimSpace(rest)
		}
		lines = append(lines, line)
	}
	return "", raw
}

func isDelimiter(line string) bool {
	return strings.TrimRight(line, " \t\r") == "---"
}

var knownKeys = map[string]func(*Frontmatter) *string{
	"name":         func(f *Frontmatter) *string { return &f.Name },
	"description":  func(f *Frontmatter) *string { return &f.Description },
	"nextStepFile": func(f *Frontmatter) *string { return &f.NextStepFile },
	"outputFile":   func(f *Frontmatter) *string { return &f.OutputFile },
}

// parseFrontmatter decodes a header into known fields plus the residual bag.
// A known key holding a non-string value is rejected.
func parseFrontmatter(header string) (Frontmatter, error) {
	var fm Frontmatter
	if header == "" {
		return fm, nil
	}

	var raw map[string]any
	if err := yaml.Unmarshal([]byte(header), &raw); err != nil {
		return fm, err
	}

	for key, value := range raw {
		field, known := knownKeys[key]
		if !known {
			if fm.Extra == nil {
				fm.Extra = make(map[string]any)
			}
			fm.Extra[key] = value
			continue
		}
		switch v := value.(type) {
		case nil:
		case string:
			*field(&fm) = strings.TrimSpace(v)
		default:
			return fm, fmt.Errorf("%s must be a string, got %T", key, value)
		}
	}
	return fm, nil
}
