// Package phase defines the ordered macro-stages of a BMad project.
package phase

import (
	"fmt"
	"slices"
	"strings"
)

// Phase is one of the four ordered project stages.
type Phase string

// Phases in progression order.
const (
	Analysis       Phase = "analysis"
	Planning       Phase = "planning"
	Solutioning    Phase = "solutioning"
	Implementation Phase = "implementation"
)

var order = []Phase{Analysis, Planning, Solutioning, Implementation}

// All returns the phases in progression order.
func All() []Phase {
	return slices.Clone(order)
}

// Index returns the position of p in the progression, or -1 if p is unknown.
func (p Phase) Index() int {
	return slices.Index(order, p)
}

// Valid reports whether p is a known phase.
func (p Phase) Valid() bool {
	return p.Index() >= 0
}

// Later reports whether p comes after other in the progression.
func (p Phase) Later(other Phase) bool {
	return p.Index() > other.Index()
}

// Title returns the display name, e.g. "Planning".
func (p Phase) Title() string {
	if p == "" {
		return ""
	}
	return strings.ToUpper(string(p[:1])) + string(p[1:])
}

// Parse converts s to a Phase, rejecting unknown values.
func Parse(s string) (Phase, error) {
	p := Phase(strings.ToLower(strings.TrimSpace(s)))
	if !p.Valid() {
		return "", fmt.Errorf("unknown phase %q (want one of analysis, planning, solutioning, implementation)", s)
	}
	return p, nil
}
