package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/gorewood/bmadflow/internal/phase"
)

var testAgents = map[string]string{
	"analyst": "bmm/agents/analyst.agent.yaml",
	"pm":      "bmm/agents/pm.agent.yaml",
}

func def(id string, p phase.Phase, requires ...string) Definition {
	return Definition{
		ID:           id,
		Name:         strings.ToUpper(id),
		Phase:        p,
		AgentID:      "analyst",
		WorkflowFile: "bmm/workflows/" + id + "/workflow.md",
		StepsDir:     "bmm/workflows/" + id + "/steps",
		Requires:     requires,
	}
}

func ids(defs []Definition) []string {
	out := make([]string, 0, len(defs))
	for _, d := range defs {
		out = append(out, d.ID)
	}
	return out
}

func TestDefault_Shape(t *testing.T) {
	c := Default()

	require.Equal(t, 24, c.Len())
	assert.Equal(t, "create-product-brief", c.All()[0].ID)
	assert.Equal(t, "brainstorming", c.All()[23].ID)

	prd, ok := c.Get("create-prd")
	require.True(t, ok)
	assert.Equal(t, phase.Planning, prd.Phase)
	assert.Equal(t, "pm", prd.AgentID)
	assert.Equal(t, []string{"create-product-brief"}, prd.Requires)
	assert.True(t, prd.HasSteps())

	sprint, ok := c.Get("sprint-planning")
	require.True(t, ok)
	assert.False(t, sprint.HasSteps())
	assert.Equal(t, "bmm/workflows/4-implementation/sprint-planning/workflow.yaml", sprint.WorkflowFile)

	readiness, _ := c.Get("check-implementation-readiness")
	assert.Equal(t, []string{"create-prd", "create-architecture", "create-epics-and-stories"}, readiness.Requires)

	file, ok := c.AgentFile("tech-writer")
	require.True(t, ok)
	assert.Equal(t, "bmm/agents/tech-writer/tech-writer.agent.yaml", file)
}

func TestDefault_IDsUnique(t *testing.T) {
	c := Default()
	seen := map[string]int{}
	for _, d := range c.All() {
		seen[d.ID]++
	}
	for id, n := range seen {
		assert.Equal(t, 1, n, "workflow %q declared %d times", id, n)
		got, ok := c.Get(id)
		require.True(t, ok)
		assert.Equal(t, id, got.ID)
	}
}

func TestDefault_InitialAvailability(t *testing.T) {
	got := ids(Default().Available(nil))
	assert.Equal(t, []string{
		"create-product-brief", "market-research", "domain-research", "technical-research",
		"quick-spec", "document-project", "generate-project-context", "brainstorming",
	}, got)
}

func TestAvailable_UnlocksDependants(t *testing.T) {
	c := Default()
	before := ids(c.Available(nil))
	after := ids(c.Available([]string{"create-product-brief"}))

	assert.NotContains(t, before, "create-prd")
	assert.Contains(t, after, "create-prd")
	assert.Contains(t, after, "create-product-brief", "completed workflows stay in the availability set")
}

func TestByPhase_PreservesOrder(t *testing.T) {
	got := ids(Default().ByPhase(phase.Solutioning))
	assert.Equal(t, []string{"create-architecture", "create-epics-and-stories", "check-implementation-readiness"}, got)
	assert.Empty(t, Default().ByPhase("deployment"))
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name    string
		defs    []Definition
		wantErr string
	}{
		{"duplicate id", []Definition{def("a", phase.Analysis), def("a", phase.Planning)}, "duplicate workflow id"},
		{"unknown phase", []Definition{def("a", "later")}, "unknown phase"},
		{"unknown requirement", []Definition{def("a", phase.Analysis, "ghost")}, "unknown workflow"},
		{"self requirement", []Definition{def("a", phase.Analysis, "a")}, "requires itself"},
		{"missing id", []Definition{{Phase: phase.Analysis, AgentID: "analyst", WorkflowFile: "w.md"}}, "has no id"},
		{"unknown agent", []Definition{{ID: "a", Phase: phase.Analysis, AgentID: "ghost", WorkflowFile: "w.md"}}, "unknown agent"},
		{
			"cycle",
			[]Definition{def("a", phase.Analysis, "c"), def("b", phase.Analysis, "a"), def("c", phase.Analysis, "b")},
			"requires cycle: a -> c -> b -> a",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.defs, testAgents)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestGet_ReturnsCopies(t *testing.T) {
	c, err := New([]Definition{def("a", phase.Analysis), def("b", phase.Planning, "a")}, testAgents)
	require.NoError(t, err)

	b, _ := c.Get("b")
	b.Requires[0] = "mutated"

	again, _ := c.Get("b")
	assert.Equal(t, []string{"a"}, again.Requires)

	_, ok := c.Get("missing")
	assert.False(t, ok)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	doc := `agents:
  pm: bmm/agents/pm.agent.yaml
workflows:
  - id: only
    name: Only
    description: The only workflow
    phase: planning
    agent: pm
    workflow_file: bmm/workflows/only/workflow.md
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	c, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 1, c.Len())
	only, _ := c.Get("only")
	assert.False(t, only.HasSteps())
}

func TestLoad_RejectsUnknownFields(t *testing.T) {
	_, err := Load(strings.NewReader("workflows:\n  - id: a\n    stepsdir: x\n"))
	require.Error(t, err)

	_, err = Load(strings.NewReader(""))
	require.Error(t, err)
}

// genCatalog draws a random DAG: workflow i may only require workflows j < i.
func genCatalog(t *rapid.T) *Catalog {
	n := rapid.IntRange(1, 12).Draw(t, "n")
	defs := make([]Definition, 0, n)
	for i := range n {
		var requires []string
		for j := range i {
			if rapid.Bool().Draw(t, fmt.Sprintf("req-%d-%d", i, j)) {
				requires = append(requires, fmt.Sprintf("w%d", j))
			}
		}
		defs = append(defs, def(fmt.Sprintf("w%d", i), phase.Analysis, requires...))
	}
	c, err := New(defs, testAgents)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return c
}

func genSubset(t *rapid.T, all []string, label string) []string {
	var out []string
	for _, id := range all {
		if rapid.Bool().Draw(t, label+"-"+id) {
			out = append(out, id)
		}
	}
	return out
}

func TestAvailable_IsSubsetFilter(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		c := genCatalog(t)
		completed := genSubset(t, ids(c.All()), "completed")

		got := ids(c.Available(completed))

		var want []string
		for _, d := range c.All() {
			ok := true
			for _, req := range d.Requires {
				if !slices.Contains(completed, req) {
					ok = false
				}
			}
			if ok {
				want = append(want, d.ID)
			}
		}
		if !slices.Equal(got, want) {
			t.Fatalf("Available(%v) = %v, want %v", completed, got, want)
		}
	})
}

func TestAvailable_Monotonic(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		c := genCatalog(t)
		all := ids(c.All())
		small := genSubset(t, all, "small")
		large := append(slices.Clone(small), genSubset(t, all, "extra")...)

		smallAvail := ids(c.Available(small))
		largeAvail := ids(c.Available(large))
		for _, id := range smallAvail {
			if !slices.Contains(largeAvail, id) {
				t.Fatalf("%q available with %v but not with superset %v", id, small, large)
			}
		}
	})
}
