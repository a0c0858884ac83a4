package mcp

import (
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/gorewood/bmadflow/internal/lifecycle"
	"github.com/gorewood/bmadflow/internal/output"
	"github.com/gorewood/bmadflow/internal/state"
)

// textResult wraps rendered markdown as the tool's text content.
func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}

// toolError prefixes the failure kind, as in
// "precondition_violation: no active workflow".
func toolError(err error) error {
	return fmt.Errorf("%s: %w", output.KindOf(err), err)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}

func toActiveSummary(a *state.ActiveWorkflow) *ActiveSummary {
	if a == nil {
		return nil
	}
	return &ActiveSummary{
		ID:              a.ID,
		RunID:           a.RunID,
		AgentID:         a.AgentID,
		AgentName:       a.AgentName,
		Mode:            a.Mode,
		CurrentStep:     a.CurrentStep,
		TotalSteps:      a.TotalSteps,
		CurrentStepFile: a.CurrentStepFile,
		OutputFile:      a.OutputFile,
		LastSavedStep:   a.LastSavedStep,
		StartedAt:       formatTime(a.StartedAt),
	}
}

func toCompletedSummary(c state.CompletedWorkflow) CompletedSummary {
	return CompletedSummary{
		ID:          c.ID,
		RunID:       c.RunID,
		AgentID:     c.AgentID,
		OutputFile:  c.OutputFile,
		CompletedAt: formatTime(c.CompletedAt),
	}
}

func toCompletedSummaries(history []state.CompletedWorkflow) []CompletedSummary {
	result := make([]CompletedSummary, 0, len(history))
	for _, c := range history {
		result = append(result, toCompletedSummary(c))
	}
	return result
}

func toWorkflowSummaries(entries []lifecycle.Entry) []WorkflowSummary {
	result := make([]WorkflowSummary, 0, len(entries))
	for _, e := range entries {
		result = append(result, WorkflowSummary{
			ID:          e.ID,
			Name:        e.Name,
			Description: e.Description,
			Phase:       string(e.Phase),
			AgentID:     e.AgentID,
			Completed:   e.Completed,
		})
	}
	return result
}

// flatten lists grouped entries in phase order.
func flatten(groups []lifecycle.PhaseGroup) []lifecycle.Entry {
	var entries []lifecycle.Entry
	for _, g := range groups {
		entries = append(entries, g.Workflows...)
	}
	return entries
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
