// Package mcp serves the BMad workflow lifecycle over the Model Context
// Protocol. Each lifecycle operation is one tool; tools return the rendered
// markdown as text content and a typed structured result.
package mcp

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/gorewood/bmadflow/internal/lifecycle"
)

// NewServer creates an MCP server with every bmad_* tool registered.
func NewServer(version string, ctl *lifecycle.Controller) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "bmadflow",
		Version: version,
	}, nil)
	registerTools(server, ctl)
	return server
}

func boolPtr(b bool) *bool {
	return &b
}

// readOnlyAnnotations marks tools that never touch project files.
func readOnlyAnnotations() *mcp.ToolAnnotations {
	return &mcp.ToolAnnotations{
		ReadOnlyHint:   true,
		IdempotentHint: true,
		OpenWorldHint:  boolPtr(false),
	}
}

// writeAnnotations marks tools that update state or write artifacts.
// Saves may replace an artifact that already holds the submitted text.
func writeAnnotations(destructive bool) *mcp.ToolAnnotations {
	return &mcp.ToolAnnotations{
		DestructiveHint: boolPtr(destructive),
		OpenWorldHint:   boolPtr(false),
	}
}

func registerTools(server *mcp.Server, ctl *lifecycle.Controller) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "bmad_init_project",
		Description: "Initialize a BMad project: creates _bmad/ and _bmad-output/ directories, the project settings file and the state document. Safe to call twice; an initialized project is reported unchanged.",
		Annotations: &mcp.ToolAnnotations{
			IdempotentHint:  true,
			DestructiveHint: boolPtr(false),
			OpenWorldHint:   boolPtr(false),
		},
	}, handleInit(ctl))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "bmad_list_workflows",
		Description: "List the workflows the project can start, grouped by phase, with completed ones marked. Lists nothing while a workflow is in progress.",
		Annotations: readOnlyAnnotations(),
	}, handleList(ctl))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "bmad_start_workflow",
		Description: "Start a workflow in normal (interactive) or yolo (autonomous) mode. Returns the agent persona, the execution rules and the first step to execute.",
		Annotations: writeAnnotations(false),
	}, handleStart(ctl))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "bmad_load_step",
		Description: "Advance the active workflow to its next step, or to a later step by number, and return that step's instructions. At the last step it asks for bmad_complete_workflow instead.",
		Annotations: writeAnnotations(false),
	}, handleLoadStep(ctl))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "bmad_save_artifact",
		Description: "Save the output of the current step. Appends to the artifact, or replaces it when the content already contains the whole existing document. Each step can be saved once.",
		Annotations: writeAnnotations(true),
	}, handleSave(ctl))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "bmad_complete_workflow",
		Description: "Finish the active workflow, record it in the project history, advance the project phase and recommend what to run next.",
		Annotations: writeAnnotations(false),
	}, handleComplete(ctl))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "bmad_get_state",
		Description: "Show the project state: phase, active workflow with its step and output file, and completed workflows.",
		Annotations: readOnlyAnnotations(),
	}, handleGetState(ctl))
}
