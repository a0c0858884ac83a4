package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/gorewood/bmadflow/internal/lifecycle"
)

// --- Shared types ---

// ActiveSummary describes the workflow run in progress.
type ActiveSummary struct {
	ID              string `json:"id"                      jsonschema:"workflow id"`
	RunID           string `json:"runId"                   jsonschema:"id of this run of the workflow"`
	AgentID         string `json:"agentId"                 jsonschema:"agent persona id"`
	AgentName       string `json:"agentName"               jsonschema:"agent display name"`
	Mode            string `json:"mode"                    jsonschema:"normal (interactive) or yolo (autonomous)"`
	CurrentStep     int    `json:"currentStep"             jsonschema:"1-based step counter"`
	TotalSteps      *int   `json:"totalSteps,omitempty"    jsonschema:"number of steps, absent when unknown"`
	CurrentStepFile string `json:"currentStepFile"         jsonschema:"absolute path of the current step file"`
	OutputFile      string `json:"outputFile,omitempty"    jsonschema:"artifact destination, once a step declares one"`
	LastSavedStep   *int   `json:"lastSavedStep,omitempty" jsonschema:"last step whose output was saved"`
	StartedAt       string `json:"startedAt"               jsonschema:"RFC3339 start timestamp"`
}

// CompletedSummary is one entry of the project history.
type CompletedSummary struct {
	ID          string `json:"id"                   jsonschema:"workflow id"`
	RunID       string `json:"runId,omitempty"      jsonschema:"id of the run"`
	AgentID     string `json:"agentId"              jsonschema:"agent persona id"`
	OutputFile  string `json:"outputFile,omitempty" jsonschema:"artifact written by the run"`
	CompletedAt string `json:"completedAt"          jsonschema:"RFC3339 completion timestamp"`
}

// WorkflowSummary is a catalogue entry offered to the user.
type WorkflowSummary struct {
	ID          string `json:"id"          jsonschema:"workflow id"`
	Name        string `json:"name"        jsonschema:"display name"`
	Description string `json:"description" jsonschema:"what the workflow produces"`
	Phase       string `json:"phase"       jsonschema:"analysis, planning, solutioning or implementation"`
	AgentID     string `json:"agentId"     jsonschema:"agent persona that runs it"`
	Completed   bool   `json:"completed"   jsonschema:"already completed in this project"`
}

// ProjectInput identifies the project a tool acts on.
type ProjectInput struct {
	ProjectPath string `json:"projectPath" jsonschema:"absolute path of the project root"`
}

// --- Init tool ---

// InitInput is the input for bmad_init_project.
type InitInput struct {
	ProjectPath string `json:"projectPath"           jsonschema:"absolute path of the project root (must exist)"`
	ProjectName string `json:"projectName,omitempty" jsonschema:"project name (defaults to the directory name)"`
}

// InitOutput is the output for bmad_init_project.
type InitOutput struct {
	AlreadyInitialized bool     `json:"alreadyInitialized" jsonschema:"true when the project was initialized before this call"`
	ProjectName        string   `json:"projectName"        jsonschema:"project name"`
	CurrentPhase       string   `json:"currentPhase"       jsonschema:"project phase"`
	Created            []string `json:"created"            jsonschema:"paths created by this call, relative to the project"`
}

func handleInit(ctl *lifecycle.Controller) mcp.ToolHandlerFor[InitInput, InitOutput] {
	return func(_ context.Context, _ *mcp.CallToolRequest, input InitInput) (*mcp.CallToolResult, InitOutput, error) {
		res, err := ctl.Init(input.ProjectPath, input.ProjectName)
		if err != nil {
			return nil, InitOutput{}, toolError(err)
		}
		out := InitOutput{
			AlreadyInitialized: res.AlreadyInitialized,
			ProjectName:        res.State.ProjectName,
			CurrentPhase:       string(res.State.CurrentPhase),
			Created:            nonNil(res.Created),
		}
		return textResult(res.Text), out, nil
	}
}

// --- List tool ---

// ListOutput is the output for bmad_list_workflows.
type ListOutput struct {
	ProjectName    string            `json:"projectName"              jsonschema:"project name"`
	CurrentPhase   string            `json:"currentPhase"             jsonschema:"project phase"`
	ActiveWorkflow *ActiveSummary    `json:"activeWorkflow,omitempty" jsonschema:"workflow in progress; nothing is listed while set"`
	Completed      []string          `json:"completed"                jsonschema:"ids of completed workflows"`
	Workflows      []WorkflowSummary `json:"workflows"                jsonschema:"available workflows in phase order"`
}

func handleList(ctl *lifecycle.Controller) mcp.ToolHandlerFor[ProjectInput, ListOutput] {
	return func(_ context.Context, _ *mcp.CallToolRequest, input ProjectInput) (*mcp.CallToolResult, ListOutput, error) {
		res, err := ctl.List(input.ProjectPath)
		if err != nil {
			return nil, ListOutput{}, toolError(err)
		}
		out := ListOutput{
			ProjectName:    res.ProjectName,
			CurrentPhase:   string(res.CurrentPhase),
			ActiveWorkflow: toActiveSummary(res.ActiveWorkflow),
			Completed:      nonNil(res.Completed),
			Workflows:      toWorkflowSummaries(flatten(res.Groups)),
		}
		return textResult(res.Text), out, nil
	}
}

// --- Start tool ---

// StartInput is the input for bmad_start_workflow.
type StartInput struct {
	ProjectPath string `json:"projectPath"    jsonschema:"absolute path of the project root"`
	WorkflowID  string `json:"workflowId"     jsonschema:"workflow id from bmad_list_workflows"`
	Mode        string `json:"mode,omitempty" jsonschema:"normal (default, interactive) or yolo (autonomous)"`
}

// StartOutput is the output for bmad_start_workflow.
type StartOutput struct {
	Workflow     ActiveSummary `json:"workflow"     jsonschema:"the workflow run that was started"`
	PersonaName  string        `json:"personaName"  jsonschema:"agent name to adopt"`
	PersonaTitle string        `json:"personaTitle" jsonschema:"agent title"`
}

func handleStart(ctl *lifecycle.Controller) mcp.ToolHandlerFor[StartInput, StartOutput] {
	return func(_ context.Context, _ *mcp.CallToolRequest, input StartInput) (*mcp.CallToolResult, StartOutput, error) {
		res, err := ctl.Start(input.ProjectPath, input.WorkflowID, input.Mode)
		if err != nil {
			return nil, StartOutput{}, toolError(err)
		}
		out := StartOutput{Workflow: *toActiveSummary(res.Workflow)}
		if res.Persona != nil {
			out.PersonaName = res.Persona.Name
			out.PersonaTitle = res.Persona.Title
		}
		return textResult(res.Text), out, nil
	}
}

// --- Load step tool ---

// LoadStepInput is the input for bmad_load_step.
type LoadStepInput struct {
	ProjectPath string `json:"projectPath"          jsonschema:"absolute path of the project root"`
	StepNumber  int    `json:"stepNumber,omitempty" jsonschema:"jump to this later step instead of the next one"`
}

// LoadStepOutput is the output for bmad_load_step.
type LoadStepOutput struct {
	Terminal   bool   `json:"terminal"             jsonschema:"no further step; call bmad_complete_workflow"`
	Final      bool   `json:"final"                jsonschema:"the loaded step is the last one"`
	Step       int    `json:"step"                 jsonschema:"step counter, increases on every move"`
	StepNumber int    `json:"stepNumber"           jsonschema:"number in the current step's filename"`
	TotalSteps *int   `json:"totalSteps,omitempty" jsonschema:"number of steps, absent when unknown"`
	StepFile   string `json:"stepFile,omitempty"   jsonschema:"absolute path of the loaded step file"`
	OutputFile string `json:"outputFile,omitempty" jsonschema:"artifact destination for this workflow"`
}

func handleLoadStep(ctl *lifecycle.Controller) mcp.ToolHandlerFor[LoadStepInput, LoadStepOutput] {
	return func(_ context.Context, _ *mcp.CallToolRequest, input LoadStepInput) (*mcp.CallToolResult, LoadStepOutput, error) {
		res, err := ctl.Advance(input.ProjectPath, input.StepNumber)
		if err != nil {
			return nil, LoadStepOutput{}, toolError(err)
		}
		out := LoadStepOutput{
			Terminal:   res.Terminal,
			Final:      res.Final,
			Step:       res.Step,
			StepNumber: res.StepNumber,
			TotalSteps: res.TotalSteps,
			StepFile:   res.StepFile,
			OutputFile: res.OutputFile,
		}
		return textResult(res.Text), out, nil
	}
}

// --- Save tool ---

// SaveInput is the input for bmad_save_artifact.
type SaveInput struct {
	ProjectPath string `json:"projectPath"          jsonschema:"absolute path of the project root"`
	Content     string `json:"content"              jsonschema:"markdown produced by the current step"`
	OutputFile  string `json:"outputFile,omitempty" jsonschema:"destination path; defaults to the workflow's output file"`
}

// SaveOutput is the output for bmad_save_artifact.
type SaveOutput struct {
	Path  string `json:"path"           jsonschema:"absolute path of the artifact"`
	Bytes int    `json:"bytes"          jsonschema:"bytes of content submitted"`
	Write string `json:"write"          jsonschema:"created, appended or replaced"`
	Step  *int   `json:"step,omitempty" jsonschema:"step the save was recorded against"`
}

func handleSave(ctl *lifecycle.Controller) mcp.ToolHandlerFor[SaveInput, SaveOutput] {
	return func(_ context.Context, _ *mcp.CallToolRequest, input SaveInput) (*mcp.CallToolResult, SaveOutput, error) {
		res, err := ctl.Save(input.ProjectPath, input.Content, input.OutputFile)
		if err != nil {
			return nil, SaveOutput{}, toolError(err)
		}
		out := SaveOutput{Path: res.Path, Bytes: res.Bytes, Write: res.Write, Step: res.Step}
		return textResult(res.Text), out, nil
	}
}

// --- Complete tool ---

// CompleteOutput is the output for bmad_complete_workflow.
type CompleteOutput struct {
	Completed    CompletedSummary  `json:"completed"    jsonschema:"the history entry that was recorded"`
	CurrentPhase string            `json:"currentPhase" jsonschema:"project phase after completion"`
	Recommended  []WorkflowSummary `json:"recommended"  jsonschema:"workflows available next"`
}

func handleComplete(ctl *lifecycle.Controller) mcp.ToolHandlerFor[ProjectInput, CompleteOutput] {
	return func(_ context.Context, _ *mcp.CallToolRequest, input ProjectInput) (*mcp.CallToolResult, CompleteOutput, error) {
		res, err := ctl.Complete(input.ProjectPath)
		if err != nil {
			return nil, CompleteOutput{}, toolError(err)
		}
		out := CompleteOutput{
			Completed:    toCompletedSummary(res.Completed),
			CurrentPhase: string(res.CurrentPhase),
			Recommended:  toWorkflowSummaries(res.Recommended),
		}
		return textResult(res.Text), out, nil
	}
}

// --- State tool ---

// StateOutput is the output for bmad_get_state.
type StateOutput struct {
	ProjectName        string             `json:"projectName"              jsonschema:"project name"`
	ProjectPath        string             `json:"projectPath"              jsonschema:"project root"`
	CreatedAt          string             `json:"createdAt"                jsonschema:"RFC3339 initialization timestamp"`
	CurrentPhase       string             `json:"currentPhase"             jsonschema:"project phase"`
	ActiveWorkflow     *ActiveSummary     `json:"activeWorkflow,omitempty" jsonschema:"workflow in progress"`
	CompletedWorkflows []CompletedSummary `json:"completedWorkflows"       jsonschema:"completed workflows, oldest first"`
}

func handleGetState(ctl *lifecycle.Controller) mcp.ToolHandlerFor[ProjectInput, StateOutput] {
	return func(_ context.Context, _ *mcp.CallToolRequest, input ProjectInput) (*mcp.CallToolResult, StateOutput, error) {
		res, err := ctl.State(input.ProjectPath)
		if err != nil {
			return nil, StateOutput{}, toolError(err)
		}
		st := res.State
		out := StateOutput{
			ProjectName:        st.ProjectName,
			ProjectPath:        st.ProjectPath,
			CreatedAt:          formatTime(st.CreatedAt),
			CurrentPhase:       string(st.CurrentPhase),
			ActiveWorkflow:     toActiveSummary(st.ActiveWorkflow),
			CompletedWorkflows: toCompletedSummaries(st.CompletedWorkflows),
		}
		return textResult(res.Text), out, nil
	}
}
