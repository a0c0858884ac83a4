// Package state persists the per-project orchestration state document.
package state

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/gorewood/bmadflow/internal/phase"
)

// Execution modes for an active workflow.
const (
	ModeNormal = "normal"
	ModeYolo   = "yolo"
)

// ValidMode reports whether mode is a known execution mode.
func ValidMode(mode string) bool {
	return mode == ModeNormal || mode == ModeYolo
}

// ProjectState is the single document tracking one project's progress.
type ProjectState struct {
	ProjectName        string              `json:"projectName"`
	ProjectPath        string              `json:"projectPath"`
	CreatedAt          time.Time           `json:"createdAt"`
	CurrentPhase       phase.Phase         `json:"currentPhase"`
	ActiveWorkflow     *ActiveWorkflow     `json:"activeWorkflow"`
	CompletedWorkflows []CompletedWorkflow `json:"completedWorkflows"`
}

// ActiveWorkflow is the workflow run in progress.
type ActiveWorkflow struct {
	ID              string    `json:"id"`
	RunID           string    `json:"runId"`
	AgentID         string    `json:"agentId"`
	AgentName       string    `json:"agentName"`
	Mode            string    `json:"mode"`
	CurrentStep     int       `json:"currentStep"`
	TotalSteps      *int      `json:"totalSteps"`
	CurrentStepFile string    `json:"currentStepFile"`
	OutputFile      string    `json:"outputFile"`
	LastSavedStep   *int      `json:"lastSavedStep,omitempty"`
	StartedAt       time.Time `json:"startedAt"`
}

// CompletedWorkflow records one finished workflow run.
type CompletedWorkflow struct {
	ID          string    `json:"id"`
	RunID       string    `json:"runId,omitempty"`
	AgentID     string    `json:"agentId"`
	OutputFile  string    `json:"outputFile"`
	CompletedAt time.Time `json:"completedAt"`
}

// New returns the initial state of a freshly initialized project.
func New(projectPath, projectName string, now time.Time) *ProjectState {
	return &ProjectState{
		ProjectName:        projectName,
		ProjectPath:        projectPath,
		CreatedAt:          now.UTC(),
		CurrentPhase:       phase.Analysis,
		CompletedWorkflows: []CompletedWorkflow{},
	}
}

// CompletedIDs returns the ids of completed workflows in completion order.
func (s *ProjectState) CompletedIDs() []string {
	out := make([]string, 0, len(s.CompletedWorkflows))
	for _, c := range s.CompletedWorkflows {
		out = append(out, c.ID)
	}
	return out
}

// HasSavedCurrentStep reports whether the active step already produced an
// artifact write.
func (a *ActiveWorkflow) HasSavedCurrentStep() bool {
	return a.LastSavedStep != nil && *a.LastSavedStep >= a.CurrentStep
}

// StepLabel renders "N" or "N/M" when the total is known.
func (a *ActiveWorkflow) StepLabel() string {
	if a.TotalSteps == nil {
		return fmt.Sprintf("%d", a.CurrentStep)
	}
	return fmt.Sprintf("%d/%d", a.CurrentStep, *a.TotalSteps)
}

// ToJSON serializes the state as two-space indented JSON.
func (s *ProjectState) ToJSON() ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}

// FromJSON parses a state document.
func FromJSON(data []byte) (*ProjectState, error) {
	var s ProjectState
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	if s.ProjectPath == "" && s.ProjectName == "" {
		return nil, fmt.Errorf("not a project state document")
	}
	if s.CompletedWorkflows == nil {
		s.CompletedWorkflows = []CompletedWorkflow{}
	}
	return &s, nil
}
