package lifecycle

import (
	"path/filepath"

	"github.com/gorewood/bmadflow/internal/config"
	"github.com/gorewood/bmadflow/internal/state"
	"github.com/gorewood/bmadflow/internal/step"
)

// Default output locations relative to the project root. The project
// settings' output_folder moves both artifact directories.
const (
	OutputFolder            = "_bmad-output"
	PlanningArtifacts       = OutputFolder + "/" + planningDir
	ImplementationArtifacts = OutputFolder + "/" + implementationDir

	planningDir       = "planning-artifacts"
	implementationDir = "implementation-artifacts"
)

// vars builds the template variables substituted into step content and
// paths. An unreadable project settings file falls back to defaults.
func (c *Controller) vars(projectPath string, st *state.ProjectState) map[string]string {
	proj, err := c.project(projectPath, st.ProjectName)
	if err != nil {
		c.logger.Warn("using default project settings", "project", projectPath, "err", err)
		proj = config.DefaultProject(st.ProjectName)
	}

	folder := proj.OutputFolder
	if folder == "" {
		folder = OutputFolder
	}
	out := folder
	if !filepath.IsAbs(out) {
		out = filepath.Join(projectPath, filepath.FromSlash(out))
	}

	return map[string]string{
		"project-root":             projectPath,
		"project_name":             st.ProjectName,
		"user_name":                proj.UserName,
		"communication_language":   proj.CommunicationLanguage,
		"document_output_language": proj.DocumentOutputLanguage,
		"user_skill_level":         proj.UserSkillLevel,
		"output_folder":            folder,
		"planning_artifacts":       filepath.Join(out, planningDir),
		"implementation_artifacts": filepath.Join(out, implementationDir),
		"product_knowledge":        filepath.Join(projectPath, "docs"),
	}
}

// resolveOutput turns a step's outputFile hint into an absolute path.
func resolveOutput(hint, projectPath string, vars map[string]string) string {
	resolved := step.Resolve(hint, vars)
	if resolved == "" || filepath.IsAbs(resolved) {
		return resolved
	}
	return filepath.Join(projectPath, filepath.FromSlash(resolved))
}
