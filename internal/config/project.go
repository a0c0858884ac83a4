package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// ProjectFile is the project settings file relative to the project root.
const ProjectFile = "_bmad/config.yaml"

// Project holds the per-project values substituted into step content.
type Project struct {
	ProjectName            string `mapstructure:"project_name" yaml:"project_name"`
	UserName               string `mapstructure:"user_name" yaml:"user_name"`
	CommunicationLanguage  string `mapstructure:"communication_language" yaml:"communication_language"`
	DocumentOutputLanguage string `mapstructure:"document_output_language" yaml:"document_output_language"`
	UserSkillLevel         string `mapstructure:"user_skill_level" yaml:"user_skill_level"`
	OutputFolder           string `mapstructure:"output_folder" yaml:"output_folder"`
}

// DefaultProject returns the project settings written by init.
func DefaultProject(projectName string) Project {
	return Project{
		ProjectName:            projectName,
		UserName:               "User",
		CommunicationLanguage:  "english",
		DocumentOutputLanguage: "english",
		UserSkillLevel:         "expert",
		OutputFolder:           "_bmad-output",
	}
}

// LoadProject reads the project's settings file. Missing files and missing
// keys fall back to DefaultProject values.
func LoadProject(projectPath, projectName string) (Project, error) {
	defaults := DefaultProject(projectName)

	v := viper.New()
	v.SetDefault("project_name", defaults.ProjectName)
	v.SetDefault("user_name", defaults.UserName)
	v.SetDefault("communication_language", defaults.CommunicationLanguage)
	v.SetDefault("document_output_language", defaults.DocumentOutputLanguage)
	v.SetDefault("user_skill_level", defaults.UserSkillLevel)
	v.SetDefault("output_folder", defaults.OutputFolder)

	path := filepath.Join(projectPath, filepath.FromSlash(ProjectFile))
	if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return defaults, fmt.Errorf("reading %s: %w", path, err)
		}
	}

	var p Project
	if err := v.Unmarshal(&p); err != nil {
		return defaults, fmt.Errorf("decoding %s: %w", path, err)
	}
	return p, nil
}

// WriteDefaultProject creates the project settings file unless it already
// exists. It reports whether a file was written.
func WriteDefaultProject(projectPath, projectName string) (bool, error) {
	path := filepath.Join(projectPath, filepath.FromSlash(ProjectFile))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, fmt.Errorf("creating %s: %w", filepath.Dir(path), err)
	}

	data, err := yaml.Marshal(DefaultProject(projectName))
	if err != nil {
		return false, fmt.Errorf("encoding project settings: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return false, nil
		}
		return false, fmt.Errorf("creating %s: %w", path, err)
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return false, fmt.Errorf("writing %s: %w", path, err)
	}
	return true, f.Close()
}
