// Package config resolves bmadflow's global settings and per-project
// configuration.
//
// Global settings come from <Dir>/config.yaml with BMADFLOW_ environment
// overrides. Project settings live in <project>/_bmad/config.yaml and are
// written once by init.
package config

import (
	"os"
	"path/filepath"
	"runtime"
)

const appName = "bmadflow"

// Dir returns the bmadflow configuration directory.
//
// Resolution:
//   - $BMADFLOW_CONFIG_HOME if set
//   - $XDG_CONFIG_HOME/bmadflow if set, on any platform
//   - %AppData%/bmadflow on Windows
//   - ~/.config/bmadflow elsewhere
func Dir() string {
	if dir := os.Getenv("BMADFLOW_CONFIG_HOME"); dir != "" {
		return dir
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, appName)
	}
	if runtime.GOOS == "windows" {
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, appName)
		}
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", appName)
}
