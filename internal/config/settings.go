package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Setting keys.
const (
	KeyBundle          = "bundle"
	KeyCatalog         = "catalog"
	KeyLogLevel        = "log_level"
	KeyPersonaCacheTTL = "persona_cache_ttl"
)

// Settings are the global, per-user bmadflow settings.
type Settings struct {
	// Bundle is the root of the installed BMad method content.
	Bundle string `mapstructure:"bundle"`

	// Catalog optionally replaces the built-in workflow catalogue.
	Catalog string `mapstructure:"catalog"`

	LogLevel string `mapstructure:"log_level"`

	// PersonaCacheTTL bounds how long the MCP server reuses loaded personas.
	PersonaCacheTTL time.Duration `mapstructure:"persona_cache_ttl"`
}

// DefaultSettings returns the settings used when nothing is configured.
func DefaultSettings() Settings {
	return Settings{
		Bundle:          filepath.Join(Dir(), "bmad-method"),
		LogLevel:        "warn",
		PersonaCacheTTL: 10 * time.Minute,
	}
}

// Loader resolves Settings from the config file, BMADFLOW_ environment
// variables and bound command-line flags, highest priority last.
type Loader struct {
	v    *viper.Viper
	path string
}

// NewLoader creates a Loader reading <Dir>/config.yaml.
func NewLoader() *Loader {
	return NewLoaderFromFile(filepath.Join(Dir(), "config.yaml"))
}

// NewLoaderFromFile creates a Loader reading the given settings file.
// The file is optional.
func NewLoaderFromFile(path string) *Loader {
	v := viper.New()
	defaults := DefaultSettings()
	v.SetDefault(KeyBundle, defaults.Bundle)
	v.SetDefault(KeyCatalog, defaults.Catalog)
	v.SetDefault(KeyLogLevel, defaults.LogLevel)
	v.SetDefault(KeyPersonaCacheTTL, defaults.PersonaCacheTTL)

	v.SetEnvPrefix("BMADFLOW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	return &Loader{v: v, path: path}
}

// BindFlag makes an explicitly set flag override the setting key.
func (l *Loader) BindFlag(key string, flag *pflag.Flag) error {
	if flag == nil {
		return fmt.Errorf("no flag for setting %q", key)
	}
	return l.v.BindPFlag(key, flag)
}

// Load reads the settings file when present and returns the merged settings.
func (l *Loader) Load() (Settings, error) {
	if l.path != "" {
		if _, err := os.Stat(l.path); err == nil {
			l.v.SetConfigFile(l.path)
			if err := l.v.ReadInConfig(); err != nil {
				return Settings{}, fmt.Errorf("reading %s: %w", l.path, err)
			}
		} else if !errors.Is(err, fs.ErrNotExist) {
			return Settings{}, fmt.Errorf("checking %s: %w", l.path, err)
		}
	}

	var s Settings
	if err := l.v.Unmarshal(&s); err != nil {
		return Settings{}, fmt.Errorf("decoding settings: %w", err)
	}
	s.Bundle = expandHome(s.Bundle)
	s.Catalog = expandHome(s.Catalog)
	return s, nil
}

func expandHome(path string) string {
	rest, ok := strings.CutPrefix(path, "~/")
	if !ok {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, rest)
}
