package main

import (
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/gorewood/bmadflow/internal/catalog"
	"github.com/gorewood/bmadflow/internal/config"
	"github.com/gorewood/bmadflow/internal/lifecycle"
	"github.com/gorewood/bmadflow/internal/output"
	"github.com/gorewood/bmadflow/internal/persona"
	"github.com/gorewood/bmadflow/internal/state"
)

// app bundles what a command needs to run lifecycle operations.
type app struct {
	settings config.Settings
	logger   *log.Logger
	catalog  *catalog.Catalog
	store    *state.Store
	ctl      *lifecycle.Controller
	project  string
}

// loadApp reads settings (file, env, flags) and builds the controller.
// cachePersonas wraps persona loading in the configured TTL cache.
func loadApp(cmd *cobra.Command, cachePersonas bool) (*app, error) {
	settings, err := loadSettings(cmd)
	if err != nil {
		return nil, output.NewErrorWithCause(output.KindUsage, "invalid settings: "+err.Error(), err)
	}

	logger, err := newLogger(cmd.ErrOrStderr(), settings.LogLevel, flagBool(cmd, "verbose"))
	if err != nil {
		return nil, output.NewErrorWithCause(output.KindUsage, err.Error(), err)
	}

	cat := catalog.Default()
	if settings.Catalog != "" {
		cat, err = catalog.LoadFile(settings.Catalog)
		if err != nil {
			return nil, output.ContentError("cannot load workflow catalogue", err)
		}
	}

	bundle, err := filepath.Abs(settings.Bundle)
	if err != nil {
		return nil, output.NewSystemErrorWithCause("cannot resolve bundle path "+settings.Bundle, err)
	}

	store := state.NewStore(state.WithLogger(logger))
	opts := []lifecycle.Option{lifecycle.WithLogger(logger)}
	if cachePersonas && settings.PersonaCacheTTL > 0 {
		opts = append(opts, lifecycle.WithPersonas(
			persona.NewCache(persona.NewLoader(bundle, cat), settings.PersonaCacheTTL)))
	}

	project, _ := cmd.Flags().GetString("project")
	logger.Debug("settings loaded", "bundle", bundle, "catalog", settings.Catalog, "workflows", cat.Len())

	return &app{
		settings: settings,
		logger:   logger,
		catalog:  cat,
		store:    store,
		ctl:      lifecycle.New(bundle, cat, store, opts...),
		project:  project,
	}, nil
}

// loadSettings merges the settings file, BMADFLOW_* variables and the
// --bundle flag, in increasing precedence.
func loadSettings(cmd *cobra.Command) (config.Settings, error) {
	loader := config.NewLoader()
	if flag := cmd.Flags().Lookup("bundle"); flag != nil {
		if err := loader.BindFlag(config.KeyBundle, flag); err != nil {
			return config.Settings{}, err
		}
	}
	return loader.Load()
}

// newLogger builds the stderr logger. --verbose forces debug level.
func newLogger(w io.Writer, level string, verbose bool) (*log.Logger, error) {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	if verbose {
		lvl = log.DebugLevel
	}
	return log.NewWithOptions(w, log.Options{
		Prefix:          "bmadflow",
		Level:           lvl,
		ReportTimestamp: true,
		TimeFormat:      time.Kitchen,
	}), nil
}

func flagBool(cmd *cobra.Command, name string) bool {
	v, _ := cmd.Flags().GetBool(name)
	return v
}

// runOp loads the app, runs op and reports a failure through the printer.
func runOp(cmd *cobra.Command, op func(a *app, printer *output.Printer) error) error {
	printer := newPrinter(cmd)
	a, err := loadApp(cmd, false)
	if err != nil {
		printer.Error(err)
		return err
	}
	if err := op(a, printer); err != nil {
		printer.Error(err)
		return err
	}
	return nil
}

// emit writes a lifecycle result: the JSON document in --json mode,
// otherwise its rendered markdown.
func emit(printer *output.Printer, result any, text string) error {
	if printer.IsJSON() {
		return printer.WriteJSON(result)
	}
	printer.Markdown(text)
	return nil
}
