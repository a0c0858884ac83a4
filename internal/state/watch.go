package state

import (
	"context"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/gorewood/bmadflow/internal/output"
)

// Watch calls fn with the current state and again every time the state
// document is replaced, until ctx is cancelled. Unparsable intermediate
// documents are skipped.
func (s *Store) Watch(ctx context.Context, projectPath string, fn func(*ProjectState)) error {
	dir := Dir(projectPath)
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return output.NotInitialized(projectPath)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return output.NewSystemErrorWithCause("failed to start state watcher", err)
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(dir); err != nil {
		return output.NewSystemErrorWithCause("failed to watch "+dir, err)
	}

	if st, err := s.Read(projectPath); err != nil {
		return err
	} else if st != nil {
		fn(st)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Base(ev.Name) != FileName || !(ev.Has(fsnotify.Create) || ev.Has(fsnotify.Write)) {
				continue
			}
			st, err := s.Read(projectPath)
			if err != nil {
				s.logger.Warn("state watch read failed", "err", err)
				continue
			}
			if st != nil {
				fn(st)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Warn("state watcher error", "err", err)
		}
	}
}
