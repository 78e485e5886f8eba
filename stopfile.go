package progresso

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"vawter.tech/stopper"
)

// WatchStopFile calls onStop once when path is created or written. The watch
// runs under sctx and ends when sctx begins stopping. A stop file left over
// from an earlier run is removed before watching starts.
func WatchStopFile(sctx *stopper.Context, path string, logger *slog.Logger, onStop func()) error {
	if logger == nil {
		logger = slog.Default()
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return &OpError{Op: OpRead, Target: path, Err: err}
	}

	if err := os.Remove(abs); err == nil {
		logger.Info("removed stale stop file", "path", abs)
	} else if !errors.Is(err, os.ErrNotExist) {
		return &OpError{Op: OpRead, Target: abs, Err: err}
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return &OpError{Op: OpRead, Target: abs, Err: err}
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		_ = watcher.Close()
		return &OpError{Op: OpRead, Target: abs, Err: err}
	}

	sctx.Defer(func() {
		_ = watcher.Close()
	})

	sctx.Go(func(sctx *stopper.Context) error {
		for {
			select {
			case <-sctx.Stopping():
				return nil

			case event, ok := <-watcher.Events:
				if !ok {
					return nil
				}
				if filepath.Clean(event.Name) != abs {
					continue
				}
				if event.Op&(fsnotify.Create|fsnotify.Write) != 0 {
					logger.Info("stop file detected", "path", abs)
					onStop()
					return nil
				}

			case err, ok := <-watcher.Errors:
				if !ok {
					return nil
				}
				if err != nil {
					logger.Warn("stop file watch error", "error", err)
				}
			}
		}
	})

	return nil
}
