package envvars

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// WatchDebounceDelay is the debounce delay for file watch events
const WatchDebounceDelay = 300 * time.Millisecond

// Watcher regenerates the manifest whenever a script under root changes
type Watcher struct {
	scanner  *Scanner
	root     string
	output   string
	logger   *slog.Logger
	debounce time.Duration

	// OnExtract, if set, is called after every regeneration
	OnExtract func(names []string, err error)
}

// NewWatcher creates a watcher for root writing to output
func NewWatcher(scanner *Scanner, root, output string, logger *slog.Logger) *Watcher {
	return &Watcher{
		scanner:  scanner,
		root:     root,
		output:   output,
		logger:   logger,
		debounce: WatchDebounceDelay,
	}
}

// Run watches until ctx is done. The manifest is not written on start; call
// Extract first for an initial run.
func (w *Watcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	if err := w.addTree(watcher, w.root); err != nil {
		return err
	}
	w.logger.Info("watching for script changes", "dir", w.root, "output", w.output)

	var debounceTimer *time.Timer
	pending := make(chan string, 1)
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.addTree(watcher, event.Name); err != nil {
						w.logger.Warn("failed to watch new directory", "dir", event.Name, "error", err)
					}
					w.schedule(&debounceTimer, pending, event.Name)
					continue
				}
			}
			if IsScript(event.Name) && event.Op != fsnotify.Chmod {
				w.schedule(&debounceTimer, pending, event.Name)
			}

		case name := <-pending:
			w.logger.Info("script changed, regenerating manifest", "file", name)
			names, err := Extract(w.scanner, w.root, w.output)
			if err != nil {
				w.logger.Error("failed to regenerate manifest", "error", err)
			} else {
				w.logger.Info("manifest written", "output", w.output, "variables", len(names))
			}
			if w.OnExtract != nil {
				w.OnExtract(names, err)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watcher error", "error", err)
		}
	}
}

// schedule resets the debounce timer; the last changed file is reported once it fires
func (w *Watcher) schedule(timer **time.Timer, pending chan string, name string) {
	if *timer != nil {
		(*timer).Stop()
	}
	*timer = time.AfterFunc(w.debounce, func() {
		select {
		case pending <- name:
		default:
		}
	})
}

func (w *Watcher) addTree(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && w.scanner.skipDirs[d.Name()] {
			return filepath.SkipDir
		}
		if err := watcher.Add(path); err != nil {
			return fmt.Errorf("failed to watch %s: %w", path, err)
		}
		return nil
	})
}
