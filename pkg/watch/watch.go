// Package watch reruns a callback when files under a set of paths change.
//
// Directories are watched recursively, and directories created while
// watching are added as they appear. Bursts of events are coalesced: the
// callback runs once the paths have been quiet for the debounce interval
// and receives every path that changed during the burst. Callbacks run on
// the watch goroutine, one at a time.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/arthur-debert/rulelint/pkg/logging"
	"github.com/arthur-debert/rulelint/pkg/pattern"
)

// DefaultDebounce is used when Config.Debounce is not set
const DefaultDebounce = 250 * time.Millisecond

// Config contains configuration for the watcher
type Config struct {
	// Paths are files or directories to watch
	Paths []string
	// Debounce is the quiet period before the callback runs
	Debounce time.Duration
	// Ignore holds glob patterns of paths whose changes are dropped
	Ignore []string
}

// ChangeFunc is called with the sorted paths changed during a burst
type ChangeFunc func(ctx context.Context, changed []string) error

// Watcher watches paths for changes
type Watcher struct {
	watcher *fsnotify.Watcher
	logger  zerolog.Logger
	config  Config
	ignore  []*pattern.Glob

	closeOnce sync.Once
	closeErr  error
}

// New creates a watcher and registers every path. Close releases it.
func New(config Config) (*Watcher, error) {
	if config.Debounce <= 0 {
		config.Debounce = DefaultDebounce
	}
	if len(config.Paths) == 0 {
		return nil, fmt.Errorf("no paths to watch")
	}

	ignore := make([]*pattern.Glob, 0, len(config.Ignore))
	for _, g := range config.Ignore {
		compiled, err := pattern.CompileGlob(g)
		if err != nil {
			return nil, fmt.Errorf("invalid ignore pattern %q: %w", g, err)
		}
		ignore = append(ignore, compiled)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	w := &Watcher{
		watcher: fsw,
		logger:  logging.GetLogger("watch"),
		config:  config,
		ignore:  ignore,
	}
	for _, p := range config.Paths {
		if err := w.addPath(p); err != nil {
			_ = w.Close()
			return nil, err
		}
	}
	return w, nil
}

// Watched returns the watched directories and files
func (w *Watcher) Watched() []string {
	list := w.watcher.WatchList()
	sort.Strings(list)
	return list
}

// Watch blocks until ctx is cancelled, calling onChange after each burst of
// changes. Callback errors are logged and watching continues.
func (w *Watcher) Watch(ctx context.Context, onChange ChangeFunc) error {
	w.logger.Info().
		Strs("paths", w.config.Paths).
		Dur("debounce", w.config.Debounce).
		Msg("Watching for changes")

	pending := make(map[string]bool)
	timer := time.NewTimer(w.config.Debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Debug().Msg("Watcher stopped")
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			if !w.shouldProcess(event) {
				continue
			}
			w.logger.Debug().Str("path", event.Name).Str("op", event.Op.String()).Msg("File event")

			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.addDirectory(event.Name); err != nil {
						w.logger.Warn().Err(err).Str("path", event.Name).Msg("Cannot watch new directory")
					}
				}
			}

			pending[event.Name] = true
			timer.Reset(w.config.Debounce)

		case <-timer.C:
			changed := make([]string, 0, len(pending))
			for p := range pending {
				changed = append(changed, p)
			}
			sort.Strings(changed)
			clear(pending)

			w.logger.Info().Int("paths", len(changed)).Msg("Change detected")
			if err := onChange(ctx, changed); err != nil {
				w.logger.Error().Err(err).Msg("Change handler failed")
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			w.logger.Error().Err(err).Msg("File watcher error")
		}
	}
}

// Close stops watching. It is safe to call more than once.
func (w *Watcher) Close() error {
	w.closeOnce.Do(func() {
		w.closeErr = w.watcher.Close()
	})
	return w.closeErr
}

func (w *Watcher) addPath(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to watch path: %w", err)
	}
	if info.IsDir() {
		return w.addDirectory(path)
	}
	return w.watcher.Add(path)
}

// addDirectory adds dir and every subdirectory that is not ignored or hidden
func (w *Watcher) addDirectory(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && (strings.HasPrefix(d.Name(), ".") || w.ignored(path+"/")) {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			return fmt.Errorf("failed to watch directory %q: %w", path, err)
		}
		w.logger.Trace().Str("path", path).Msg("Watching directory")
		return nil
	})
}

// shouldProcess drops attribute changes and ignored paths
func (w *Watcher) shouldProcess(event fsnotify.Event) bool {
	if event.Op == fsnotify.Chmod {
		return false
	}
	return !w.ignored(event.Name)
}

func (w *Watcher) ignored(path string) bool {
	p := filepath.ToSlash(path)
	for _, g := range w.ignore {
		if g.Match(p) {
			return true
		}
	}
	return false
}
