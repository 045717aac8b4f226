package fs

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"
	"sync/atomic"
	"time"

	"github.com/aretw0/lifecycle/pkg/core/worker"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
)

// Scene event operations.
const (
	OpCreate = "create"
	OpModify = "modify"
	OpRemove = "remove"
)

// SceneEvent reports a change to a scene file.
type SceneEvent struct {
	Op        string
	Path      string
	Timestamp int64
}

// String implements lifecycle.Event.
func (e SceneEvent) String() string {
	return e.Op + " " + e.Path
}

// WatchConfig configures a SceneWatcher.
type WatchConfig struct {
	// Root is the directory watched recursively. Hidden directories are skipped.
	Root string
	// Pattern selects scene files by their slash-separated path relative to
	// Root. Supports ** and defaults to "**/*.{yaml,yml,json}".
	Pattern string
	// Debounce is the quiet period before an event is delivered. Defaults to 50ms.
	Debounce time.Duration

	Logger       *slog.Logger
	ErrorHandler func(error)
}

// DefaultScenePattern matches every YAML or JSON file.
const DefaultScenePattern = "**/*.{yaml,yml,json}"

// SceneWatcher is a lifecycle worker that emits SceneEvents for scene files
// under a root directory. Sidecars, the batch index, property store files
// and temporary files are never reported. The events channel is not closed
// when the worker stops, so a supervisor may restart a fresh worker on it.
type SceneWatcher struct {
	*worker.BaseWorker
	cfg       WatchConfig
	events    chan<- SceneEvent
	watcher   *fsnotify.Watcher
	debouncer *debouncer
	cancel    context.CancelFunc
	active    atomic.Bool
}

// NewSceneWatcher creates a watcher delivering to events.
func NewSceneWatcher(cfg WatchConfig, events chan<- SceneEvent) *SceneWatcher {
	if cfg.Pattern == "" {
		cfg.Pattern = DefaultScenePattern
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = 50 * time.Millisecond
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &SceneWatcher{
		BaseWorker: worker.NewBaseWorker("scene-watcher"),
		cfg:        cfg,
		events:     events,
	}
}

func (w *SceneWatcher) Start(ctx context.Context) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	status := w.State().Status
	if status != worker.StatusCreated && status != worker.StatusPending {
		return fmt.Errorf("watcher already started (status: %s)", status)
	}

	if _, err := doublestar.Match(w.cfg.Pattern, ""); err != nil {
		return fmt.Errorf("invalid pattern %q: %w", w.cfg.Pattern, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := w.recursiveAdd(watcher, w.cfg.Root); err != nil {
		_ = watcher.Close()
		return err
	}

	w.watcher = watcher
	w.debouncer = newDebouncer(w.cfg.Debounce)
	w.active.Store(true)

	runCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	w.SetStatus(worker.StatusRunning)
	return w.StartFunc(runCtx, w.run)
}

func (w *SceneWatcher) Stop(ctx context.Context) error {
	if w.cancel != nil {
		w.StopRequested = true
		w.cancel()
	}

	return w.BaseWorker.Stop(ctx)
}

func (w *SceneWatcher) State() worker.State {
	return w.ExportState(func(s *worker.State) {
		s.Metadata = map[string]string{
			worker.MetadataType: string(worker.TypeGoroutine),
			"root":              w.cfg.Root,
			"pattern":           w.cfg.Pattern,
		}
	})
}

// Active reports whether the event loop is running.
func (w *SceneWatcher) Active() bool {
	return w.active.Load()
}

// recursiveAdd watches dir and every non-hidden directory below it.
func (w *SceneWatcher) recursiveAdd(watcher *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if err := watcher.Add(path); err != nil {
			return fmt.Errorf("failed to watch %s: %w", path, err)
		}
		return nil
	})
}

// shouldIgnore filters out files metro writes itself and files outside the pattern.
func (w *SceneWatcher) shouldIgnore(path string) bool {
	base := filepath.Base(path)
	switch {
	case strings.HasPrefix(base, TempFilePrefix),
		strings.HasPrefix(base, "."),
		strings.HasSuffix("."+base, PropsFileSuffix),
		IsSidecar(path):
		return true
	}

	rel, err := filepath.Rel(w.cfg.Root, path)
	if err != nil {
		return true
	}
	ok, _ := doublestar.Match(w.cfg.Pattern, filepath.ToSlash(rel))
	return !ok
}

func mapEventType(event fsnotify.Event) string {
	switch {
	case event.Has(fsnotify.Create):
		return OpCreate
	case event.Has(fsnotify.Write):
		return OpModify
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		return OpRemove
	}
	return ""
}

// processFilesystemEvent filters, maps and debounces one event.
func (w *SceneWatcher) processFilesystemEvent(ctx context.Context, event fsnotify.Event) bool {
	w.cfg.Logger.Debug("event received", "name", event.Name, "op", event.Op.String())

	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if !strings.HasPrefix(info.Name(), ".") {
				if err := w.recursiveAdd(w.watcher, event.Name); err != nil {
					w.handleWatcherError(err)
				}
			}
			return false
		}
	}

	if w.shouldIgnore(event.Name) {
		return false
	}
	op := mapEventType(event)
	if op == "" {
		return false
	}

	w.sendEvent(ctx, SceneEvent{
		Op:        op,
		Path:      event.Name,
		Timestamp: time.Now().Unix(),
	})
	return true
}

// sendEvent enqueues an event via the debouncer.
func (w *SceneWatcher) sendEvent(ctx context.Context, event SceneEvent) {
	w.debouncer.add(event, func(e SceneEvent) {
		select {
		case w.events <- e:
		case <-ctx.Done():
		}
	})
}

func (w *SceneWatcher) handleWatcherError(err error) {
	w.cfg.Logger.Error("fsnotify error", "error", err)
	if w.cfg.ErrorHandler != nil {
		w.cfg.ErrorHandler(err)
	}
}

// run is the main event loop of the worker.
func (w *SceneWatcher) run(ctx context.Context) (err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("watcher panic: %v", recovered)
			if w.cfg.Logger.Enabled(ctx, slog.LevelDebug) {
				w.cfg.Logger.Error("watcher panic", "error", err, "stack", string(debug.Stack()))
			} else {
				w.cfg.Logger.Error("watcher panic", "error", err)
			}
		}
	}()
	defer w.active.Store(false)
	defer w.watcher.Close()

	err = w.mainEventLoop(ctx)

	// Drain the debouncer before returning so no callback outlives the worker.
	w.debouncer.stopAndWait(5 * time.Second)
	return err
}

func (w *SceneWatcher) mainEventLoop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				if w.StopRequested || ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("watcher events channel closed")
			}
			w.processFilesystemEvent(ctx, event)

		case wErr, ok := <-w.watcher.Errors:
			if !ok {
				if w.StopRequested || ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("watcher errors channel closed")
			}
			w.handleWatcherError(wErr)
		}
	}
}
