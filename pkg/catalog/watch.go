package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/unifecaf/triagebot/internal/logging"
	"github.com/unifecaf/triagebot/pkg/ports"
)

// FileWatcher signals changes to a single catalog file.
// It watches the parent directory so editors that save by rename are seen.
type FileWatcher struct {
	path     string
	debounce time.Duration
	logger   *slog.Logger
}

var _ ports.Watchable = (*FileWatcher)(nil)

// NewFileWatcher creates a watcher for path. Bursts of events within
// debounce collapse into one signal.
func NewFileWatcher(path string, debounce time.Duration, logger *slog.Logger) *FileWatcher {
	if logger == nil {
		logger = logging.NewNop()
	}
	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}
	return &FileWatcher{path: filepath.Clean(path), debounce: debounce, logger: logger}
}

// Watch starts watching and returns a channel signaled after each settled change.
// The channel is closed when ctx is done.
func (w *FileWatcher) Watch(ctx context.Context) (<-chan struct{}, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := fw.Add(filepath.Dir(w.path)); err != nil {
		_ = fw.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", w.path, err)
	}

	out := make(chan struct{}, 1)
	go w.run(ctx, fw, out)
	return out, nil
}

func (w *FileWatcher) run(ctx context.Context, fw *fsnotify.Watcher, out chan<- struct{}) {
	defer close(out)
	defer fw.Close()

	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-fw.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			w.logger.Debug("Catalog file changed", "path", event.Name, "op", event.Op.String())
			timer.Reset(w.debounce)

		case err, ok := <-fw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("Catalog watcher error", "err", err)

		case <-timer.C:
			select {
			case out <- struct{}{}:
			default: // a signal is already pending
			}
		}
	}
}
