package source

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/justin4957/seclab-dashboard/internal/logger"
)

// Watcher reports changes to the event file. It watches the parent
// directory so that editors replacing the file via rename are seen too.
type Watcher struct {
	path     string
	debounce time.Duration
	poll     time.Duration
	watcher  *fsnotify.Watcher
	changes  chan string
	stopCh   chan struct{}
	stopOnce sync.Once

	lastMod  time.Time
	lastSize int64
}

// NewWatcher starts watching path. debounce coalesces bursts of events;
// poll is the interval of the stat fallback for file systems where fsnotify
// misses events (0 disables it).
func NewWatcher(path string, debounce, poll time.Duration) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path: %w", err)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("failed to watch directory: %w", err)
	}

	w := &Watcher{
		path:     abs,
		debounce: debounce,
		poll:     poll,
		watcher:  fw,
		changes:  make(chan string, 1),
		stopCh:   make(chan struct{}),
	}
	if info, err := os.Stat(abs); err == nil {
		w.lastMod, w.lastSize = info.ModTime(), info.Size()
	}

	logger.Info("Watching event file", logger.String("path", abs))
	return w, nil
}

// Changes delivers the watched path after each debounced change
func (w *Watcher) Changes() <-chan string {
	return w.changes
}

// Run is the main loop. It returns when ctx is cancelled or Close is called.
func (w *Watcher) Run(ctx context.Context) error {
	defer close(w.changes)

	var pollC <-chan time.Time
	if w.poll > 0 {
		ticker := time.NewTicker(w.poll)
		defer ticker.Stop()
		pollC = ticker.C
	}

	debounce := time.NewTimer(time.Hour)
	debounce.Stop()
	defer debounce.Stop()
	schedule := func() { debounce.Reset(w.debounce) }

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-w.stopCh:
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}

			switch {
			case event.Op&fsnotify.Write == fsnotify.Write,
				event.Op&fsnotify.Create == fsnotify.Create:
				logger.Debug("Event file written", logger.String("op", event.Op.String()))
				schedule()

			case event.Op&fsnotify.Remove == fsnotify.Remove,
				event.Op&fsnotify.Rename == fsnotify.Rename:
				logger.Warn("Event file moved or removed", logger.String("op", event.Op.String()))
				schedule()
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Watcher error", logger.Err(err))

		case <-pollC:
			if w.statChanged() {
				schedule()
			}

		case <-debounce.C:
			w.statChanged()
			select {
			case w.changes <- w.path:
			default:
				// a change is already queued
			}
		}
	}
}

// statChanged records the current mod time and size and reports whether
// they differ from the last seen values
func (w *Watcher) statChanged() bool {
	info, err := os.Stat(w.path)
	if err != nil {
		changed := !w.lastMod.IsZero()
		w.lastMod, w.lastSize = time.Time{}, 0
		return changed
	}
	changed := !info.ModTime().Equal(w.lastMod) || info.Size() != w.lastSize
	w.lastMod, w.lastSize = info.ModTime(), info.Size()
	return changed
}

// Close stops the watcher
func (w *Watcher) Close() error {
	var err error
	w.stopOnce.Do(func() {
		close(w.stopCh)
		err = w.watcher.Close()
	})
	return err
}
