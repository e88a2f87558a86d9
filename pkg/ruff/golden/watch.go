package golden

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long the watcher waits for changes to settle
const DefaultDebounce = 200 * time.Millisecond

// Watcher reruns the fixtures of a directory whenever a fixture or snapshot
// changes
type Watcher struct {
	watcher  *fsnotify.Watcher
	opts     Options
	debounce time.Duration
	stdout   io.Writer
	stderr   io.Writer

	written  map[string]time.Time // snapshots written by the last run
	afterRun func(*Summary)       // test hook
}

// NewWatcher creates a watcher over opts.Dir. Run reports go to opts.Out,
// falling back to stdout.
func NewWatcher(opts Options, debounce time.Duration, stdout, stderr io.Writer) (*Watcher, error) {
	if opts.Out == nil {
		opts.Out = stdout
	}
	opts = opts.withDefaults()
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	if err := fsWatcher.Add(opts.Dir); err != nil {
		fsWatcher.Close()
		return nil, fmt.Errorf("watching %s: %w", opts.Dir, err)
	}

	return &Watcher{
		watcher:  fsWatcher,
		opts:     opts,
		debounce: debounce,
		stdout:   stdout,
		stderr:   stderr,
		written:  make(map[string]time.Time),
	}, nil
}

// Watch runs the fixtures once and then again after every change until ctx
// is cancelled
func Watch(ctx context.Context, opts Options, debounce time.Duration, stdout, stderr io.Writer) error {
	w, err := NewWatcher(opts, debounce, stdout, stderr)
	if err != nil {
		return err
	}
	defer w.Close()
	return w.Run(ctx)
}

// Run blocks until ctx is cancelled or the underlying watcher stops
func (w *Watcher) Run(ctx context.Context) error {
	w.logInfo("watching %s", w.opts.Dir)
	w.runOnce(ctx)

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			timer.Reset(w.debounce)

		case <-timer.C:
			w.runOnce(ctx)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logError("watcher error: %v", err)
		}
	}
}

// relevant reports whether event touches a fixture or a snapshot. Snapshots
// the harness itself has just written are ignored so a run does not trigger
// itself.
func (w *Watcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}
	switch filepath.Ext(event.Name) {
	case w.opts.SourceExt:
		return true
	case w.opts.ExpectedExt:
		if w.opts.Update {
			return false
		}
		at, ok := w.written[event.Name]
		return !ok || time.Since(at) > time.Second
	}
	return false
}

func (w *Watcher) runOnce(ctx context.Context) {
	summary, err := Run(ctx, w.opts)
	if err != nil {
		if ctx.Err() == nil {
			w.logError("%v", err)
		}
		return
	}
	now := time.Now()
	for _, res := range summary.Results {
		if res.Updated {
			w.written[SnapshotPath(res.Path, w.opts.ExpectedExt)] = now
		}
	}
	if w.afterRun != nil {
		w.afterRun(summary)
	}
}

// Close stops the watcher
func (w *Watcher) Close() error {
	return w.watcher.Close()
}

func (w *Watcher) logInfo(format string, args ...interface{}) {
	fmt.Fprintf(w.stdout, "[WATCH] "+format+"\n", args...)
}

func (w *Watcher) logError(format string, args ...interface{}) {
	fmt.Fprintf(w.stderr, "[WATCH ERROR] "+format+"\n", args...)
}
