package catalog

import (
	"context"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"walletcat/internal/logging"
)

// Watcher calls OnChange after documents in a data directory settle.
type Watcher struct {
	mu          sync.Mutex
	watcher     *fsnotify.Watcher
	dir         string
	onChange    func(ctx context.Context, paths []string)
	log         *zap.SugaredLogger
	debounceMap map[string]time.Time
	debounceDur time.Duration
	tick        time.Duration
	stopCh      chan struct{}
	doneCh      chan struct{}
	running     bool
}

func NewWatcher(dir string, onChange func(ctx context.Context, paths []string), log *zap.SugaredLogger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		watcher:     fw,
		dir:         dir,
		onChange:    onChange,
		log:         logging.OrNop(log),
		debounceMap: make(map[string]time.Time),
		debounceDur: 500 * time.Millisecond,
		tick:        100 * time.Millisecond,
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}, nil
}

// SetDebounce changes how long a file must be quiet before it is reported.
func (w *Watcher) SetDebounce(d time.Duration) {
	w.mu.Lock()
	w.debounceDur = d
	if d < w.tick {
		w.tick = d
	}
	w.mu.Unlock()
}

// Start watches the data directory and its entities/ and wallets/ subdirectories. Non-blocking.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	tick := w.tick
	w.mu.Unlock()

	if err := w.watcher.Add(w.dir); err != nil {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
		return err
	}
	for _, sub := range []string{EntitiesDir, WalletsDir} {
		p := filepath.Join(w.dir, sub)
		if err := w.watcher.Add(p); err != nil {
			w.log.Warnw("watch subdirectory", "dir", p, "err", err)
		}
	}
	w.log.Infow("watching catalog", "dir", w.dir)

	go w.run(ctx, tick)
	return nil
}

// Stop ends the event loop and releases the OS watcher.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh
	if err := w.watcher.Close(); err != nil {
		w.log.Errorw("close watcher", "err", err)
	}
}

func (w *Watcher) run(ctx context.Context, tick time.Duration) {
	defer close(w.doneCh)

	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Errorw("watcher error", "err", err)
		case <-ticker.C:
			w.processDebounced(ctx)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if !IsDocument(event.Name) && filepath.Base(event.Name) != FallbacksFile {
		return
	}
	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}
	w.log.Debugw("catalog file changed", "path", event.Name, "op", event.Op.String())
	w.mu.Lock()
	w.debounceMap[event.Name] = time.Now()
	w.mu.Unlock()
}

func (w *Watcher) processDebounced(ctx context.Context) {
	w.mu.Lock()
	now := time.Now()
	var settled []string
	for path, at := range w.debounceMap {
		if now.Sub(at) >= w.debounceDur {
			settled = append(settled, path)
			delete(w.debounceMap, path)
		}
	}
	w.mu.Unlock()

	if len(settled) == 0 || w.onChange == nil {
		return
	}
	sort.Strings(settled)
	w.onChange(ctx, settled)
}
