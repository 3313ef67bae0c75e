package config

import (
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher watches the configuration file and reloads it on change, giving
// operators a way to retune decay and reinforcement without a restart.
// Reloads that fail validation are logged and discarded; the previous
// configuration stays in effect.
type Watcher struct {
	path     string
	watcher  *fsnotify.Watcher
	mu       sync.RWMutex
	current  *Config
	onChange []func(*Config)
	logger   *zap.Logger
	stopCh   chan struct{}
	stopOnce sync.Once

	// debounce guards against editors that fire several write events for
	// one save.
	lastReload time.Time
}

// NewWatcher creates a watcher over the given config file path.
func NewWatcher(path string, initial *Config, logger *zap.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(path); err != nil {
		fsw.Close()
		return nil, err
	}

	return &Watcher{
		path:    path,
		watcher: fsw,
		current: initial,
		logger:  logger,
		stopCh:  make(chan struct{}),
	}, nil
}

// OnChange registers a callback invoked with each successfully reloaded
// configuration.
func (w *Watcher) OnChange(fn func(*Config)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onChange = append(w.onChange, fn)
}

// Current returns the most recently loaded configuration.
func (w *Watcher) Current() *Config {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.current
}

// Start begins watching in a background goroutine.
func (w *Watcher) Start() {
	go w.loop()
}

// Stop ends watching and releases the underlying file watcher.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
		w.watcher.Close()
	})
}

func (w *Watcher) loop() {
	for {
		select {
		case <-w.stopCh:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.reload()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("config watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) reload() {
	w.mu.Lock()
	if time.Since(w.lastReload) < 500*time.Millisecond {
		w.mu.Unlock()
		return
	}
	w.lastReload = time.Now()
	w.mu.Unlock()

	cfg, err := Load(w.path)
	if err != nil {
		w.logger.Warn("config reload failed, keeping previous configuration",
			zap.String("path", w.path),
			zap.Error(err),
		)
		return
	}

	w.mu.Lock()
	w.current = cfg
	callbacks := make([]func(*Config), len(w.onChange))
	copy(callbacks, w.onChange)
	w.mu.Unlock()

	w.logger.Info("configuration reloaded", zap.String("path", w.path))
	for _, fn := range callbacks {
		fn(cfg)
	}
}
