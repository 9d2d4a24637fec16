package config

import (
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	domainconfig "seds-backend/domain/config"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const debounceDelay = 500 * time.Millisecond

// RulesWatcher serves the current domain rules and reloads them when the
// rules file changes. Invalid files are logged and ignored.
type RulesWatcher struct {
	path        string
	environment string
	current     atomic.Pointer[domainconfig.DomainConfig]
	logger      *zap.Logger

	watcher  *fsnotify.Watcher
	stopOnce sync.Once
	stopCh   chan struct{}

	mu        sync.Mutex
	callbacks []func(*domainconfig.DomainConfig)
}

// NewRulesWatcher loads the rules file and, when watch is set, starts
// watching it for changes.
func NewRulesWatcher(path, environment string, watch bool, logger *zap.Logger) (*RulesWatcher, error) {
	rules, err := LoadDomainRules(path, environment)
	if err != nil {
		return nil, err
	}

	w := &RulesWatcher{
		path:        path,
		environment: environment,
		logger:      logger,
		stopCh:      make(chan struct{}),
	}
	w.current.Store(rules)

	if !watch || path == "" {
		return w, nil
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	// Editors often replace the file, so watch its directory.
	if err := fsWatcher.Add(filepath.Dir(path)); err != nil {
		fsWatcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", path, err)
	}
	w.watcher = fsWatcher

	go w.watchLoop()

	logger.Info("Domain rules hot reloading enabled", zap.String("path", path))
	return w, nil
}

// Current implements domainconfig.Source
func (w *RulesWatcher) Current() *domainconfig.DomainConfig {
	return w.current.Load()
}

// OnChange registers a callback run after every successful reload
func (w *RulesWatcher) OnChange(fn func(*domainconfig.DomainConfig)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.callbacks = append(w.callbacks, fn)
}

// Stop stops watching
func (w *RulesWatcher) Stop() {
	w.stopOnce.Do(func() { close(w.stopCh) })
}

func (w *RulesWatcher) watchLoop() {
	defer w.watcher.Close()

	var debounceTimer *time.Timer
	target := filepath.Clean(w.path)

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target || event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(debounceDelay, w.Reload)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("File watcher error", zap.Error(err))

		case <-w.stopCh:
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			return
		}
	}
}

// Reload re-reads the rules file. The previous rules stay in effect when
// the file is unreadable or invalid.
func (w *RulesWatcher) Reload() {
	rules, err := LoadDomainRules(w.path, w.environment)
	if err != nil {
		w.logger.Error("Invalid domain rules after reload, keeping previous rules", zap.Error(err))
		return
	}
	w.current.Store(rules)

	w.mu.Lock()
	callbacks := append([]func(*domainconfig.DomainConfig){}, w.callbacks...)
	w.mu.Unlock()
	for _, fn := range callbacks {
		fn(rules)
	}

	w.logger.Info("Domain rules reloaded",
		zap.Strings("commit_ordinals", rules.CommitOrdinals),
		zap.Int("synthesized_ordinal", rules.SynthesizedOrdinal),
	)
}
