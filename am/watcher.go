package am

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/promptlab/promptlab/logger"
)

// PromptsWatcher watches the prompts file for changes and reloads the
// meta-prompt configuration, notifying registered callbacks.
type PromptsWatcher struct {
	prompts *MetaPrompts
	watcher *fsnotify.Watcher

	mu             sync.RWMutex
	callbacks      []PromptsReloadCallback
	debounceTimer  *time.Timer
	debouncePeriod time.Duration
}

// PromptsReloadCallback is called after the meta-prompt config is reloaded
type PromptsReloadCallback func(*MetaPromptConfig)

// NewPromptsWatcher creates a watcher for the prompts file backing mp
func NewPromptsWatcher(mp *MetaPrompts) (*PromptsWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	if err := watcher.Add(mp.Path()); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch prompts file %s: %w", mp.Path(), err)
	}

	pw := &PromptsWatcher{
		prompts:        mp,
		watcher:        watcher,
		callbacks:      make([]PromptsReloadCallback, 0),
		debouncePeriod: 500 * time.Millisecond, // Debounce rapid file changes
	}

	return pw, nil
}

// OnReload registers a callback to be called when the config is reloaded
func (pw *PromptsWatcher) OnReload(callback PromptsReloadCallback) {
	pw.mu.Lock()
	defer pw.mu.Unlock()
	pw.callbacks = append(pw.callbacks, callback)
}

// Start begins watching for prompts file changes
func (pw *PromptsWatcher) Start() {
	go pw.watchLoop()
}

// watchLoop monitors file system events
func (pw *PromptsWatcher) watchLoop() {
	for {
		select {
		case event, ok := <-pw.watcher.Events:
			if !ok {
				return
			}

			// Only reload on Write or Create events
			if event.Op&fsnotify.Write == fsnotify.Write || event.Op&fsnotify.Create == fsnotify.Create {
				// Ignore the backup file written before edits
				if strings.HasSuffix(event.Name, ".backup") {
					continue
				}

				logger.Infow("Prompts watcher detected change",
					"file", event.Name,
					"op", event.Op.String())
				pw.scheduleReload()
			}

		case err, ok := <-pw.watcher.Errors:
			if !ok {
				return
			}
			logger.Warnw("Prompts watcher error",
				"error", err)
		}
	}
}

// scheduleReload debounces rapid file changes and triggers reload
func (pw *PromptsWatcher) scheduleReload() {
	pw.mu.Lock()
	defer pw.mu.Unlock()

	// Cancel existing timer if any
	if pw.debounceTimer != nil {
		pw.debounceTimer.Stop()
	}

	// Schedule reload after debounce period
	pw.debounceTimer = time.AfterFunc(pw.debouncePeriod, func() {
		if err := pw.reload(); err != nil {
			logger.Errorw("Prompts reload failed, fallback template active",
				"error", err)
		}
	})
}

// reload reloads the meta-prompt configuration and calls all callbacks
func (pw *PromptsWatcher) reload() error {
	err := pw.prompts.Reload()
	if err == nil {
		logger.Infow("Prompts configuration reloaded",
			"path", pw.prompts.Path())
	}

	current := pw.prompts.Current()

	pw.mu.RLock()
	callbacks := make([]PromptsReloadCallback, len(pw.callbacks))
	copy(callbacks, pw.callbacks)
	pw.mu.RUnlock()

	for _, callback := range callbacks {
		callback(current)
	}

	return err
}

// Stop stops watching for prompts file changes
func (pw *PromptsWatcher) Stop() error {
	return pw.watcher.Close()
}
