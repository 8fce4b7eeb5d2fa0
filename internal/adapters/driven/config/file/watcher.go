package file

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/artifact-search/internal/logger"
)

// PromptWatcher reloads a PromptStore when prompt files change on disk.
type PromptWatcher struct {
	store   *PromptStore
	watcher *fsnotify.Watcher
}

// NewPromptWatcher watches the store's directory. The directory is
// created if needed.
func NewPromptWatcher(store *PromptStore) (*PromptWatcher, error) {
	store.initOnce.Do(store.initialise)
	if store.initErr != nil {
		return nil, store.initErr
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := w.Add(store.Dir()); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("watch %s: %w", store.Dir(), err)
	}

	return &PromptWatcher{store: store, watcher: w}, nil
}

// Run processes events until ctx is done or the watcher is closed.
func (pw *PromptWatcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-pw.watcher.Events:
			if !ok {
				return
			}
			pw.handleEvent(event)
		case err, ok := <-pw.watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("Prompt watcher: %v", err)
		}
	}
}

// handleEvent reloads the store for changes to prompt files and reports
// whether it did.
func (pw *PromptWatcher) handleEvent(event fsnotify.Event) bool {
	if filepath.Ext(event.Name) != promptExt {
		return false
	}
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}

	name := strings.TrimSuffix(filepath.Base(event.Name), promptExt)
	logger.Debug("Prompt %s changed (%s), reloading", name, event.Op)
	pw.store.Reload()
	return true
}

// Close stops watching.
func (pw *PromptWatcher) Close() error {
	return pw.watcher.Close()
}
