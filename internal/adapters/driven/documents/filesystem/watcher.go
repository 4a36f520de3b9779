package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/quest-cli/internal/core/domain"
	"github.com/custodia-labs/quest-cli/internal/logger"
)

// DefaultDebounce batches the burst of events an editor emits on save.
const DefaultDebounce = 500 * time.Millisecond

// Refresher runs one refresh cycle.
type Refresher interface {
	Refresh(ctx context.Context) domain.RefreshReport
}

// WatcherOptions configures a Watcher.
type WatcherOptions struct {
	// Debounce is the quiet period before a refresh fires (default: 500ms).
	Debounce time.Duration

	// FollowEdits makes the most recently saved note the active document.
	FollowEdits bool

	// ConfigPath, when set, is watched so that a document opened from
	// another process switches the active document here too.
	ConfigPath string

	// Reload re-reads configuration after ConfigPath changes.
	Reload func() error
}

// Watcher refreshes quests when the active document is edited or replaced.
type Watcher struct {
	vault     *Vault
	refresher Refresher
	opts      WatcherOptions

	mu         sync.Mutex
	lastActive string
	refreshes  int
}

// NewWatcher creates a watcher for vault.
func NewWatcher(vault *Vault, refresher Refresher, opts WatcherOptions) *Watcher {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	return &Watcher{vault: vault, refresher: refresher, opts: opts}
}

// Refreshes returns how many refresh cycles the watcher has triggered.
func (w *Watcher) Refreshes() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.refreshes
}

// Run watches until ctx is cancelled. It blocks.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer fw.Close()

	if err := w.addTree(fw, w.vault.Root()); err != nil {
		return err
	}
	if w.opts.ConfigPath != "" {
		if err := fw.Add(filepath.Dir(w.opts.ConfigPath)); err != nil {
			logger.Warn("not watching config: %v", err)
		}
	}

	w.lastActive = w.activeID(ctx)
	logger.Info("watching %s (active: %q)", w.vault.Root(), w.lastActive)

	var (
		timer   *time.Timer
		pending <-chan time.Time
	)
	schedule := func() {
		if timer == nil {
			timer = time.NewTimer(w.opts.Debounce)
		} else {
			timer.Reset(w.opts.Debounce)
		}
		pending = timer.C
	}
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if w.handleEvent(ctx, fw, event) {
				schedule()
			}

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: %v", err)

		case <-pending:
			pending = nil
			w.refresh(ctx)
		}
	}
}

// handleEvent reports whether the event should trigger a refresh.
func (w *Watcher) handleEvent(ctx context.Context, fw *fsnotify.Watcher, event fsnotify.Event) bool {
	if w.opts.ConfigPath != "" && filepath.Clean(event.Name) == filepath.Clean(w.opts.ConfigPath) {
		return w.handleConfigChange(ctx, event)
	}

	rel, err := filepath.Rel(w.vault.Root(), event.Name)
	if err != nil || isHidden(rel) {
		return false
	}
	id := filepath.ToSlash(rel)

	switch {
	case event.Has(fsnotify.Create):
		if err := w.addTree(fw, event.Name); err != nil {
			logger.Debug("not watching %s: %v", event.Name, err)
		}
		return w.touched(ctx, id)

	case event.Has(fsnotify.Write):
		return w.touched(ctx, id)

	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		if id != w.activeID(ctx) {
			return false
		}
		logger.Warn("active document %s was removed", id)
		if err := w.vault.ClearActiveDocument(); err != nil {
			logger.Error("clearing active document: %v", err)
		}
		w.lastActive = ""
		return false
	}
	return false
}

// touched handles a write to the document id.
func (w *Watcher) touched(ctx context.Context, id string) bool {
	active := w.activeID(ctx)
	if id == active {
		return true
	}
	if !w.opts.FollowEdits {
		return false
	}
	if err := w.vault.SetActiveDocument(ctx, id); err != nil {
		// Directories and files that vanished again are expected here.
		logger.Debug("not following %s: %v", id, err)
		return false
	}
	logger.Info("active document is now %s", id)
	w.lastActive = id
	return true
}

func (w *Watcher) handleConfigChange(ctx context.Context, event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return false
	}
	if w.opts.Reload != nil {
		if err := w.opts.Reload(); err != nil {
			logger.Warn("reloading config: %v", err)
			return false
		}
	}
	active := w.activeID(ctx)
	if active == w.lastActive {
		return false
	}
	logger.Info("active document switched to %q", active)
	w.lastActive = active
	return active != ""
}

func (w *Watcher) refresh(ctx context.Context) {
	report := w.refresher.Refresh(ctx)

	w.mu.Lock()
	w.refreshes++
	w.mu.Unlock()

	switch report.Outcome {
	case domain.OutcomeUpdated:
		logger.Info("refreshed %s: %d completed, %d generated, %d obsolete",
			report.DocumentID, len(report.Completed), len(report.Generated), report.Obsoleted)
	case domain.OutcomeFailed:
		// The reconciler already logged the cause.
	default:
		logger.Debug("refresh skipped: %s", report.Outcome)
	}
}

func (w *Watcher) activeID(ctx context.Context) string {
	ref, err := w.vault.ActiveDocument(ctx)
	if err != nil || ref == nil {
		return ""
	}
	return ref.ID
}

// addTree watches dir and every non-hidden directory below it. fsnotify
// does not recurse on its own. Non-directories are ignored.
func (w *Watcher) addTree(fw *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != w.vault.Root() && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if err := fw.Add(path); err != nil {
			return fmt.Errorf("watching %s: %w", path, err)
		}
		return nil
	})
}

// isHidden reports whether any element of the vault-relative path starts
// with a dot (editor state, VCS metadata, swap files).
func isHidden(rel string) bool {
	if rel == "." || strings.HasPrefix(rel, "..") {
		return true
	}
	for _, part := range strings.Split(filepath.ToSlash(rel), "/") {
		if strings.HasPrefix(part, ".") {
			return true
		}
	}
	return false
}
