package filesystem

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/quest-cli/internal/core/domain"
)

// mockRefresher counts refresh calls.
type mockRefresher struct {
	calls atomic.Int32
	mu    sync.Mutex
	ids   []string
	vault *Vault
}

func (m *mockRefresher) Refresh(ctx context.Context) domain.RefreshReport {
	m.calls.Add(1)
	var id string
	if m.vault != nil {
		if ref, _ := m.vault.ActiveDocument(ctx); ref != nil {
			id = ref.ID
		}
	}
	m.mu.Lock()
	m.ids = append(m.ids, id)
	m.mu.Unlock()
	return domain.RefreshReport{DocumentID: id, Outcome: domain.OutcomeUpdated}
}

func (m *mockRefresher) lastID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.ids) == 0 {
		return ""
	}
	return m.ids[len(m.ids)-1]
}

// startWatcher runs w until the test ends.
func startWatcher(t *testing.T, w *Watcher) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(2 * time.Second):
			t.Error("watcher did not stop")
		}
	})
	// Give fsnotify time to register the watches.
	time.Sleep(100 * time.Millisecond)
}

func TestNewWatcher_DefaultDebounce(t *testing.T) {
	vault, _ := setupVault(t)

	w := NewWatcher(vault, &mockRefresher{}, WatcherOptions{})

	assert.Equal(t, DefaultDebounce, w.opts.Debounce)
	assert.Zero(t, w.Refreshes())
}

func TestWatcher_RefreshesOnActiveDocumentWrite(t *testing.T) {
	vault, _ := setupVault(t)
	require.NoError(t, vault.SetActiveDocument(context.Background(), "today.md"))
	refresher := &mockRefresher{vault: vault}

	startWatcher(t, NewWatcher(vault, refresher, WatcherOptions{Debounce: 50 * time.Millisecond}))

	// A burst of writes collapses into one refresh.
	for i := 0; i < 3; i++ {
		writeNote(t, vault.Root(), "today.md", "# Today\n\nShip it.")
	}

	assert.Eventually(t, func() bool { return refresher.calls.Load() >= 1 }, 3*time.Second, 20*time.Millisecond)
	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, int32(1), refresher.calls.Load())
	assert.Equal(t, "today.md", refresher.lastID())
}

func TestWatcher_IgnoresOtherDocuments(t *testing.T) {
	vault, _ := setupVault(t)
	require.NoError(t, vault.SetActiveDocument(context.Background(), "today.md"))
	refresher := &mockRefresher{}

	startWatcher(t, NewWatcher(vault, refresher, WatcherOptions{Debounce: 50 * time.Millisecond}))

	writeNote(t, vault.Root(), "projects/quest.md", "unrelated edit")
	writeNote(t, vault.Root(), ".obsidian/workspace.json", "{}")

	time.Sleep(300 * time.Millisecond)
	assert.Zero(t, refresher.calls.Load())
}

func TestWatcher_FollowEdits(t *testing.T) {
	vault, config := setupVault(t)
	require.NoError(t, vault.SetActiveDocument(context.Background(), "today.md"))
	refresher := &mockRefresher{vault: vault}

	startWatcher(t, NewWatcher(vault, refresher, WatcherOptions{
		Debounce:    50 * time.Millisecond,
		FollowEdits: true,
	}))

	writeNote(t, vault.Root(), "projects/quest.md", "now working here")

	assert.Eventually(t, func() bool { return refresher.calls.Load() >= 1 }, 3*time.Second, 20*time.Millisecond)
	assert.Equal(t, "projects/quest.md", config.GetString(ActiveDocumentKey))
	assert.Equal(t, "projects/quest.md", refresher.lastID())
}

func TestWatcher_FollowEditsInNewDirectory(t *testing.T) {
	vault, config := setupVault(t)
	refresher := &mockRefresher{vault: vault}

	startWatcher(t, NewWatcher(vault, refresher, WatcherOptions{
		Debounce:    50 * time.Millisecond,
		FollowEdits: true,
	}))

	require.NoError(t, os.MkdirAll(filepath.Join(vault.Root(), "journal"), 0755))
	// Wait for the new directory to be picked up before writing into it.
	time.Sleep(150 * time.Millisecond)
	writeNote(t, vault.Root(), "journal/monday.md", "new note")

	assert.Eventually(t, func() bool {
		return config.GetString(ActiveDocumentKey) == "journal/monday.md"
	}, 3*time.Second, 20*time.Millisecond)
}

func TestWatcher_ActiveDocumentRemoved(t *testing.T) {
	vault, config := setupVault(t)
	require.NoError(t, vault.SetActiveDocument(context.Background(), "today.md"))
	refresher := &mockRefresher{}

	startWatcher(t, NewWatcher(vault, refresher, WatcherOptions{Debounce: 50 * time.Millisecond}))

	require.NoError(t, os.Remove(filepath.Join(vault.Root(), "today.md")))

	assert.Eventually(t, func() bool {
		return config.GetString(ActiveDocumentKey) == ""
	}, 3*time.Second, 20*time.Millisecond)
	time.Sleep(150 * time.Millisecond)
	assert.Zero(t, refresher.calls.Load())
}

func TestWatcher_ConfigChangeSwitchesDocument(t *testing.T) {
	vault, config := setupVault(t)
	configDir := t.TempDir()
	configPath := filepath.Join(configDir, "config.toml")
	require.NoError(t, os.WriteFile(configPath, []byte(""), 0600))

	var reloads atomic.Int32
	refresher := &mockRefresher{vault: vault}

	startWatcher(t, NewWatcher(vault, refresher, WatcherOptions{
		Debounce:   50 * time.Millisecond,
		ConfigPath: configPath,
		Reload: func() error {
			reloads.Add(1)
			// Another process opened a document.
			return config.Set(ActiveDocumentKey, "projects/quest.md")
		},
	}))

	require.NoError(t, os.WriteFile(configPath, []byte("[document]\nactive = \"projects/quest.md\"\n"), 0600))

	assert.Eventually(t, func() bool { return refresher.calls.Load() >= 1 }, 3*time.Second, 20*time.Millisecond)
	assert.GreaterOrEqual(t, reloads.Load(), int32(1))
	assert.Equal(t, "projects/quest.md", refresher.lastID())
}

func TestWatcher_HandleEvent_ConfigUnchanged(t *testing.T) {
	vault, _ := setupVault(t)
	configPath := filepath.Join(t.TempDir(), "config.toml")
	w := NewWatcher(vault, &mockRefresher{}, WatcherOptions{ConfigPath: configPath})

	trigger := w.handleEvent(context.Background(), nil, fsnotify.Event{Name: configPath, Op: fsnotify.Write})

	assert.False(t, trigger)
}

func TestWatcher_RunStopsOnCancel(t *testing.T) {
	vault, _ := setupVault(t)
	w := NewWatcher(vault, &mockRefresher{}, WatcherOptions{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.NoError(t, w.Run(ctx))
}

func TestIsHidden(t *testing.T) {
	tests := []struct {
		rel  string
		want bool
	}{
		{"note.md", false},
		{"projects/quest.md", false},
		{".git/HEAD", true},
		{"projects/.note.md.swp", true},
		{".", true},
		{"../outside.md", true},
	}

	for _, tt := range tests {
		t.Run(tt.rel, func(t *testing.T) {
			assert.Equal(t, tt.want, isHidden(filepath.FromSlash(tt.rel)))
		})
	}
}
