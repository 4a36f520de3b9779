package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/custodia-labs/quest-cli/internal/core/domain"
	"github.com/custodia-labs/quest-cli/internal/core/ports/driving"
)

// mockQuestService implements driving.QuestService for testing.
type mockQuestService struct {
	quests   []domain.Quest
	children []domain.Quest
	report   domain.RefreshReport

	listErr      error
	dismissErr   error
	breakdownErr error
	clearErr     error
	activeErr    error

	lastFilter driving.ListFilter
	active     string
	dismissed  string
	brokenDown string
	cleared    bool
	refreshes  int
}

func (m *mockQuestService) Refresh(_ context.Context) domain.RefreshReport {
	m.refreshes++
	return m.report
}

func (m *mockQuestService) List(_ context.Context, filter driving.ListFilter) ([]domain.Quest, error) {
	m.lastFilter = filter
	return m.quests, m.listErr
}

func (m *mockQuestService) Dismiss(_ context.Context, id string) error {
	m.dismissed = id
	return m.dismissErr
}

func (m *mockQuestService) Breakdown(_ context.Context, id string) ([]domain.Quest, error) {
	m.brokenDown = id
	return m.children, m.breakdownErr
}

func (m *mockQuestService) Clear(_ context.Context) error {
	m.cleared = true
	return m.clearErr
}

func (m *mockQuestService) SetActiveDocument(_ context.Context, id string) error {
	m.active = id
	return m.activeErr
}

// mockSettingsService implements driving.SettingsService for testing.
type mockSettingsService struct {
	settings    domain.AppSettings
	getErr      error
	validateErr error
	llmErr      error
	pingErr     error
	questsErr   error

	llmProvider domain.AIProvider
	llmModel    string
	llmKey      string
	quests      *domain.QuestSettings
	vaultPath   string
}

func newMockSettingsService() *mockSettingsService {
	return &mockSettingsService{settings: domain.DefaultAppSettings()}
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	s := m.settings
	return &s, nil
}

func (m *mockSettingsService) Save(settings *domain.AppSettings) error {
	m.settings = *settings
	return nil
}

func (m *mockSettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	m.llmProvider, m.llmModel, m.llmKey = provider, model, apiKey
	return m.llmErr
}

func (m *mockSettingsService) SetQuestSettings(quests domain.QuestSettings) error {
	m.quests = &quests
	return m.questsErr
}

func (m *mockSettingsService) SetVaultPath(path string) error {
	m.vaultPath = path
	return nil
}

func (m *mockSettingsService) Validate() error {
	return m.validateErr
}

func (m *mockSettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

func (m *mockSettingsService) ValidateLLMConfig() error {
	return m.pingErr
}

// mockResolver prefixes paths to make resolution visible.
type mockResolver struct {
	err error
}

func (m *mockResolver) DocumentID(path string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	return strings.TrimPrefix(path, "/vault/"), nil
}

// setupServices swaps in test doubles and resets flag state, which cobra
// keeps between executions.
func setupServices(t *testing.T, quests driving.QuestService, settings driving.SettingsService) {
	t.Helper()

	oldQuests, oldSettings, oldScheduler := questService, settingsService, scheduler
	oldDocuments, oldWatcher := documents, newWatcher

	questService = quests
	settingsService = settings
	scheduler = nil
	documents = &mockResolver{}
	newWatcher = nil

	listAll, listDocument, listJSON, clearYes, watchFollow = false, "", false, false, false

	t.Cleanup(func() {
		questService, settingsService, scheduler = oldQuests, oldSettings, oldScheduler
		documents, newWatcher = oldDocuments, oldWatcher
		listAll, listDocument, listJSON, clearYes, watchFollow = false, "", false, false, false
	})
}

// execute runs the root command with args and returns stdout and stderr.
func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()

	out := new(bytes.Buffer)
	errOut := new(bytes.Buffer)
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
	})

	err := rootCmd.Execute()
	return out.String(), errOut.String(), err
}
