package services

import (
	"context"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/custodia-labs/quest-cli/internal/core/domain"
	"github.com/custodia-labs/quest-cli/internal/core/ports/driven"
	"github.com/custodia-labs/quest-cli/internal/core/ports/driving"
)

// --- Mock implementations for scheduler testing ---

// mockSchedulerStore implements driven.SchedulerStore for testing.
type mockSchedulerStore struct {
	mu       sync.RWMutex
	tasks    map[string]*domain.ScheduledTask
	results  map[string][]domain.TaskResult
	saveErr  error
	listErr  error
	getErr   error
	pruneErr error
}

func newMockSchedulerStore() *mockSchedulerStore {
	return &mockSchedulerStore{
		tasks:   make(map[string]*domain.ScheduledTask),
		results: make(map[string][]domain.TaskResult),
	}
}

func (m *mockSchedulerStore) GetTask(_ context.Context, taskID string) (*domain.ScheduledTask, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	task, exists := m.tasks[taskID]
	if !exists {
		return nil, nil
	}
	// Return a copy
	taskCopy := *task
	return &taskCopy, nil
}

func (m *mockSchedulerStore) ListTasks(_ context.Context) ([]domain.ScheduledTask, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	tasks := make([]domain.ScheduledTask, 0, len(m.tasks))
	for _, t := range m.tasks {
		tasks = append(tasks, *t)
	}
	return tasks, nil
}

func (m *mockSchedulerStore) SaveTask(_ context.Context, task *domain.ScheduledTask) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	if task == nil {
		return domain.ErrInvalidInput
	}
	taskCopy := *task
	m.tasks[task.ID] = &taskCopy
	return nil
}

func (m *mockSchedulerStore) DeleteTask(_ context.Context, taskID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tasks, taskID)
	return nil
}

func (m *mockSchedulerStore) RecordResult(_ context.Context, result *domain.TaskResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if result == nil {
		return domain.ErrInvalidInput
	}
	m.results[result.TaskID] = append(m.results[result.TaskID], *result)
	return nil
}

func (m *mockSchedulerStore) GetTaskHistory(_ context.Context, taskID string, limit int) ([]domain.TaskResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	results := m.results[taskID]
	if len(results) > limit {
		results = results[len(results)-limit:]
	}
	return results, nil
}

func (m *mockSchedulerStore) PruneHistory(_ context.Context, _ int) error {
	return m.pruneErr
}

// --- Mock implementations for quest testing ---

// mockQuestionService implements driven.QuestionService with scripted replies.
type mockQuestionService struct {
	mu sync.Mutex

	// generate returns the questions for a requested count.
	// Defaults to count questions named "Generated question N?".
	generate    func(count int) []string
	generateErr error

	// answered lists question ids the evaluator reports as answered.
	answered    []string
	extraEvals  []domain.QuestionEvaluation
	evaluateErr error

	generateCalls []int
	evaluateCalls [][]domain.QuestionRef

	// gate, when set, blocks GenerateQuestions until closed.
	gate chan struct{}
}

func (m *mockQuestionService) GenerateQuestions(ctx context.Context, _ string, count int) ([]string, error) {
	if m.gate != nil {
		<-m.gate
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.generateCalls = append(m.generateCalls, count)
	if m.generateErr != nil {
		return nil, m.generateErr
	}
	if m.generate != nil {
		return m.generate(count), nil
	}
	out := make([]string, count)
	for i := range out {
		out[i] = "Generated question " + string(rune('A'+i)) + "?"
	}
	return out, nil
}

func (m *mockQuestionService) EvaluateQuestions(
	_ context.Context,
	_ string,
	questions []domain.QuestionRef,
) (*domain.EvaluationResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.evaluateCalls = append(m.evaluateCalls, slices.Clone(questions))
	if m.evaluateErr != nil {
		return nil, m.evaluateErr
	}
	result := &domain.EvaluationResult{}
	for _, q := range questions {
		result.Evaluations = append(result.Evaluations, domain.QuestionEvaluation{
			QuestionID: q.ID,
			IsAnswered: slices.Contains(m.answered, q.ID),
		})
	}
	result.Evaluations = append(result.Evaluations, m.extraEvals...)
	return result, nil
}

func (m *mockQuestionService) generateCallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.generateCalls)
}

// mockCapabilities adds breakdown and ranking to mockQuestionService.
type mockCapabilities struct {
	mockQuestionService

	subQuestions []string
	breakdownErr error
	breakdownIn  string

	ranked  string
	rankErr error
}

func (m *mockCapabilities) BreakdownQuestion(_ context.Context, documentText, _ string) ([]string, error) {
	m.breakdownIn = documentText
	return m.subQuestions, m.breakdownErr
}

func (m *mockCapabilities) RankContext(_ context.Context, _, _ string, _ int) (string, error) {
	return m.ranked, m.rankErr
}

// mockRanker implements driven.ContextRanker.
type mockRanker struct {
	excerpt string
	err     error
	calls   int
}

func (m *mockRanker) RankContext(_ context.Context, _, _ string, _ int) (string, error) {
	m.calls++
	return m.excerpt, m.err
}

// mockQuestStore implements driven.QuestStore and records every write.
type mockQuestStore struct {
	mu      sync.Mutex
	quests  []domain.Quest
	getErr  error
	saveErr error
	saves   [][]domain.Quest
}

func newMockQuestStore(quests ...domain.Quest) *mockQuestStore {
	return &mockQuestStore{quests: quests}
}

func (m *mockQuestStore) GetQuests(_ context.Context) ([]domain.Quest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	return slices.Clone(m.quests), nil
}

func (m *mockQuestStore) SaveQuests(_ context.Context, quests []domain.Quest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.quests = slices.Clone(quests)
	m.saves = append(m.saves, slices.Clone(quests))
	return nil
}

func (m *mockQuestStore) writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.saves)
}

func (m *mockQuestStore) stored() []domain.Quest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.quests)
}

// mockDocumentSource implements driven.DocumentSource.
type mockDocumentSource struct {
	active    *domain.DocumentRef
	texts     map[string]string
	activeErr error
	readErr   error
	setCalls  []string
}

func newMockDocumentSource(id, text string) *mockDocumentSource {
	return &mockDocumentSource{
		active: &domain.DocumentRef{ID: id, Path: id},
		texts:  map[string]string{id: text},
	}
}

func (m *mockDocumentSource) ActiveDocument(_ context.Context) (*domain.DocumentRef, error) {
	return m.active, m.activeErr
}

func (m *mockDocumentSource) ReadDocument(_ context.Context, id string) (string, error) {
	if m.readErr != nil {
		return "", m.readErr
	}
	text, ok := m.texts[id]
	if !ok {
		return "", domain.ErrNotFound
	}
	return text, nil
}

func (m *mockDocumentSource) SetActiveDocument(_ context.Context, id string) error {
	m.setCalls = append(m.setCalls, id)
	m.active = &domain.DocumentRef{ID: id, Path: id}
	return nil
}

// mockQuestService implements driving.QuestService for scheduler tests.
type mockQuestService struct {
	report       domain.RefreshReport
	refreshCalls atomic.Int32
}

func (m *mockQuestService) Refresh(_ context.Context) domain.RefreshReport {
	m.refreshCalls.Add(1)
	return m.report
}

func (m *mockQuestService) List(_ context.Context, _ driving.ListFilter) ([]domain.Quest, error) {
	return nil, nil
}

func (m *mockQuestService) Dismiss(_ context.Context, _ string) error { return nil }

func (m *mockQuestService) Breakdown(_ context.Context, _ string) ([]domain.Quest, error) {
	return nil, nil
}

func (m *mockQuestService) Clear(_ context.Context) error { return nil }

func (m *mockQuestService) SetActiveDocument(_ context.Context, _ string) error { return nil }

// Ensure mocks implement interfaces
var (
	_ driven.SchedulerStore       = (*mockSchedulerStore)(nil)
	_ driven.QuestionService      = (*mockQuestionService)(nil)
	_ driven.QuestionBreakdown    = (*mockCapabilities)(nil)
	_ driven.ContextRanker        = (*mockCapabilities)(nil)
	_ driven.ContextRanker        = (*mockRanker)(nil)
	_ driven.QuestStore           = (*mockQuestStore)(nil)
	_ driven.DocumentSource       = (*mockDocumentSource)(nil)
	_ driven.ActiveDocumentSetter = (*mockDocumentSource)(nil)
	_ driving.QuestService        = (*mockQuestService)(nil)
)
