package mcp

import (
	"context"

	"github.com/custodia-labs/quest-cli/internal/core/domain"
	"github.com/custodia-labs/quest-cli/internal/core/ports/driving"
)

// mockQuestService is a mock implementation of driving.QuestService.
type mockQuestService struct {
	quests     []domain.Quest
	children   []domain.Quest
	report     domain.RefreshReport
	err        error
	activeErr  error
	lastFilter driving.ListFilter
	active     string
	dismissed  string
	refreshes  int
}

func (m *mockQuestService) Refresh(_ context.Context) domain.RefreshReport {
	m.refreshes++
	return m.report
}

func (m *mockQuestService) List(_ context.Context, filter driving.ListFilter) ([]domain.Quest, error) {
	m.lastFilter = filter
	return m.quests, m.err
}

func (m *mockQuestService) Dismiss(_ context.Context, id string) error {
	m.dismissed = id
	return m.err
}

func (m *mockQuestService) Breakdown(_ context.Context, _ string) ([]domain.Quest, error) {
	return m.children, m.err
}

func (m *mockQuestService) Clear(_ context.Context) error {
	return m.err
}

func (m *mockQuestService) SetActiveDocument(_ context.Context, id string) error {
	m.active = id
	return m.activeErr
}

// mockResolver maps paths to ids by trimming a prefix.
type mockResolver struct {
	err error
}

func (m *mockResolver) DocumentID(path string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	return "resolved/" + path, nil
}
