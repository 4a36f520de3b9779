package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/quest-cli/internal/core/domain"
	"github.com/custodia-labs/quest-cli/internal/core/ports/driven"
	"github.com/custodia-labs/quest-cli/internal/core/ports/driving"
	"github.com/custodia-labs/quest-cli/internal/logger"
)

// Ensure QuestService implements the interface.
var _ driving.QuestService = (*QuestService)(nil)

// QuestService manages quests on behalf of the CLI, MCP and scheduler.
type QuestService struct {
	reconciler *Reconciler
}

// NewQuestService creates a quest service backed by a reconciler.
func NewQuestService(reconciler *Reconciler) *QuestService {
	return &QuestService{reconciler: reconciler}
}

// Refresh runs one reconciliation cycle for the active document.
func (s *QuestService) Refresh(ctx context.Context) domain.RefreshReport {
	return s.reconciler.Refresh(ctx)
}

// List returns quests matching the filter, in stored order.
func (s *QuestService) List(ctx context.Context, filter driving.ListFilter) ([]domain.Quest, error) {
	quests, err := s.reconciler.store.GetQuests(ctx)
	if err != nil {
		return nil, fmt.Errorf("load quests: %w", err)
	}

	result := make([]domain.Quest, 0, len(quests))
	for i := range quests {
		if filter.Matches(&quests[i]) {
			result = append(result, quests[i])
		}
	}
	return result, nil
}

// Dismiss removes a quest from consideration.
func (s *QuestService) Dismiss(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("%w: quest id is required", domain.ErrInvalidInput)
	}

	return s.reconciler.mutate(ctx, func(quests []domain.Quest) ([]domain.Quest, bool, error) {
		i := indexOf(quests, id)
		if i < 0 {
			return nil, false, fmt.Errorf("quest %s: %w", id, domain.ErrNotFound)
		}
		if quests[i].IsDismissed {
			return quests, false, nil
		}
		quests[i].MarkDismissed(s.reconciler.now())
		logger.Info("dismissed quest %s", id)
		return quests, true, nil
	})
}

// Breakdown splits a quest into sub-questions. The children share the
// parent's document and context so they are validated together.
func (s *QuestService) Breakdown(ctx context.Context, id string) ([]domain.Quest, error) {
	breakdown, ok := s.reconciler.questions.(driven.QuestionBreakdown)
	if !ok {
		return nil, domain.ErrBreakdownUnsupported
	}

	quests, err := s.reconciler.store.GetQuests(ctx)
	if err != nil {
		return nil, fmt.Errorf("load quests: %w", err)
	}
	i := indexOf(quests, id)
	if i < 0 {
		return nil, fmt.Errorf("quest %s: %w", id, domain.ErrNotFound)
	}
	parent := quests[i]

	text := parent.ContextSnapshot
	if text == "" {
		text, err = s.reconciler.docs.ReadDocument(ctx, parent.DocumentID)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", parent.DocumentID, err)
		}
	}

	subQuestions, err := breakdown.BreakdownQuestion(ctx, text, parent.Question)
	if err != nil {
		return nil, fmt.Errorf("breakdown question: %w", err)
	}

	now := s.reconciler.now()
	var children []domain.Quest
	for _, question := range subQuestions {
		question = strings.TrimSpace(question)
		if question == "" {
			continue
		}
		snapshot := parent.ContextSnapshot
		if !parent.HasContext() {
			snapshot = s.reconciler.extractor.Extract(ctx, text, question, s.reconciler.settings.ContextSize)
		}
		child := domain.NewQuest(domain.NewQuestParams{
			ID:           s.reconciler.newID(),
			Question:     question,
			DocumentID:   parent.DocumentID,
			DocumentPath: parent.DocumentPath,
			DocumentText: text,
			Snapshot:     snapshot,
			ParentID:     parent.ID,
			Now:          now,
		})
		if parent.HasContext() {
			child.ContextHash = parent.ContextHash
		}
		children = append(children, child)
	}
	if len(children) == 0 {
		return nil, fmt.Errorf("%w: no sub-questions returned", domain.ErrMalformedResponse)
	}

	err = s.reconciler.mutate(ctx, func(quests []domain.Quest) ([]domain.Quest, bool, error) {
		i := indexOf(quests, id)
		if i < 0 {
			return nil, false, fmt.Errorf("quest %s: %w", id, domain.ErrNotFound)
		}
		quests[i].IsParentQuestion = true
		return append(quests, children...), true, nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("broke quest %s into %d sub-questions", id, len(children))
	return children, nil
}

// Clear removes every stored quest.
func (s *QuestService) Clear(ctx context.Context) error {
	return s.reconciler.mutate(ctx, func([]domain.Quest) ([]domain.Quest, bool, error) {
		return []domain.Quest{}, true, nil
	})
}

// SetActiveDocument makes the document with the given id current.
func (s *QuestService) SetActiveDocument(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("%w: document id is required", domain.ErrInvalidInput)
	}
	setter, ok := s.reconciler.docs.(driven.ActiveDocumentSetter)
	if !ok {
		return fmt.Errorf("set active document: %w", domain.ErrNotImplemented)
	}
	return setter.SetActiveDocument(ctx, id)
}

func indexOf(quests []domain.Quest, id string) int {
	for i := range quests {
		if quests[i].ID == id {
			return i
		}
	}
	return -1
}
