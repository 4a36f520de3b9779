package driving

import (
	"context"

	"github.com/custodia-labs/quest-cli/internal/core/domain"
)

// QuestService manages research quests for external actors.
// This is used by CLI, MCP and the scheduler.
type QuestService interface {
	// Refresh runs one reconciliation cycle for the active document.
	// It never returns an error: failures are logged and reported in the
	// returned RefreshReport.
	Refresh(ctx context.Context) domain.RefreshReport

	// List returns quests matching the filter, in stored order.
	List(ctx context.Context, filter ListFilter) ([]domain.Quest, error)

	// Dismiss removes a quest from consideration.
	// Returns domain.ErrNotFound if no quest has the given id.
	// Dismissing an already dismissed quest is a no-op.
	Dismiss(ctx context.Context, id string) error

	// Breakdown splits a quest into sub-questions linked by ParentID.
	// Returns domain.ErrBreakdownUnsupported if no breakdown capability
	// is configured.
	Breakdown(ctx context.Context, id string) ([]domain.Quest, error)

	// Clear removes every stored quest.
	Clear(ctx context.Context) error

	// SetActiveDocument makes the document with the given id current.
	SetActiveDocument(ctx context.Context, id string) error
}

// ListFilter narrows the quests returned by List.
type ListFilter struct {
	// DocumentID restricts results to one document when non-empty.
	DocumentID string

	// ActiveOnly drops completed and dismissed quests.
	ActiveOnly bool

	// IncludeDismissed keeps dismissed quests when ActiveOnly is false.
	IncludeDismissed bool
}

// Matches reports whether q passes the filter.
func (f ListFilter) Matches(q *domain.Quest) bool {
	if f.DocumentID != "" && q.DocumentID != f.DocumentID {
		return false
	}
	if f.ActiveOnly {
		return q.IsActive()
	}
	if q.IsDismissed && !f.IncludeDismissed {
		return false
	}
	return true
}
