package driven

import (
	"context"

	"github.com/custodia-labs/quest-cli/internal/core/domain"
)

// QuestStore persists the full quest collection.
// Reads and writes always cover the whole collection: there is no
// filtering, no partial update and no concurrency control.
type QuestStore interface {
	// GetQuests returns every stored quest across all documents.
	// Returns an empty slice when nothing has been stored yet.
	GetQuests(ctx context.Context) ([]domain.Quest, error)

	// SaveQuests replaces the stored collection with quests.
	SaveQuests(ctx context.Context, quests []domain.Quest) error
}
