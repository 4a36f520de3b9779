package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/custodia-labs/quest-cli/internal/core/domain"
	"github.com/custodia-labs/quest-cli/internal/core/ports/driven"
)

// Ensure QuestStore implements the interface.
var _ driven.QuestStore = (*QuestStore)(nil)

// QuestStore is an in-memory implementation of driven.QuestStore.
// Callers never share backing arrays with the store.
type QuestStore struct {
	mu     sync.RWMutex
	quests []domain.Quest
	writes int
}

// NewQuestStore creates a store holding the given quests.
func NewQuestStore(quests ...domain.Quest) *QuestStore {
	return &QuestStore{quests: slices.Clone(quests)}
}

// GetQuests returns a copy of the stored collection.
func (s *QuestStore) GetQuests(_ context.Context) ([]domain.Quest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.quests == nil {
		return []domain.Quest{}, nil
	}
	return slices.Clone(s.quests), nil
}

// SaveQuests replaces the stored collection.
func (s *QuestStore) SaveQuests(_ context.Context, quests []domain.Quest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quests = slices.Clone(quests)
	s.writes++
	return nil
}

// Writes returns the number of SaveQuests calls.
func (s *QuestStore) Writes() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.writes
}
