package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/quest-cli/internal/core/domain"
	"github.com/custodia-labs/quest-cli/internal/core/ports/driven"
)

// Ensure DocumentSource implements the interfaces.
var (
	_ driven.DocumentSource       = (*DocumentSource)(nil)
	_ driven.ActiveDocumentSetter = (*DocumentSource)(nil)
)

// DocumentSource is an in-memory implementation of driven.DocumentSource.
type DocumentSource struct {
	mu        sync.RWMutex
	documents map[string]string
	active    string
}

// NewDocumentSource creates an empty document source with no active document.
func NewDocumentSource() *DocumentSource {
	return &DocumentSource{documents: make(map[string]string)}
}

// Put stores or replaces a document's text.
func (s *DocumentSource) Put(id, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.documents[id] = text
}

// ActiveDocument returns the active document, or nil when none is set.
func (s *DocumentSource) ActiveDocument(_ context.Context) (*domain.DocumentRef, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.active == "" {
		return nil, nil
	}
	return &domain.DocumentRef{ID: s.active, Path: s.active}, nil
}

// ReadDocument returns a document's text.
func (s *DocumentSource) ReadDocument(_ context.Context, id string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	text, ok := s.documents[id]
	if !ok {
		return "", domain.ErrNotFound
	}
	return text, nil
}

// SetActiveDocument makes id current. The document must exist.
func (s *DocumentSource) SetActiveDocument(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.documents[id]; !ok {
		return domain.ErrNotFound
	}
	s.active = id
	return nil
}
