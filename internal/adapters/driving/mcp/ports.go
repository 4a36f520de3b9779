package mcp

import (
	"github.com/custodia-labs/quest-cli/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Quests manages quests.
	Quests driving.QuestService

	// Documents resolves paths to document ids. Optional; without it
	// paths passed to tools are used as ids unchanged.
	Documents DocumentResolver
}

// DocumentResolver converts a user-supplied path to a document id.
type DocumentResolver interface {
	DocumentID(path string) (string, error)
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Quests == nil {
		return ErrMissingQuestService
	}
	return nil
}

// documentID resolves path through the resolver when one is set.
func (p *Ports) documentID(path string) (string, error) {
	if p.Documents == nil {
		return path, nil
	}
	return p.Documents.DocumentID(path)
}
