package driven

import (
	"context"

	"github.com/custodia-labs/quest-cli/internal/core/domain"
)

// DocumentSource identifies the current document and reads document text.
type DocumentSource interface {
	// ActiveDocument returns the document the user is working on.
	// Returns nil and no error when no document is active.
	ActiveDocument(ctx context.Context) (*domain.DocumentRef, error)

	// ReadDocument returns the full text of the document with the given id.
	// Returns domain.ErrNotFound if the document does not exist.
	ReadDocument(ctx context.Context, id string) (string, error)
}

// ActiveDocumentSetter is implemented by sources whose active document
// can be changed from the outside (e.g. by the CLI or a file watcher).
type ActiveDocumentSetter interface {
	// SetActiveDocument makes the document with the given id current.
	SetActiveDocument(ctx context.Context, id string) error
}
