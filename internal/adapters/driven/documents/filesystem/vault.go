// Package filesystem serves documents from a local notes vault and watches
// it for edits.
package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/quest-cli/internal/core/domain"
	"github.com/custodia-labs/quest-cli/internal/core/ports/driven"
)

// ActiveDocumentKey is the config key holding the vault-relative path of the
// active document.
const ActiveDocumentKey = "document.active"

// Ensure Vault implements the interfaces.
var (
	_ driven.DocumentSource       = (*Vault)(nil)
	_ driven.ActiveDocumentSetter = (*Vault)(nil)
)

// Vault is a directory of notes. Document ids are slash-separated paths
// relative to the vault root; ids that escape the root are rejected.
type Vault struct {
	root   string
	config driven.ConfigStore
}

// NewVault opens the vault rooted at root. The active document is kept in
// config so it survives between invocations.
func NewVault(root string, config driven.ConfigStore) (*Vault, error) {
	if root == "" {
		return nil, fmt.Errorf("vault path not set: %w", domain.ErrInvalidInput)
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving vault path: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("opening vault: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("vault %s is not a directory: %w", abs, domain.ErrInvalidInput)
	}
	return &Vault{root: abs, config: config}, nil
}

// Root returns the absolute vault directory.
func (v *Vault) Root() string {
	return v.root
}

// ActiveDocument returns the active document, or nil when none is set.
func (v *Vault) ActiveDocument(_ context.Context) (*domain.DocumentRef, error) {
	id := v.config.GetString(ActiveDocumentKey)
	if id == "" {
		return nil, nil
	}
	return &domain.DocumentRef{ID: id, Path: id}, nil
}

// ReadDocument returns the text of the document with the given id.
func (v *Vault) ReadDocument(_ context.Context, id string) (string, error) {
	path, _, err := v.resolve(id)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("reading document %s: %w", id, err)
	}
	return string(data), nil
}

// SetActiveDocument makes the document current. The file must exist.
func (v *Vault) SetActiveDocument(_ context.Context, id string) error {
	path, clean, err := v.resolve(id)
	if err != nil {
		return err
	}
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("checking document %s: %w", id, err)
	}
	if info.IsDir() {
		return fmt.Errorf("document %s is a directory: %w", id, domain.ErrInvalidInput)
	}
	return v.config.Set(ActiveDocumentKey, clean)
}

// ClearActiveDocument forgets the active document.
func (v *Vault) ClearActiveDocument() error {
	return v.config.Delete(ActiveDocumentKey)
}

// DocumentID converts a path to a document id. Absolute paths must lie
// inside the vault; relative paths are taken as vault-relative.
func (v *Vault) DocumentID(path string) (string, error) {
	if filepath.IsAbs(path) {
		rel, err := filepath.Rel(v.root, path)
		if err != nil {
			return "", fmt.Errorf("%s is outside the vault: %w", path, domain.ErrInvalidInput)
		}
		path = rel
	}
	_, id, err := v.resolve(path)
	return id, err
}

// resolve returns the absolute path and normalised id for id.
func (v *Vault) resolve(id string) (string, string, error) {
	if strings.TrimSpace(id) == "" {
		return "", "", fmt.Errorf("empty document id: %w", domain.ErrInvalidInput)
	}
	clean := filepath.Clean(filepath.FromSlash(id))
	if filepath.IsAbs(clean) || clean == "." || clean == ".." ||
		strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", "", fmt.Errorf("%s is outside the vault: %w", id, domain.ErrInvalidInput)
	}
	return filepath.Join(v.root, clean), filepath.ToSlash(clean), nil
}
