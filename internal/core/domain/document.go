package domain

// DocumentRef identifies a document in the vault.
type DocumentRef struct {
	// ID is the vault-relative path; quests are keyed by it.
	ID string

	// Path is the path shown to the user.
	Path string
}
