package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/custodia-labs/quest-cli/internal/core/domain"
	"github.com/custodia-labs/quest-cli/internal/core/ports/driven"
)

// questStore implements driven.QuestStore.
type questStore struct {
	store *Store
}

var _ driven.QuestStore = (*questStore)(nil)

const questColumns = `id, question, document_id, document_path, created_at,
	is_completed, completed_at, is_dismissed, dismissed_at,
	is_obsolete, obsolete_reason, last_validated,
	context_hash, context_snapshot, parent_id, is_parent_question`

// GetQuests returns every stored quest in the order it was saved.
func (s *questStore) GetQuests(ctx context.Context) ([]domain.Quest, error) {
	rows, err := s.store.db.QueryContext(ctx, "SELECT "+questColumns+" FROM quests ORDER BY position")
	if err != nil {
		return nil, fmt.Errorf("querying quests: %w", err)
	}
	defer rows.Close()

	quests := []domain.Quest{}
	for rows.Next() {
		q, err := scanQuest(rows)
		if err != nil {
			return nil, err
		}
		quests = append(quests, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating quests: %w", err)
	}
	return quests, nil
}

// SaveQuests replaces the stored collection inside a single transaction.
func (s *questStore) SaveQuests(ctx context.Context, quests []domain.Quest) error {
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, "DELETE FROM quests"); err != nil {
		return fmt.Errorf("clearing quests: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO quests (position, `+questColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for i := range quests {
		q := &quests[i]
		if _, err := stmt.ExecContext(ctx, i,
			q.ID, q.Question, q.DocumentID, q.DocumentPath, formatTime(q.CreatedAt),
			boolToInt(q.IsCompleted), formatNullableTime(q.CompletedAt),
			boolToInt(q.IsDismissed), formatNullableTime(q.DismissedAt),
			boolToInt(q.IsObsolete), nullString(q.ObsoleteReason), formatNullableTime(q.LastValidated),
			nullString(q.ContextHash), nullString(q.ContextSnapshot),
			nullString(q.ParentID), boolToInt(q.IsParentQuestion),
		); err != nil {
			return fmt.Errorf("saving quest %s: %w", q.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// scanQuest scans one quest row.
func scanQuest(row scanner) (domain.Quest, error) {
	var q domain.Quest
	var createdAt string
	var completed, dismissed, obsolete, parent int
	var completedAt, dismissedAt, lastValidated sql.NullString
	var obsoleteReason, contextHash, contextSnapshot, parentID sql.NullString

	if err := row.Scan(&q.ID, &q.Question, &q.DocumentID, &q.DocumentPath, &createdAt,
		&completed, &completedAt, &dismissed, &dismissedAt,
		&obsolete, &obsoleteReason, &lastValidated,
		&contextHash, &contextSnapshot, &parentID, &parent); err != nil {
		return domain.Quest{}, fmt.Errorf("scanning quest: %w", err)
	}

	q.CreatedAt = parseTime(createdAt)
	q.IsCompleted = completed == 1
	q.CompletedAt = parseNullableTime(completedAt)
	q.IsDismissed = dismissed == 1
	q.DismissedAt = parseNullableTime(dismissedAt)
	q.IsObsolete = obsolete == 1
	q.ObsoleteReason = obsoleteReason.String
	q.LastValidated = parseNullableTime(lastValidated)
	q.ContextHash = contextHash.String
	q.ContextSnapshot = contextSnapshot.String
	q.ParentID = parentID.String
	q.IsParentQuestion = parent == 1

	return q, nil
}
