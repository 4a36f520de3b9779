package domain

import (
	"fmt"
	"time"
)

// DefaultTargetActiveCount is the number of active quests kept per document.
const DefaultTargetActiveCount = 5

// ObsoleteReasonContentChanged is recorded when a quest's captured context
// no longer matches the document it belongs to.
const ObsoleteReasonContentChanged = "Document content has changed significantly"

// Quest is a research question tied to a single document.
// Timestamps use the zero time to mean "absent".
type Quest struct {
	// ID is the unique identifier, assigned on creation and never changed.
	ID string `json:"id"`

	// Question is the research question text.
	Question string `json:"question"`

	// DocumentID identifies the owning document (its vault-relative path).
	DocumentID string `json:"document_id"`

	// DocumentPath is the document path kept for display.
	DocumentPath string `json:"document_path"`

	// CreatedAt is when the quest was generated.
	CreatedAt time.Time `json:"created_at"`

	// IsCompleted is set once the document answers the question.
	IsCompleted bool `json:"is_completed"`

	// CompletedAt is set iff IsCompleted is true.
	CompletedAt time.Time `json:"completed_at"`

	// IsDismissed is set when the user removes the quest from consideration.
	IsDismissed bool `json:"is_dismissed"`

	// DismissedAt is set iff IsDismissed is true.
	DismissedAt time.Time `json:"dismissed_at"`

	// IsObsolete marks a quest whose context snapshot has drifted.
	IsObsolete bool `json:"is_obsolete"`

	// ObsoleteReason explains why the quest was marked obsolete.
	ObsoleteReason string `json:"obsolete_reason,omitempty"`

	// LastValidated is when the quest was last checked against content.
	LastValidated time.Time `json:"last_validated"`

	// ContextHash is the fingerprint of the document when context was captured.
	ContextHash string `json:"context_hash,omitempty"`

	// ContextSnapshot is the excerpt of the document captured with the quest.
	ContextSnapshot string `json:"context_snapshot,omitempty"`

	// ParentID links a sub-question to the quest it was broken down from.
	ParentID string `json:"parent_id,omitempty"`

	// IsParentQuestion is set on quests that have been broken down.
	IsParentQuestion bool `json:"is_parent_question"`
}

// NewQuestParams holds the inputs for creating a quest.
type NewQuestParams struct {
	ID           string
	Question     string
	DocumentID   string
	DocumentPath string
	DocumentText string
	Snapshot     string
	ParentID     string
	Now          time.Time
}

// NewQuest builds an active quest stamped with a fingerprint of the
// document text it was generated from. Without a snapshot no context is
// captured at all.
func NewQuest(p NewQuestParams) Quest {
	path := p.DocumentPath
	if path == "" {
		path = p.DocumentID
	}
	q := Quest{
		ID:            p.ID,
		Question:      p.Question,
		DocumentID:    p.DocumentID,
		DocumentPath:  path,
		CreatedAt:     p.Now,
		LastValidated: p.Now,
		ParentID:      p.ParentID,
	}
	if p.Snapshot != "" {
		q.ContextHash = Fingerprint(p.DocumentText)
		q.ContextSnapshot = p.Snapshot
	}
	return q
}

// IsActive reports whether the quest still counts toward the target.
func (q Quest) IsActive() bool {
	return !q.IsCompleted && !q.IsDismissed
}

// HasContext reports whether both halves of the context capture are present.
// A quest with only a hash or only a snapshot is treated as having none.
func (q Quest) HasContext() bool {
	return q.ContextHash != "" && q.ContextSnapshot != ""
}

// MarkCompleted flags the quest as answered. An existing CompletedAt is kept.
func (q *Quest) MarkCompleted(now time.Time) {
	if q.IsCompleted {
		return
	}
	q.IsCompleted = true
	q.CompletedAt = now
}

// MarkDismissed flags the quest as dismissed. An existing DismissedAt is kept.
func (q *Quest) MarkDismissed(now time.Time) {
	if q.IsDismissed {
		return
	}
	q.IsDismissed = true
	q.DismissedAt = now
}

// MarkObsolete flags the quest as obsolete with the given reason.
func (q *Quest) MarkObsolete(reason string, now time.Time) {
	q.IsObsolete = true
	q.ObsoleteReason = reason
	q.LastValidated = now
}

// Validate checks the record invariants.
func (q Quest) Validate() error {
	switch {
	case q.ID == "":
		return fmt.Errorf("%w: missing id", ErrInvalidQuest)
	case q.Question == "":
		return fmt.Errorf("%w: quest %s has no question", ErrInvalidQuest, q.ID)
	case q.DocumentID == "":
		return fmt.Errorf("%w: quest %s has no document", ErrInvalidQuest, q.ID)
	case q.IsCompleted != !q.CompletedAt.IsZero():
		return fmt.Errorf("%w: quest %s completion flag and timestamp disagree", ErrInvalidQuest, q.ID)
	case q.IsDismissed != !q.DismissedAt.IsZero():
		return fmt.Errorf("%w: quest %s dismissal flag and timestamp disagree", ErrInvalidQuest, q.ID)
	case (q.ContextHash == "") != (q.ContextSnapshot == ""):
		return fmt.Errorf("%w: quest %s has partial context", ErrInvalidQuest, q.ID)
	}
	return nil
}

// ValidateCollection checks every quest and that ids are unique.
func ValidateCollection(quests []Quest) error {
	seen := make(map[string]struct{}, len(quests))
	for i := range quests {
		if err := quests[i].Validate(); err != nil {
			return err
		}
		if _, dup := seen[quests[i].ID]; dup {
			return fmt.Errorf("%w: duplicate id %s", ErrInvalidQuest, quests[i].ID)
		}
		seen[quests[i].ID] = struct{}{}
	}
	return nil
}

// QuestsForDocument returns the quests owned by documentID, in stored order.
func QuestsForDocument(quests []Quest, documentID string) []Quest {
	var result []Quest
	for i := range quests {
		if quests[i].DocumentID == documentID {
			result = append(result, quests[i])
		}
	}
	return result
}

// CountActive returns how many quests of documentID are active.
func CountActive(quests []Quest, documentID string) int {
	n := 0
	for i := range quests {
		if quests[i].DocumentID == documentID && quests[i].IsActive() {
			n++
		}
	}
	return n
}

// QuestionRef is the minimal view of a quest sent for evaluation.
type QuestionRef struct {
	ID       string `json:"id"`
	Question string `json:"question"`
}

// QuestionEvaluation is one verdict from the evaluation capability.
type QuestionEvaluation struct {
	QuestionID  string `json:"questionId"`
	IsAnswered  bool   `json:"isAnswered"`
	Explanation string `json:"explanation"`
}

// EvaluationResult is the evaluation capability's response.
type EvaluationResult struct {
	Evaluations []QuestionEvaluation `json:"evaluations"`
}
