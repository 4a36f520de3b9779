package domain

import "time"

// ValidateOptions controls a validation pass.
type ValidateOptions struct {
	// Now is stamped into LastValidated on quests marked obsolete.
	Now time.Time

	// DocumentID restricts validation to one document when non-empty.
	// Empty validates the whole collection against the given text.
	DocumentID string

	// HealObsolete clears the obsolete flag when the hash matches again.
	HealObsolete bool
}

// ValidateQuests compares each quest's context hash with the fingerprint of
// currentText and flags drifted quests as obsolete. The input is not
// modified. Quests without a complete context capture are left unchanged.
func ValidateQuests(quests []Quest, currentText string, opts ValidateOptions) []Quest {
	currentHash := Fingerprint(currentText)

	result := make([]Quest, len(quests))
	for i := range quests {
		q := quests[i]
		result[i] = q

		if opts.DocumentID != "" && q.DocumentID != opts.DocumentID {
			continue
		}
		if !q.HasContext() {
			continue
		}

		if q.ContextHash != currentHash {
			q.MarkObsolete(ObsoleteReasonContentChanged, opts.Now)
			result[i] = q
			continue
		}

		if opts.HealObsolete && q.IsObsolete {
			q.IsObsolete = false
			q.ObsoleteReason = ""
			q.LastValidated = opts.Now
			result[i] = q
		}
	}
	return result
}
