package domain

// RefreshOutcome describes how a refresh cycle ended.
type RefreshOutcome string

// Refresh outcomes.
const (
	// OutcomeUpdated means the cycle ran to completion.
	OutcomeUpdated RefreshOutcome = "updated"

	// OutcomeNotConfigured means no question capability is wired up.
	OutcomeNotConfigured RefreshOutcome = "not_configured"

	// OutcomeNoDocument means there is no active document.
	OutcomeNoDocument RefreshOutcome = "no_document"

	// OutcomeFailed means a store or capability call failed mid-cycle.
	OutcomeFailed RefreshOutcome = "failed"
)

// String returns the string representation.
func (o RefreshOutcome) String() string {
	return string(o)
}

// RefreshReport summarises one reconciliation cycle.
type RefreshReport struct {
	// DocumentID is the document the cycle ran for, if any.
	DocumentID string

	// Outcome is how the cycle ended.
	Outcome RefreshOutcome

	// Completed lists ids of quests marked answered this cycle.
	Completed []string

	// Generated lists ids of quests created this cycle.
	Generated []string

	// Obsoleted is the number of quests newly flagged obsolete.
	Obsoleted int

	// Writes is the number of store writes performed.
	Writes int

	// Err is the failure cause when Outcome is OutcomeFailed.
	// It is informational; refresh never returns errors.
	Err error
}
