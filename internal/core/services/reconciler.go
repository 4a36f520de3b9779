package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/custodia-labs/quest-cli/internal/core/domain"
	"github.com/custodia-labs/quest-cli/internal/core/ports/driven"
	"github.com/custodia-labs/quest-cli/internal/logger"
)

// refreshLogPrefix prefixes every refresh failure written to the log.
const refreshLogPrefix = "quest refresh"

// Reconciler runs refresh cycles for the active document: it validates
// stored quests against the current text, asks the question service which
// active quests are now answered, and tops the document back up to its
// target number of active quests.
type Reconciler struct {
	questions driven.QuestionService
	store     driven.QuestStore
	docs      driven.DocumentSource
	extractor *ContextExtractor
	settings  domain.QuestSettings

	now   func() time.Time
	newID func() string

	inflight singleflight.Group

	// mu serialises load-modify-save sections. The store replaces the
	// whole collection on every write.
	mu sync.Mutex
}

// NewReconciler creates a reconciler.
// questions may be nil, in which case Refresh reports OutcomeNotConfigured.
// When questions also implements driven.ContextRanker and ranking is
// enabled in settings, snapshots are chosen by the ranker.
func NewReconciler(
	questions driven.QuestionService,
	store driven.QuestStore,
	docs driven.DocumentSource,
	settings domain.QuestSettings,
) *Reconciler {
	defaults := domain.DefaultAppSettings().Quests
	if settings.TargetCount <= 0 {
		settings.TargetCount = defaults.TargetCount
	}
	if settings.ContextSize <= 0 {
		settings.ContextSize = defaults.ContextSize
	}
	if !settings.ValidationScope.IsValid() {
		settings.ValidationScope = defaults.ValidationScope
	}

	var ranker driven.ContextRanker
	if r, ok := questions.(driven.ContextRanker); ok {
		ranker = r
	}

	return &Reconciler{
		questions: questions,
		store:     store,
		docs:      docs,
		extractor: NewContextExtractor(ranker, settings.ContextRanking),
		settings:  settings,
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

// Refresh runs one reconciliation cycle for the active document.
// Concurrent calls for the same document share a single cycle.
// Failures are logged and reported; Refresh never returns an error.
func (r *Reconciler) Refresh(ctx context.Context) domain.RefreshReport {
	if r.questions == nil {
		logger.Error("%s: %v", refreshLogPrefix, domain.ErrLLMUnavailable)
		return domain.RefreshReport{
			Outcome: domain.OutcomeNotConfigured,
			Err:     domain.ErrLLMUnavailable,
		}
	}

	doc, err := r.docs.ActiveDocument(ctx)
	if err != nil {
		return r.fail(domain.RefreshReport{}, fmt.Errorf("active document: %w", err))
	}
	if doc == nil {
		logger.Debug("no active document, nothing to refresh")
		return domain.RefreshReport{Outcome: domain.OutcomeNoDocument}
	}

	// The cycle may be shared with later callers, so it outlives the
	// cancellation of whichever caller started it.
	cycleCtx := context.WithoutCancel(ctx)
	v, _, shared := r.inflight.Do(doc.ID, func() (any, error) {
		r.mu.Lock()
		defer r.mu.Unlock()
		return r.reconcile(cycleCtx, doc), nil
	})
	if shared {
		logger.Debug("joined in-flight refresh for %s", doc.ID)
	}
	report, _ := v.(domain.RefreshReport)
	return report
}

// reconcile performs the cycle. Callers must hold r.mu.
func (r *Reconciler) reconcile(ctx context.Context, doc *domain.DocumentRef) domain.RefreshReport {
	report := domain.RefreshReport{DocumentID: doc.ID}
	logger.Section("Refresh " + doc.ID)

	text, err := r.docs.ReadDocument(ctx, doc.ID)
	if err != nil {
		return r.fail(report, fmt.Errorf("read %s: %w", doc.ID, err))
	}

	stored, err := r.store.GetQuests(ctx)
	if err != nil {
		return r.fail(report, fmt.Errorf("load quests: %w", err))
	}

	now := r.now()
	opts := domain.ValidateOptions{Now: now, HealObsolete: r.settings.HealObsolete}
	if r.settings.ValidationScope == domain.ValidationScopeDocument {
		opts.DocumentID = doc.ID
	}
	quests := domain.ValidateQuests(stored, text, opts)
	report.Obsoleted = countNewlyObsolete(stored, quests)
	logger.Debug("validated %d quests, %d newly obsolete", len(quests), report.Obsoleted)

	evaluated := false
	if refs := activeRefs(quests, doc.ID); len(refs) > 0 {
		logger.Info("evaluating %d active quests", len(refs))
		result, err := r.questions.EvaluateQuestions(ctx, text, refs)
		if err != nil {
			return r.fail(report, fmt.Errorf("evaluate questions: %w", err))
		}
		report.Completed = applyEvaluations(quests, doc.ID, result, now)

		if err := r.save(ctx, quests); err != nil {
			return r.fail(report, err)
		}
		report.Writes++
		evaluated = true
	}

	needed := max(0, r.settings.TargetCount-domain.CountActive(quests, doc.ID))
	if needed > 0 {
		logger.Info("generating %d questions", needed)
		generated, err := r.questions.GenerateQuestions(ctx, text, needed)
		if err != nil {
			return r.fail(report, fmt.Errorf("generate questions: %w", err))
		}
		blank := 0
		for _, question := range generated {
			if strings.TrimSpace(question) == "" {
				blank++
			}
		}
		if len(generated) != needed || blank > 0 {
			logger.Warn("requested %d questions, received %d (%d blank, skipped)", needed, len(generated), blank)
		}

		for _, question := range generated {
			if strings.TrimSpace(question) == "" {
				continue
			}
			q := domain.NewQuest(domain.NewQuestParams{
				ID:           r.newID(),
				Question:     question,
				DocumentID:   doc.ID,
				DocumentPath: doc.Path,
				DocumentText: text,
				Snapshot:     r.extractor.Extract(ctx, text, question, r.settings.ContextSize),
				Now:          now,
			})
			quests = append(quests, q)
			report.Generated = append(report.Generated, q.ID)
		}
	}

	if needed > 0 || !evaluated {
		if err := r.save(ctx, quests); err != nil {
			return r.fail(report, err)
		}
		report.Writes++
	}

	report.Outcome = domain.OutcomeUpdated
	logger.Info("refresh complete: %d completed, %d generated, %d writes",
		len(report.Completed), len(report.Generated), report.Writes)
	return report
}

// mutate loads the collection, applies fn and saves the result when fn
// reports a change. It shares the refresh lock so user edits are never
// lost to a concurrent cycle.
func (r *Reconciler) mutate(ctx context.Context, fn func([]domain.Quest) ([]domain.Quest, bool, error)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	quests, err := r.store.GetQuests(ctx)
	if err != nil {
		return fmt.Errorf("load quests: %w", err)
	}
	updated, changed, err := fn(quests)
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}
	return r.save(ctx, updated)
}

// save checks the collection invariants and writes it.
func (r *Reconciler) save(ctx context.Context, quests []domain.Quest) error {
	if err := domain.ValidateCollection(quests); err != nil {
		return fmt.Errorf("save quests: %w", err)
	}
	if err := r.store.SaveQuests(ctx, quests); err != nil {
		return fmt.Errorf("save quests: %w", err)
	}
	return nil
}

func (r *Reconciler) fail(report domain.RefreshReport, err error) domain.RefreshReport {
	logger.Error("%s: %v", refreshLogPrefix, err)
	report.Outcome = domain.OutcomeFailed
	report.Err = err
	return report
}

// activeRefs returns the active quests of documentID in stored order.
func activeRefs(quests []domain.Quest, documentID string) []domain.QuestionRef {
	var refs []domain.QuestionRef
	for _, q := range domain.QuestsForDocument(quests, documentID) {
		if q.IsActive() {
			refs = append(refs, domain.QuestionRef{ID: q.ID, Question: q.Question})
		}
	}
	return refs
}

// applyEvaluations marks answered quests completed in place and returns
// their ids. Verdicts for unknown, inactive or foreign quests are ignored.
func applyEvaluations(
	quests []domain.Quest,
	documentID string,
	result *domain.EvaluationResult,
	now time.Time,
) []string {
	if result == nil {
		return nil
	}

	index := make(map[string]int, len(quests))
	for i := range quests {
		if quests[i].DocumentID == documentID && quests[i].IsActive() {
			index[quests[i].ID] = i
		}
	}

	var completed []string
	for _, eval := range result.Evaluations {
		if !eval.IsAnswered {
			continue
		}
		i, ok := index[eval.QuestionID]
		if !ok {
			logger.Debug("ignoring evaluation for unknown quest %q", eval.QuestionID)
			continue
		}
		quests[i].MarkCompleted(now)
		completed = append(completed, eval.QuestionID)
		delete(index, eval.QuestionID)
	}
	return completed
}

func countNewlyObsolete(before, after []domain.Quest) int {
	n := 0
	for i := range after {
		if after[i].IsObsolete && !before[i].IsObsolete {
			n++
		}
	}
	return n
}
