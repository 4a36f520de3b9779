package driven

import (
	"context"

	"github.com/custodia-labs/quest-cli/internal/core/domain"
)

// QuestionService is the external capability that writes and grades
// research questions. Implementations are typically LLM-backed and
// non-deterministic; the core never retries a failed call.
type QuestionService interface {
	// GenerateQuestions returns count new research questions for the text.
	// Callers must tolerate a result of a different length.
	GenerateQuestions(ctx context.Context, documentText string, count int) ([]string, error)

	// EvaluateQuestions reports which questions the text answers.
	// Verdicts for unknown ids may be present and are ignored by callers;
	// questions missing from the result are treated as unchanged.
	EvaluateQuestions(
		ctx context.Context,
		documentText string,
		questions []domain.QuestionRef,
	) (*domain.EvaluationResult, error)
}

// QuestionBreakdown is an optional capability that splits one question
// into smaller sub-questions. Discovered by type assertion on a
// QuestionService.
type QuestionBreakdown interface {
	// BreakdownQuestion returns sub-questions for question.
	BreakdownQuestion(ctx context.Context, documentText, question string) ([]string, error)
}

// ContextRanker is an optional capability that picks the part of a
// document most relevant to a question.
type ContextRanker interface {
	// RankContext returns an excerpt of at most targetSize words.
	RankContext(ctx context.Context, documentText, question string, targetSize int) (string, error)
}
