package driven

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from files, embed them in the binary,
// or fetch them from a remote configuration service.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	// Returns the prompt content and any error encountered.
	// If the prompt is not found, implementations should return a sensible default
	// or an error, depending on whether the prompt is required.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	// This is useful when prompts may have been edited on disk.
	Reload()
}

// Well-known prompt names used throughout the application.
// These constants define the contract between prompt consumers and providers.
const (
	// PromptSystem is the system prompt shared by every question request.
	// This prompt has no format placeholders.
	PromptSystem = "system"

	// PromptGenerateQuestions asks for new research questions.
	// The template expects %d (count) and %s (document text) placeholders.
	PromptGenerateQuestions = "generate_questions"

	// PromptEvaluateQuestions asks whether questions are answered.
	// The template expects %s (document text) and %s (question list) placeholders.
	PromptEvaluateQuestions = "evaluate_questions"

	// PromptBreakdownQuestion splits a question into sub-questions.
	// The template expects %s (question) and %s (document text) placeholders.
	PromptBreakdownQuestion = "breakdown_question"

	// PromptRankContext selects the excerpt most relevant to a question.
	// The template expects %d (word limit), %s (question) and %s (document text).
	PromptRankContext = "rank_context"
)

// PromptStoreAware is an optional interface for services that can use custom prompts.
// Services implementing this interface can have their prompt templates customised
// by injecting a PromptStore after construction.
type PromptStoreAware interface {
	// SetPromptStore sets the prompt store for loading customisable prompts.
	// If not set, the service should use hardcoded default prompts.
	SetPromptStore(store PromptStore)
}
