// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - QuestStore: Whole-collection quest persistence
//   - DocumentSource: Active document and document text
//   - ConfigStore: Application configuration
//   - SchedulerStore: Scheduled task state and history
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - QuestionService: Generates and evaluates questions. Without it, refresh is a no-op.
//   - QuestionBreakdown: Splits questions. Without it, breakdown is unavailable.
//   - ContextRanker: Picks relevant excerpts. Without it, the midpoint window is used.
//   - LLMService: Language model backing the question capabilities.
//   - PromptStore: User-editable prompt templates.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or service package
package driven
