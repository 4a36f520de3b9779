package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidQuest indicates a quest record breaks its invariants.
	ErrInvalidQuest = errors.New("invalid quest")

	// ErrNotImplemented indicates functionality is not yet available.
	ErrNotImplemented = errors.New("not implemented")

	// ErrLLMUnavailable indicates the LLM service is not configured.
	// Quest generation and evaluation are disabled.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrMalformedResponse indicates a capability returned an unusable payload.
	ErrMalformedResponse = errors.New("malformed capability response")

	// ErrBreakdownUnsupported indicates the configured capability cannot
	// split questions into sub-questions.
	ErrBreakdownUnsupported = errors.New("question breakdown unsupported")

	// ErrRateLimited indicates the API rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")
)
