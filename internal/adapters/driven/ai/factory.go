// Package ai provides factory functions for creating AI service adapters.
package ai

import (
	"context"
	"fmt"
	"time"

	anthropicllm "github.com/custodia-labs/quest-cli/internal/adapters/driven/llm/anthropic"
	ollamallm "github.com/custodia-labs/quest-cli/internal/adapters/driven/llm/ollama"
	openaillm "github.com/custodia-labs/quest-cli/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/quest-cli/internal/adapters/driven/llm/ratelimit"
	"github.com/custodia-labs/quest-cli/internal/adapters/driven/questions"
	"github.com/custodia-labs/quest-cli/internal/core/domain"
	"github.com/custodia-labs/quest-cli/internal/core/ports/driven"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// InitResult contains the result of AI service initialisation.
type InitResult struct {
	LLMService driven.LLMService

	// Questions is nil when no provider is configured. It is a nil
	// interface, never a typed nil, so the reconciler can detect it.
	Questions driven.QuestionService

	Warnings []string // Non-fatal issues that left quests unconfigured.
}

// Close releases all resources held by InitResult.
func (r *InitResult) Close() {
	if r.LLMService != nil {
		r.LLMService.Close()
	}
}

// Initialise builds the question capability from settings. It never fails:
// problems are reported as warnings and leave Questions nil. When validate is
// set the provider is pinged first.
func Initialise(settings *domain.LLMSettings, prompts driven.PromptStore, validate bool) *InitResult {
	result := &InitResult{}
	if settings == nil || !settings.IsConfigured() {
		return result
	}

	create := CreateLLMService
	if validate {
		create = CreateAndValidateLLMService
	}

	llm, err := create(settings)
	if err != nil {
		result.Warnings = append(result.Warnings, err.Error())
		return result
	}
	if llm == nil {
		return result
	}

	result.LLMService = ratelimit.Wrap(llm, ratelimit.Config{
		RequestsPerSecond: settings.RateLimit,
		BurstSize:         settings.RateBurst,
	})
	result.Questions = NewQuestionService(result.LLMService, prompts)
	return result
}

// NewQuestionService wraps llm in the prompted question capability.
// Returns a nil interface when llm is nil.
func NewQuestionService(llm driven.LLMService, prompts driven.PromptStore) driven.QuestionService {
	if llm == nil {
		return nil
	}
	svc := questions.NewService(llm)
	if prompts != nil {
		svc.SetPromptStore(prompts)
	}
	return svc
}

// CreateAndValidateLLMService creates an LLM service and validates connectivity.
// Returns the service if successful, or an error with guidance.
func CreateAndValidateLLMService(settings *domain.LLMSettings) (driven.LLMService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	svc, err := CreateLLMService(settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w. Run 'quest settings llm' to fix",
			domain.ErrLLMUnavailable, err)
	}

	if svc == nil {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := svc.Ping(ctx); err != nil {
		svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w). Run 'quest settings llm' to fix",
			domain.ErrLLMUnavailable, err)
	}

	return svc, nil
}

// ValidateLLMConfig validates an LLM configuration by creating a service and pinging it.
func ValidateLLMConfig(settings *domain.LLMSettings) error {
	if settings == nil || !settings.IsConfigured() {
		return nil
	}

	svc, err := CreateLLMService(settings)
	if err != nil {
		return err
	}
	if svc == nil {
		return nil
	}
	defer svc.Close()

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	return svc.Ping(ctx)
}

// CreateLLMService creates the appropriate LLM service based on settings.
// Returns nil if the provider is not configured.
func CreateLLMService(settings *domain.LLMSettings) (driven.LLMService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		return createOllamaLLM(settings), nil

	case domain.AIProviderOpenAI:
		return createOpenAILLM(settings)

	case domain.AIProviderAnthropic:
		return createAnthropicLLM(settings)

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", settings.Provider)
	}
}

func createOllamaLLM(settings *domain.LLMSettings) driven.LLMService {
	return ollamallm.NewLLMService(ollamallm.LLMConfig{
		BaseURL: settings.BaseURL,
		Model:   settings.Model,
	})
}

func createOpenAILLM(settings *domain.LLMSettings) (driven.LLMService, error) {
	return openaillm.NewLLMService(openaillm.LLMConfig{
		APIKey:  settings.APIKey,
		BaseURL: settings.BaseURL,
		Model:   settings.Model,
	})
}

func createAnthropicLLM(settings *domain.LLMSettings) (driven.LLMService, error) {
	return anthropicllm.NewLLMService(anthropicllm.Config{
		APIKey:  settings.APIKey,
		BaseURL: settings.BaseURL,
		Model:   settings.Model,
	})
}
