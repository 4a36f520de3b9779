// Package questions implements the question capabilities on top of a chat
// LLM. Every request forces a function call so replies arrive as JSON.
package questions

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/custodia-labs/quest-cli/internal/core/domain"
	"github.com/custodia-labs/quest-cli/internal/core/ports/driven"
)

// Ensure Service implements the capability interfaces.
var (
	_ driven.QuestionService   = (*Service)(nil)
	_ driven.QuestionBreakdown = (*Service)(nil)
	_ driven.ContextRanker     = (*Service)(nil)
	_ driven.PromptStoreAware  = (*Service)(nil)
)

// Sampling settings per request kind.
const (
	generateTemperature = 0.7
	evaluateTemperature = 0.2
	generateMaxTokens   = 1024
	evaluateMaxTokens   = 2048
)

// Service asks an LLM to write, grade, split and place research questions.
type Service struct {
	llm         driven.LLMService
	promptStore driven.PromptStore
}

// NewService creates a question service backed by llm.
func NewService(llm driven.LLMService) *Service {
	return &Service{llm: llm}
}

// SetPromptStore sets the prompt store for loading customisable prompts.
// If not set, the service uses built-in prompts.
func (s *Service) SetPromptStore(store driven.PromptStore) {
	s.promptStore = store
}

// ModelName returns the underlying model name.
func (s *Service) ModelName() string {
	return s.llm.ModelName()
}

// GenerateQuestions asks for count new questions about documentText.
func (s *Service) GenerateQuestions(ctx context.Context, documentText string, count int) ([]string, error) {
	if count <= 0 {
		return nil, nil
	}

	prompt := fmt.Sprintf(s.loadPrompt(driven.PromptGenerateQuestions), count, documentText)
	var reply questionList
	if err := s.call(ctx, prompt, generateQuestionsTool, generateTemperature, generateMaxTokens, &reply); err != nil {
		return nil, fmt.Errorf("generate questions: %w", err)
	}
	if reply.Questions == nil {
		return nil, fmt.Errorf("generate questions: missing questions: %w", domain.ErrMalformedResponse)
	}
	return reply.Questions, nil
}

// EvaluateQuestions asks which of questions documentText answers.
func (s *Service) EvaluateQuestions(
	ctx context.Context,
	documentText string,
	questions []domain.QuestionRef,
) (*domain.EvaluationResult, error) {
	if len(questions) == 0 {
		return &domain.EvaluationResult{}, nil
	}

	lines := make([]string, len(questions))
	for i, q := range questions {
		lines[i] = fmt.Sprintf("[%s] %s", q.ID, q.Question)
	}

	prompt := fmt.Sprintf(s.loadPrompt(driven.PromptEvaluateQuestions), documentText, strings.Join(lines, "\n"))
	var reply domain.EvaluationResult
	if err := s.call(ctx, prompt, evaluateQuestionsTool, evaluateTemperature, evaluateMaxTokens, &reply); err != nil {
		return nil, fmt.Errorf("evaluate questions: %w", err)
	}
	if reply.Evaluations == nil {
		return nil, fmt.Errorf("evaluate questions: missing evaluations: %w", domain.ErrMalformedResponse)
	}
	return &reply, nil
}

// BreakdownQuestion asks for sub-questions of question. Blank entries are
// dropped.
func (s *Service) BreakdownQuestion(ctx context.Context, documentText, question string) ([]string, error) {
	prompt := fmt.Sprintf(s.loadPrompt(driven.PromptBreakdownQuestion), question, documentText)
	var reply questionList
	if err := s.call(ctx, prompt, breakdownQuestionTool, generateTemperature, generateMaxTokens, &reply); err != nil {
		return nil, fmt.Errorf("breakdown question: %w", err)
	}

	subs := make([]string, 0, len(reply.Questions))
	for _, q := range reply.Questions {
		if q = strings.TrimSpace(q); q != "" {
			subs = append(subs, q)
		}
	}
	return subs, nil
}

// RankContext asks for the passage of documentText most relevant to question.
func (s *Service) RankContext(ctx context.Context, documentText, question string, targetSize int) (string, error) {
	if targetSize <= 0 {
		targetSize = domain.DefaultContextSize
	}

	prompt := fmt.Sprintf(s.loadPrompt(driven.PromptRankContext), targetSize, question, documentText)
	var reply excerpt
	// Roughly four tokens per three words, with headroom.
	maxTokens := targetSize*2 + 64
	if err := s.call(ctx, prompt, rankContextTool, evaluateTemperature, maxTokens, &reply); err != nil {
		return "", fmt.Errorf("rank context: %w", err)
	}
	return strings.TrimSpace(reply.Excerpt), nil
}

// call sends one system+user exchange that must end in a call to tool, and
// decodes the arguments into out.
func (s *Service) call(
	ctx context.Context,
	prompt string,
	tool *driven.ToolSpec,
	temperature float64,
	maxTokens int,
	out any,
) error {
	messages := []driven.ChatMessage{
		{Role: driven.RoleSystem, Content: s.loadPrompt(driven.PromptSystem)},
		{Role: driven.RoleUser, Content: prompt},
	}

	raw, err := s.llm.Chat(ctx, messages, driven.ChatOptions{
		MaxTokens:   maxTokens,
		Temperature: temperature,
		Tool:        tool,
	})
	if err != nil {
		return err
	}

	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return fmt.Errorf("%w: %s arguments: %v", domain.ErrMalformedResponse, tool.Name, err)
	}
	return nil
}

// loadPrompt loads a prompt from the store, falling back to the built-in
// template if unavailable.
func (s *Service) loadPrompt(name string) string {
	fallback := defaultPrompts[name]
	if s.promptStore == nil {
		return fallback
	}
	prompt, err := s.promptStore.Load(name)
	if err != nil || prompt == "" {
		return fallback
	}
	return prompt
}
