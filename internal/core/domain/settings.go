package domain

import "time"

const unknownDescription = "Unknown"

// AIProvider identifies an LLM service provider.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderAnthropic
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	default:
		return unknownDescription
	}
}

// LLMSettings holds LLM provider configuration.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider

	// Model is the LLM model name.
	Model string

	// BaseURL is the API endpoint (for Ollama or compatible APIs).
	BaseURL string

	// APIKey is the API key (for OpenAI/Anthropic).
	APIKey string

	// RateLimit is the sustained number of LLM requests per second.
	// Zero disables throttling.
	RateLimit float64

	// RateBurst is the maximum number of requests allowed in a burst.
	RateBurst int
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// ValidationScope selects which quests are validated on refresh.
type ValidationScope string

// Available validation scopes.
const (
	// ValidationScopeAll validates every stored quest against the active
	// document's text.
	ValidationScopeAll ValidationScope = "all"

	// ValidationScopeDocument validates only the active document's quests.
	ValidationScopeDocument ValidationScope = "document"
)

// IsValid returns true if the scope is recognised.
func (s ValidationScope) IsValid() bool {
	return s == ValidationScopeAll || s == ValidationScopeDocument
}

// String returns the string representation.
func (s ValidationScope) String() string {
	return string(s)
}

// QuestSettings holds reconciliation behaviour.
type QuestSettings struct {
	// TargetCount is how many active quests each document should have.
	TargetCount int

	// ContextSize is the snapshot length in words.
	ContextSize int

	// ValidationScope selects which quests are validated.
	ValidationScope ValidationScope

	// HealObsolete clears obsolete flags when content reverts.
	HealObsolete bool

	// ContextRanking asks the LLM to pick the snapshot excerpt instead of
	// taking the middle of the document.
	ContextRanking bool
}

// VaultSettings locates the documents quests are generated for.
type VaultSettings struct {
	// Path is the vault root directory.
	Path string

	// ActiveDocument is the vault-relative path of the current document.
	ActiveDocument string
}

// AppSettings holds all application settings.
type AppSettings struct {
	// LLM holds LLM provider settings.
	LLM LLMSettings

	// Quests holds reconciliation settings.
	Quests QuestSettings

	// Vault holds document location settings.
	Vault VaultSettings

	// RefreshInterval is how often the scheduler refreshes quests.
	RefreshInterval time.Duration
}

// DefaultAppSettings returns settings with sensible defaults.
// The LLM is left unconfigured; users set it up via 'quest settings llm'.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		LLM: LLMSettings{
			RateLimit: 1.0,
			RateBurst: 2,
		},
		Quests: QuestSettings{
			TargetCount:     DefaultTargetActiveCount,
			ContextSize:     DefaultContextSize,
			ValidationScope: ValidationScopeAll,
		},
		RefreshInterval: 10 * time.Minute,
	}
}

// AllLLMProviders returns providers that support LLM operations.
func AllLLMProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
		AIProviderAnthropic,
	}
}

// DefaultLLMModels returns default models for each LLM provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama:    "llama3.2",
		AIProviderOpenAI:    "gpt-4o-mini",
		AIProviderAnthropic: "claude-3-5-sonnet-latest",
	}
}
