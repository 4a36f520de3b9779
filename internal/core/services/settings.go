package services

import (
	"fmt"
	"time"

	"github.com/custodia-labs/quest-cli/internal/core/domain"
	"github.com/custodia-labs/quest-cli/internal/core/ports/driven"
	"github.com/custodia-labs/quest-cli/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyLLMProvider           = "llm.provider"
	keyLLMModel              = "llm.model"
	keyLLMBaseURL            = "llm.base_url"
	keyLLMAPIKey             = "llm.api_key"
	keyLLMRateLimit          = "llm.rate_limit"
	keyLLMRateBurst          = "llm.rate_burst"
	keyQuestTargetCount      = "quests.target_count"
	keyQuestContextSize      = "quests.context_size"
	keyQuestValidationScope  = "quests.validation_scope"
	keyQuestHealObsolete     = "quests.heal_obsolete"
	keyQuestContextRanking   = "quests.context_ranking"
	keyVaultPath             = "vault.path"
	keyDocumentActive        = "document.active"
	keySchedulerEnabled      = "scheduler.enabled"
	keySchedulerRefreshEvery = "scheduler.refresh_interval"
)

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
	}
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		LLM: domain.LLMSettings{
			Provider:  s.getProvider(keyLLMProvider, defaults.LLM.Provider),
			Model:     s.getString(keyLLMModel, defaults.LLM.Model),
			BaseURL:   s.configStore.GetString(keyLLMBaseURL), // No default - empty is valid for cloud providers
			APIKey:    s.configStore.GetString(keyLLMAPIKey),
			RateLimit: s.getFloat(keyLLMRateLimit, defaults.LLM.RateLimit),
			RateBurst: s.getInt(keyLLMRateBurst, defaults.LLM.RateBurst),
		},
		Quests: domain.QuestSettings{
			TargetCount:     s.getInt(keyQuestTargetCount, defaults.Quests.TargetCount),
			ContextSize:     s.getInt(keyQuestContextSize, defaults.Quests.ContextSize),
			ValidationScope: s.getValidationScope(defaults.Quests.ValidationScope),
			HealObsolete:    s.getBool(keyQuestHealObsolete, defaults.Quests.HealObsolete),
			ContextRanking:  s.getBool(keyQuestContextRanking, defaults.Quests.ContextRanking),
		},
		Vault: domain.VaultSettings{
			Path:           s.configStore.GetString(keyVaultPath),
			ActiveDocument: s.configStore.GetString(keyDocumentActive),
		},
		RefreshInterval: s.getDuration(keySchedulerRefreshEvery, defaults.RefreshInterval),
	}

	return settings, nil
}

// Save persists application settings.
// The active document is owned by the document source and is not written here.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	// Save LLM settings
	if err := s.configStore.Set(keyLLMProvider, settings.LLM.Provider.String()); err != nil {
		return fmt.Errorf("save llm provider: %w", err)
	}
	if err := s.configStore.Set(keyLLMModel, settings.LLM.Model); err != nil {
		return fmt.Errorf("save llm model: %w", err)
	}
	if err := s.configStore.Set(keyLLMBaseURL, settings.LLM.BaseURL); err != nil {
		return fmt.Errorf("save llm base_url: %w", err)
	}
	if settings.LLM.APIKey != "" {
		if err := s.configStore.Set(keyLLMAPIKey, settings.LLM.APIKey); err != nil {
			return fmt.Errorf("save llm api_key: %w", err)
		}
	}
	if err := s.configStore.Set(keyLLMRateLimit, settings.LLM.RateLimit); err != nil {
		return fmt.Errorf("save llm rate_limit: %w", err)
	}
	if err := s.configStore.Set(keyLLMRateBurst, settings.LLM.RateBurst); err != nil {
		return fmt.Errorf("save llm rate_burst: %w", err)
	}

	// Save quest settings
	if err := s.saveQuests(settings.Quests); err != nil {
		return err
	}

	// Save vault and scheduler settings
	if settings.Vault.Path != "" {
		if err := s.configStore.Set(keyVaultPath, settings.Vault.Path); err != nil {
			return fmt.Errorf("save vault path: %w", err)
		}
	}
	if settings.RefreshInterval > 0 {
		if err := s.configStore.Set(keySchedulerRefreshEvery, settings.RefreshInterval.String()); err != nil {
			return fmt.Errorf("save refresh interval: %w", err)
		}
	}

	return nil
}

func (s *SettingsService) saveQuests(quests domain.QuestSettings) error {
	if err := s.configStore.Set(keyQuestTargetCount, quests.TargetCount); err != nil {
		return fmt.Errorf("save quests target_count: %w", err)
	}
	if err := s.configStore.Set(keyQuestContextSize, quests.ContextSize); err != nil {
		return fmt.Errorf("save quests context_size: %w", err)
	}
	if err := s.configStore.Set(keyQuestValidationScope, quests.ValidationScope.String()); err != nil {
		return fmt.Errorf("save quests validation_scope: %w", err)
	}
	if err := s.configStore.Set(keyQuestHealObsolete, quests.HealObsolete); err != nil {
		return fmt.Errorf("save quests heal_obsolete: %w", err)
	}
	if err := s.configStore.Set(keyQuestContextRanking, quests.ContextRanking); err != nil {
		return fmt.Errorf("save quests context_ranking: %w", err)
	}
	return nil
}

// SetLLMProvider configures the LLM provider.
func (s *SettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("invalid LLM provider: %s", provider)
	}

	// Validate API key if required
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("API key required for %s", provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.LLM.Provider = provider

	// Set model - use provided or default
	if model != "" {
		settings.LLM.Model = model
	} else {
		defaults := domain.DefaultLLMModels()
		if defaultModel, ok := defaults[provider]; ok {
			settings.LLM.Model = defaultModel
		}
	}

	// Set base URL based on provider type
	if provider.IsLocal() {
		// Local providers need a base URL
		if settings.LLM.BaseURL == "" {
			settings.LLM.BaseURL = "http://localhost:11434"
		}
	} else {
		// Cloud providers don't need a custom base URL
		settings.LLM.BaseURL = ""
	}

	settings.LLM.APIKey = apiKey

	return s.Save(settings)
}

// SetQuestSettings updates reconciliation behaviour.
func (s *SettingsService) SetQuestSettings(quests domain.QuestSettings) error {
	if quests.TargetCount <= 0 {
		return fmt.Errorf("%w: target count must be positive", domain.ErrInvalidInput)
	}
	if quests.ContextSize <= 0 {
		return fmt.Errorf("%w: context size must be positive", domain.ErrInvalidInput)
	}
	if !quests.ValidationScope.IsValid() {
		return fmt.Errorf("%w: validation scope %q", domain.ErrInvalidInput, quests.ValidationScope)
	}
	return s.saveQuests(quests)
}

// SetVaultPath updates the vault root directory.
func (s *SettingsService) SetVaultPath(path string) error {
	if path == "" {
		return fmt.Errorf("%w: vault path is required", domain.ErrInvalidInput)
	}
	if err := s.configStore.Set(keyVaultPath, path); err != nil {
		return fmt.Errorf("save vault path: %w", err)
	}
	return nil
}

// Validate checks if current settings are consistent.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	if settings.LLM.Provider != "" && !settings.LLM.IsConfigured() {
		return fmt.Errorf("LLM provider %q is missing an API key", settings.LLM.Provider)
	}
	if !settings.Quests.ValidationScope.IsValid() {
		return fmt.Errorf("invalid validation scope: %s", settings.Quests.ValidationScope)
	}
	if settings.LLM.RateLimit < 0 {
		return fmt.Errorf("invalid rate limit: %v", settings.LLM.RateLimit)
	}

	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// ValidateLLMConfig validates the current LLM configuration by pinging the provider.
func (s *SettingsService) ValidateLLMConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateLLM(&settings.LLM)
}

// GetSchedulerConfig returns the scheduler configuration.
// Returns default configuration if nothing is configured.
func (s *SettingsService) GetSchedulerConfig() domain.SchedulerConfig {
	defaults := domain.DefaultSchedulerConfig()

	// Master switch
	if _, exists := s.configStore.Get(keySchedulerEnabled); exists {
		defaults.Enabled = s.configStore.GetBool(keySchedulerEnabled)
	}

	taskCfg := defaults.TaskConfigs[domain.TaskIDQuestRefresh]
	taskCfg.Interval = s.getDuration(keySchedulerRefreshEvery, taskCfg.Interval)
	defaults.TaskConfigs[domain.TaskIDQuestRefresh] = taskCfg

	return defaults
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val == 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetFloat(key)
}

func (s *SettingsService) getDuration(key string, defaultVal time.Duration) time.Duration {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(val)
	if err != nil || d <= 0 {
		return defaultVal
	}
	return d
}

func (s *SettingsService) getValidationScope(defaultVal domain.ValidationScope) domain.ValidationScope {
	val := domain.ValidationScope(s.configStore.GetString(keyQuestValidationScope))
	if !val.IsValid() {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	provider := domain.AIProvider(val)
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}
