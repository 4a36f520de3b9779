package services

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/quest-cli/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/quest-cli/internal/core/domain"
)

// mockAIValidator implements driven.AIConfigValidator for testing.
type mockAIValidator struct {
	err    error
	called bool
	got    *domain.LLMSettings
}

func (m *mockAIValidator) ValidateLLM(config *domain.LLMSettings) error {
	m.called = true
	m.got = config
	return m.err
}

func TestNewSettingsService(t *testing.T) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store, nil)

	require.NotNil(t, service)
}

func TestSettingsService_Get_ReturnsDefaults(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore(), nil)

	settings, err := service.Get()

	require.NoError(t, err)
	require.NotNil(t, settings)
	assert.Equal(t, domain.DefaultAppSettings(), *settings)
}

func TestSettingsService_Get_ReturnsStoredValues(t *testing.T) {
	store := memory.NewConfigStoreFrom(map[string]any{
		"llm.provider":               "openai",
		"llm.model":                  "gpt-4o",
		"llm.api_key":                "sk-test",
		"llm.rate_limit":             int64(3),
		"llm.rate_burst":             int64(5),
		"quests.target_count":        int64(7),
		"quests.context_size":        int64(200),
		"quests.validation_scope":    "document",
		"quests.heal_obsolete":       true,
		"quests.context_ranking":     true,
		"vault.path":                 "/home/me/vault",
		"document.active":            "daily/today.md",
		"scheduler.refresh_interval": "30m",
	})
	service := NewSettingsService(store, nil)

	settings, err := service.Get()

	require.NoError(t, err)
	assert.Equal(t, domain.AIProviderOpenAI, settings.LLM.Provider)
	assert.Equal(t, "gpt-4o", settings.LLM.Model)
	assert.Equal(t, "sk-test", settings.LLM.APIKey)
	assert.InDelta(t, 3.0, settings.LLM.RateLimit, 0.0001)
	assert.Equal(t, 5, settings.LLM.RateBurst)
	assert.Equal(t, domain.QuestSettings{
		TargetCount:     7,
		ContextSize:     200,
		ValidationScope: domain.ValidationScopeDocument,
		HealObsolete:    true,
		ContextRanking:  true,
	}, settings.Quests)
	assert.Equal(t, "/home/me/vault", settings.Vault.Path)
	assert.Equal(t, "daily/today.md", settings.Vault.ActiveDocument)
	assert.Equal(t, 30*time.Minute, settings.RefreshInterval)
}

func TestSettingsService_Get_InvalidValuesReturnDefaults(t *testing.T) {
	store := memory.NewConfigStoreFrom(map[string]any{
		"llm.provider":               "invalid_provider",
		"quests.validation_scope":    "everything",
		"scheduler.refresh_interval": "soon",
	})
	service := NewSettingsService(store, nil)

	settings, err := service.Get()

	require.NoError(t, err)
	defaults := domain.DefaultAppSettings()
	assert.Equal(t, defaults.LLM.Provider, settings.LLM.Provider)
	assert.Equal(t, defaults.Quests.ValidationScope, settings.Quests.ValidationScope)
	assert.Equal(t, defaults.RefreshInterval, settings.RefreshInterval)
}

func TestSettingsService_Get_ZeroRateLimitKept(t *testing.T) {
	store := memory.NewConfigStoreFrom(map[string]any{"llm.rate_limit": 0.0})
	service := NewSettingsService(store, nil)

	settings, err := service.Get()

	require.NoError(t, err)
	assert.Zero(t, settings.LLM.RateLimit, "an explicit zero disables throttling")
}

func TestSettingsService_Save(t *testing.T) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store, nil)

	settings := domain.DefaultAppSettings()
	settings.LLM = domain.LLMSettings{
		Provider:  domain.AIProviderAnthropic,
		Model:     "claude-3-5-sonnet-latest",
		APIKey:    "sk-ant",
		RateLimit: 0.5,
		RateBurst: 1,
	}
	settings.Quests.TargetCount = 8
	settings.Vault.Path = "/vault"
	settings.RefreshInterval = time.Hour

	require.NoError(t, service.Save(&settings))

	assert.Equal(t, "anthropic", store.GetString("llm.provider"))
	assert.Equal(t, "sk-ant", store.GetString("llm.api_key"))
	assert.InDelta(t, 0.5, store.GetFloat("llm.rate_limit"), 0.0001)
	assert.Equal(t, 8, store.GetInt("quests.target_count"))
	assert.Equal(t, "all", store.GetString("quests.validation_scope"))
	assert.Equal(t, "/vault", store.GetString("vault.path"))
	assert.Equal(t, "1h0m0s", store.GetString("scheduler.refresh_interval"))

	roundTrip, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, settings, *roundTrip)
}

func TestSettingsService_Save_EmptyAPIKeyKeepsExisting(t *testing.T) {
	store := memory.NewConfigStoreFrom(map[string]any{"llm.api_key": "existing"})
	service := NewSettingsService(store, nil)

	settings := domain.DefaultAppSettings()
	require.NoError(t, service.Save(&settings))

	assert.Equal(t, "existing", store.GetString("llm.api_key"))
}

func TestSettingsService_SetLLMProvider(t *testing.T) {
	tests := []struct {
		name        string
		provider    domain.AIProvider
		model       string
		apiKey      string
		wantModel   string
		wantBaseURL string
	}{
		{"ollama default model", domain.AIProviderOllama, "", "", "llama3.2", "http://localhost:11434"},
		{"openai explicit model", domain.AIProviderOpenAI, "gpt-4o", "sk", "gpt-4o", ""},
		{"anthropic default model", domain.AIProviderAnthropic, "", "sk", "claude-3-5-sonnet-latest", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := NewSettingsService(memory.NewConfigStore(), nil)

			require.NoError(t, service.SetLLMProvider(tt.provider, tt.model, tt.apiKey))

			settings, err := service.Get()
			require.NoError(t, err)
			assert.Equal(t, tt.provider, settings.LLM.Provider)
			assert.Equal(t, tt.wantModel, settings.LLM.Model)
			assert.Equal(t, tt.wantBaseURL, settings.LLM.BaseURL)
			assert.True(t, settings.LLM.IsConfigured())
		})
	}
}

func TestSettingsService_SetLLMProvider_PreservesExistingBaseURL(t *testing.T) {
	store := memory.NewConfigStoreFrom(map[string]any{"llm.base_url": "http://gpu-box:11434"})
	service := NewSettingsService(store, nil)

	require.NoError(t, service.SetLLMProvider(domain.AIProviderOllama, "", ""))

	assert.Equal(t, "http://gpu-box:11434", store.GetString("llm.base_url"))
}

func TestSettingsService_SetLLMProvider_Errors(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore(), nil)

	assert.Error(t, service.SetLLMProvider("bogus", "", ""))
	assert.ErrorContains(t, service.SetLLMProvider(domain.AIProviderOpenAI, "", ""), "API key required")
}

func TestSettingsService_SetQuestSettings(t *testing.T) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store, nil)

	err := service.SetQuestSettings(domain.QuestSettings{
		TargetCount:     3,
		ContextSize:     100,
		ValidationScope: domain.ValidationScopeDocument,
		HealObsolete:    true,
	})
	require.NoError(t, err)

	settings, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, 3, settings.Quests.TargetCount)
	assert.Equal(t, domain.ValidationScopeDocument, settings.Quests.ValidationScope)
	assert.True(t, settings.Quests.HealObsolete)
	assert.False(t, settings.Quests.ContextRanking)
}

func TestSettingsService_SetQuestSettings_Invalid(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore(), nil)
	valid := domain.DefaultAppSettings().Quests

	tests := []struct {
		name   string
		mutate func(q *domain.QuestSettings)
	}{
		{"zero target", func(q *domain.QuestSettings) { q.TargetCount = 0 }},
		{"negative context", func(q *domain.QuestSettings) { q.ContextSize = -1 }},
		{"bad scope", func(q *domain.QuestSettings) { q.ValidationScope = "global" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := valid
			tt.mutate(&q)
			assert.ErrorIs(t, service.SetQuestSettings(q), domain.ErrInvalidInput)
		})
	}
}

func TestSettingsService_SetVaultPath(t *testing.T) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store, nil)

	require.NoError(t, service.SetVaultPath("/notes"))
	assert.Equal(t, "/notes", store.GetString("vault.path"))

	assert.ErrorIs(t, service.SetVaultPath(""), domain.ErrInvalidInput)
}

func TestSettingsService_Validate(t *testing.T) {
	tests := []struct {
		name    string
		values  map[string]any
		wantErr bool
	}{
		{"defaults", nil, false},
		{"ollama", map[string]any{"llm.provider": "ollama"}, false},
		{"openai with key", map[string]any{"llm.provider": "openai", "llm.api_key": "sk"}, false},
		{"openai without key", map[string]any{"llm.provider": "openai"}, true},
		{"negative rate", map[string]any{"llm.rate_limit": -1.0}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := NewSettingsService(memory.NewConfigStoreFrom(tt.values), nil)
			err := service.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSettingsService_GetDefaults(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore(), nil)

	assert.Equal(t, domain.DefaultAppSettings(), service.GetDefaults())
}

func TestSettingsService_ValidateLLMConfig(t *testing.T) {
	store := memory.NewConfigStoreFrom(map[string]any{"llm.provider": "ollama", "llm.model": "llama3.2"})

	t.Run("no validator", func(t *testing.T) {
		assert.NoError(t, NewSettingsService(store, nil).ValidateLLMConfig())
	})

	t.Run("delegates", func(t *testing.T) {
		validator := &mockAIValidator{err: errors.New("connection refused")}
		err := NewSettingsService(store, validator).ValidateLLMConfig()

		assert.ErrorContains(t, err, "connection refused")
		assert.True(t, validator.called)
		assert.Equal(t, domain.AIProviderOllama, validator.got.Provider)
	})
}

func TestSettingsService_GetSchedulerConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg := NewSettingsService(memory.NewConfigStore(), nil).GetSchedulerConfig()

		assert.True(t, cfg.Enabled)
		assert.Equal(t, 10*time.Minute, cfg.GetTaskConfig(domain.TaskIDQuestRefresh).Interval)
	})

	t.Run("configured", func(t *testing.T) {
		store := memory.NewConfigStoreFrom(map[string]any{
			"scheduler.enabled":          false,
			"scheduler.refresh_interval": "2m",
		})
		cfg := NewSettingsService(store, nil).GetSchedulerConfig()

		assert.False(t, cfg.Enabled)
		assert.Equal(t, 2*time.Minute, cfg.GetTaskConfig(domain.TaskIDQuestRefresh).Interval)
	})
}
