// Command quest keeps research questions in step with the note you are writing.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/custodia-labs/quest-cli/internal/adapters/driven/ai"
	"github.com/custodia-labs/quest-cli/internal/adapters/driven/config/file"
	"github.com/custodia-labs/quest-cli/internal/adapters/driven/documents/filesystem"
	"github.com/custodia-labs/quest-cli/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/quest-cli/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/quest-cli/internal/adapters/driving/cli"
	"github.com/custodia-labs/quest-cli/internal/core/ports/driven"
	"github.com/custodia-labs/quest-cli/internal/core/services"
	"github.com/custodia-labs/quest-cli/internal/logger"
)

func main() {
	if err := cli.Execute(bootstrap); err != nil {
		os.Exit(1)
	}
}

// bootstrap wires the adapters into the core services.
func bootstrap(opts cli.Options) (*cli.Services, error) {
	return wire(opts, "")
}

// wire builds services with configuration read from configDir (the default
// ~/.quest when empty).
func wire(opts cli.Options, configDir string) (*cli.Services, error) {
	configStore, err := file.NewConfigStore(configDir)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	settingsService := services.NewSettingsService(configStore, ai.NewConfigValidator())
	settings, err := settingsService.Get()
	if err != nil {
		return nil, fmt.Errorf("loading settings: %w", err)
	}

	vaultPath := settings.Vault.Path
	if opts.VaultDir != "" {
		vaultPath = opts.VaultDir
	}

	var (
		docs  driven.DocumentSource
		vault *filesystem.Vault
	)
	if vaultPath != "" {
		vault, err = filesystem.NewVault(vaultPath, configStore)
		if err != nil {
			return nil, err
		}
		docs = vault
	} else {
		logger.Debug("no vault configured")
		docs = memory.NewDocumentSource()
	}

	store, err := sqlite.NewStore(opts.DataDir)
	if err != nil {
		return nil, fmt.Errorf("opening quest store: %w", err)
	}
	logger.Debug("quest store: %s", store.Path())

	var prompts driven.PromptStore
	promptDir := ""
	if configDir != "" {
		promptDir = filepath.Join(configDir, "prompts")
	}
	if ps, err := file.NewPromptStore(promptDir); err != nil {
		logger.Warn("using built-in prompts: %v", err)
	} else {
		prompts = ps
	}

	aiResult := ai.Initialise(&settings.LLM, prompts, false)
	for _, w := range aiResult.Warnings {
		logger.Warn("%s", w)
	}

	reconciler := services.NewReconciler(aiResult.Questions, store.QuestStore(), docs, settings.Quests)
	questService := services.NewQuestService(reconciler)
	scheduler := services.NewScheduler(settingsService.GetSchedulerConfig(), store.SchedulerStore(), questService)

	result := &cli.Services{
		Quests:    questService,
		Settings:  settingsService,
		Scheduler: scheduler,
		Close: func() {
			aiResult.Close()
			if err := store.Close(); err != nil {
				logger.Error("closing quest store: %v", err)
			}
		},
	}

	if vault != nil {
		result.Documents = vault
		result.NewWatcher = func(follow bool) (cli.Watcher, error) {
			return filesystem.NewWatcher(vault, questService, filesystem.WatcherOptions{
				FollowEdits: follow,
				ConfigPath:  configStore.Path(),
				Reload:      configStore.Load,
			}), nil
		}
	}

	return result, nil
}
