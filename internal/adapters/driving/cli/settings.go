package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/quest-cli/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure the LLM provider, quest behaviour and vault location.

Use subcommands to configure specific settings.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsLLMCmd = &cobra.Command{
	Use:   "llm",
	Short: "Configure LLM provider",
	Long:  `Configure the LLM provider that generates and evaluates quests.`,
	RunE:  runSettingsLLM,
}

var settingsQuestsCmd = &cobra.Command{
	Use:   "quests",
	Short: "Configure quest behaviour",
	Long: `Configure how quests are refreshed.

  target count     - open quests kept per document
  context size     - words captured around each quest
  validation scope - "all" checks every quest against the active document,
                     "document" only checks the active document's own quests
  heal obsolete    - clear the obsolete flag when context matches again
  context ranking  - ask the LLM to pick the captured context`,
	RunE: runSettingsQuests,
}

var settingsVaultCmd = &cobra.Command{
	Use:   "vault <dir>",
	Short: "Set the notes vault directory",
	Args:  cobra.ExactArgs(1),
	RunE:  runSettingsVault,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsLLMCmd)
	settingsCmd.AddCommand(settingsQuestsCmd)
	settingsCmd.AddCommand(settingsVaultCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	// LLM settings
	cmd.Println("[LLM]")
	if settings.LLM.Provider == "" {
		cmd.Println("  Provider: (not set)")
	} else {
		cmd.Printf("  Provider: %s\n", settings.LLM.Provider.Description())
		cmd.Printf("  Model: %s\n", settings.LLM.Model)
	}
	if settings.LLM.Provider.IsLocal() {
		cmd.Printf("  Base URL: %s\n", settings.LLM.BaseURL)
	}
	if settings.LLM.Provider.RequiresAPIKey() {
		if settings.LLM.APIKey != "" {
			cmd.Printf("  API Key: %s\n", maskAPIKey(settings.LLM.APIKey))
		} else {
			cmd.Printf("  API Key: (not set)\n")
		}
	}
	if settings.LLM.RateLimit > 0 {
		cmd.Printf("  Rate Limit: %.2f req/s (burst %d)\n", settings.LLM.RateLimit, settings.LLM.RateBurst)
	} else {
		cmd.Println("  Rate Limit: off")
	}
	status := "configured"
	if !settings.LLM.IsConfigured() {
		status = "not configured"
	}
	cmd.Printf("  Status: %s\n", status)
	cmd.Println()

	// Quest settings
	cmd.Println("[Quests]")
	cmd.Printf("  Target Count: %d\n", settings.Quests.TargetCount)
	cmd.Printf("  Context Size: %d words\n", settings.Quests.ContextSize)
	cmd.Printf("  Validation Scope: %s\n", settings.Quests.ValidationScope)
	cmd.Printf("  Heal Obsolete: %s\n", yesNo(settings.Quests.HealObsolete))
	cmd.Printf("  Context Ranking: %s\n", yesNo(settings.Quests.ContextRanking))
	cmd.Printf("  Refresh Interval: %s\n", settings.RefreshInterval)
	cmd.Println()

	// Vault settings
	cmd.Println("[Vault]")
	cmd.Printf("  Path: %s\n", orNotSet(settings.Vault.Path))
	cmd.Printf("  Active Document: %s\n", orNotSet(settings.Vault.ActiveDocument))
	cmd.Println()

	// Validation
	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
		cmd.Println("Run 'quest settings llm' to fix configuration issues.")
	} else {
		cmd.Println("Configuration is valid.")
	}

	return nil
}

func runSettingsLLM(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	reader := bufio.NewReader(cmd.InOrStdin())
	return configureLLMProvider(cmd, reader)
}

func configureLLMProvider(cmd *cobra.Command, reader *bufio.Reader) error {
	cmd.Println("Select LLM Provider")
	providers := domain.AllLLMProviders()
	for i, p := range providers {
		cmd.Printf("  %d. %s\n", i+1, p.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	input := readLine(reader)
	idx := parseChoice(input, len(providers), 1)
	selectedProvider := providers[idx-1]

	// Get model
	defaults := domain.DefaultLLMModels()
	defaultModel := defaults[selectedProvider]
	cmd.Printf("Enter model name [%s]: ", defaultModel)
	model := readLine(reader)
	if model == "" {
		model = defaultModel
	}

	// Get API key if needed
	var apiKey string
	if selectedProvider.RequiresAPIKey() {
		cmd.Print("Enter API key: ")
		apiKey = readPassword(reader)
		cmd.Println()
		if apiKey == "" {
			return errors.New("API key is required for this provider")
		}
	}

	if err := settingsService.SetLLMProvider(selectedProvider, model, apiKey); err != nil {
		return fmt.Errorf("failed to configure LLM provider: %w", err)
	}

	// Validate the configuration by pinging the service
	cmd.Print("Validating configuration... ")
	if err := settingsService.ValidateLLMConfig(); err != nil {
		cmd.Printf("FAILED: %v\n", err)
		return fmt.Errorf("LLM configuration validation failed: %w", err)
	}
	cmd.Println("OK")

	cmd.Printf("LLM provider configured: %s (%s)\n\n", selectedProvider.Description(), model)
	return nil
}

func runSettingsQuests(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	current := settings.Quests
	reader := bufio.NewReader(cmd.InOrStdin())

	cmd.Println("Quest Settings")
	cmd.Println("--------------")

	cmd.Printf("Target count [%d]: ", current.TargetCount)
	current.TargetCount = parseInt(readLine(reader), current.TargetCount)

	cmd.Printf("Context size in words [%d]: ", current.ContextSize)
	current.ContextSize = parseInt(readLine(reader), current.ContextSize)

	cmd.Printf("Validation scope (all/document) [%s]: ", current.ValidationScope)
	if input := readLine(reader); input != "" {
		current.ValidationScope = domain.ValidationScope(strings.ToLower(input))
	}

	cmd.Printf("Heal obsolete quests (y/n) [%s]: ", yesNo(current.HealObsolete))
	current.HealObsolete = parseYesNo(readLine(reader), current.HealObsolete)

	cmd.Printf("Rank context with the LLM (y/n) [%s]: ", yesNo(current.ContextRanking))
	current.ContextRanking = parseYesNo(readLine(reader), current.ContextRanking)

	if err := settingsService.SetQuestSettings(current); err != nil {
		return fmt.Errorf("failed to save quest settings: %w", err)
	}
	cmd.Println("Quest settings saved.")
	return nil
}

func runSettingsVault(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	dir, err := filepath.Abs(args[0])
	if err != nil {
		return fmt.Errorf("invalid vault: %w", err)
	}
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("invalid vault: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("invalid vault: %s is not a directory", dir)
	}

	if err := settingsService.SetVaultPath(dir); err != nil {
		return fmt.Errorf("failed to set vault: %w", err)
	}
	cmd.Printf("Vault set to %s\n", dir)
	return nil
}

// Helper functions.

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

// parseInt returns defaultVal for empty input. Invalid numbers are passed
// through as zero so validation rejects them.
func parseInt(input string, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil {
		return 0
	}
	return val
}

func parseYesNo(input string, defaultVal bool) bool {
	switch strings.ToLower(input) {
	case "y", "yes", "true":
		return true
	case "n", "no", "false":
		return false
	default:
		return defaultVal
	}
}

// readPassword reads without echo when stdin is a terminal.
//
//nolint:errcheck // CLI helper, error ignored for UX
func readPassword(reader *bufio.Reader) string {
	if term.IsTerminal(int(os.Stdin.Fd())) {
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err == nil {
			return string(password)
		}
	}
	return readLine(reader)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}

func orNotSet(v string) string {
	if v == "" {
		return "(not set)"
	}
	return v
}
