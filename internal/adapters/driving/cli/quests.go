package cli

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/quest-cli/internal/core/domain"
	"github.com/custodia-labs/quest-cli/internal/core/ports/driving"
)

// shortIDLen is how many characters of a quest id are shown in lists.
const shortIDLen = 8

var (
	listAll      bool
	listDocument string
	listJSON     bool
	clearYes     bool
)

var refreshCmd = &cobra.Command{
	Use:   "refresh [path]",
	Short: "Refresh quests for the active document",
	Long: `Runs one refresh cycle for the active document: answered quests are
marked complete, quests whose context changed are flagged obsolete, and new
quests are generated to reach the target count.

If a path is given, that document becomes active first.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRefresh,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List quests",
	Long: `Lists open quests for the active document.

Use --document to show another document and --all to include completed and
dismissed quests.`,
	Args: cobra.NoArgs,
	RunE: runList,
}

var dismissCmd = &cobra.Command{
	Use:   "dismiss <id>",
	Short: "Dismiss a quest",
	Long:  `Dismisses a quest so it no longer counts toward the open set. A unique id prefix is enough.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runDismiss,
}

var breakdownCmd = &cobra.Command{
	Use:   "breakdown <id>",
	Short: "Split a quest into sub-questions",
	Args:  cobra.ExactArgs(1),
	RunE:  runBreakdown,
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all quests",
	Args:  cobra.NoArgs,
	RunE:  runClear,
}

var openCmd = &cobra.Command{
	Use:   "open <path>",
	Short: "Set the active document",
	Long:  `Makes the document at path (absolute, or relative to the vault) the active document.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runOpen,
}

func init() {
	listCmd.Flags().BoolVarP(&listAll, "all", "a", false, "include completed and dismissed quests")
	listCmd.Flags().StringVarP(&listDocument, "document", "d", "", "show quests for this document")
	listCmd.Flags().BoolVar(&listJSON, "json", false, "output quests as JSON")
	clearCmd.Flags().BoolVarP(&clearYes, "yes", "y", false, "skip the confirmation prompt")

	rootCmd.AddCommand(refreshCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(dismissCmd)
	rootCmd.AddCommand(breakdownCmd)
	rootCmd.AddCommand(clearCmd)
	rootCmd.AddCommand(openCmd)
}

func runRefresh(cmd *cobra.Command, args []string) error {
	if questService == nil {
		return errors.New("quest service not configured")
	}
	ctx := commandContext(cmd)

	if len(args) > 0 {
		id, err := openDocument(cmd, args[0])
		if err != nil {
			return err
		}
		cmd.Printf("Active document: %s\n", id)
	}

	report := questService.Refresh(ctx)
	return printReport(cmd, &report)
}

func printReport(cmd *cobra.Command, report *domain.RefreshReport) error {
	switch report.Outcome {
	case domain.OutcomeNotConfigured:
		cmd.Println("No LLM provider is configured.")
		cmd.Println("Run 'quest settings llm' to set one up.")
		return nil
	case domain.OutcomeNoDocument:
		cmd.Println("No active document.")
		cmd.Println("Run 'quest open <path>' or 'quest refresh <path>' to choose one.")
		return nil
	case domain.OutcomeFailed:
		return fmt.Errorf("refresh failed: %w", report.Err)
	}

	cmd.Printf("Refreshed %s\n", report.DocumentID)
	cmd.Printf("  Completed: %d\n", len(report.Completed))
	cmd.Printf("  Generated: %d\n", len(report.Generated))
	if report.Obsoleted > 0 {
		cmd.Printf("  Obsolete:  %d\n", report.Obsoleted)
	}
	return nil
}

func runList(cmd *cobra.Command, _ []string) error {
	if questService == nil {
		return errors.New("quest service not configured")
	}
	ctx := commandContext(cmd)

	filter := driving.ListFilter{ActiveOnly: !listAll, IncludeDismissed: listAll}
	switch {
	case listDocument != "":
		id, err := resolveDocument(listDocument)
		if err != nil {
			return err
		}
		filter.DocumentID = id
	case settingsService != nil:
		// Without --document, default to the active document if there is one.
		if settings, err := settingsService.Get(); err == nil {
			filter.DocumentID = settings.Vault.ActiveDocument
		}
	}

	quests, err := questService.List(ctx, filter)
	if err != nil {
		return fmt.Errorf("failed to list quests: %w", err)
	}

	if listJSON {
		return outputQuestsJSON(cmd, quests)
	}
	return outputQuestsTable(cmd, filter.DocumentID, quests)
}

func outputQuestsJSON(cmd *cobra.Command, quests []domain.Quest) error {
	if quests == nil {
		quests = []domain.Quest{}
	}
	data, err := json.MarshalIndent(quests, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal quests: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputQuestsTable(cmd *cobra.Command, documentID string, quests []domain.Quest) error {
	if len(quests) == 0 {
		cmd.Println("No quests found.")
		return nil
	}

	styles := newListStyles()
	children := map[string][]int{}
	var roots []int
	ids := make(map[string]bool, len(quests))
	for i := range quests {
		ids[quests[i].ID] = true
	}
	for i := range quests {
		if parent := quests[i].ParentID; parent != "" && ids[parent] {
			children[parent] = append(children[parent], i)
			continue
		}
		roots = append(roots, i)
	}

	lastDoc := ""
	for _, i := range roots {
		q := &quests[i]
		if documentID == "" && q.DocumentID != lastDoc {
			if lastDoc != "" {
				cmd.Println()
			}
			cmd.Println(styles.Title.Render(q.DocumentPath))
			lastDoc = q.DocumentID
		}
		cmd.Println(formatQuestLine(styles, q))
		for _, c := range children[q.ID] {
			cmd.Println(styles.Child.Render(formatQuestLine(styles, &quests[c])))
		}
	}
	return nil
}

func formatQuestLine(styles listStyles, q *domain.Quest) string {
	line := fmt.Sprintf("  %s %s %s", styles.marker(q), styles.ID.Render(shortID(q.ID)), styles.question(q))
	if q.IsObsolete && q.IsActive() {
		line += styles.ID.Render(" (" + q.ObsoleteReason + ")")
	}
	return line
}

func shortID(id string) string {
	if len(id) <= shortIDLen {
		return id
	}
	return id[:shortIDLen]
}

func runDismiss(cmd *cobra.Command, args []string) error {
	if questService == nil {
		return errors.New("quest service not configured")
	}
	ctx := commandContext(cmd)

	q, err := findQuest(cmd, args[0])
	if err != nil {
		return err
	}
	if err := questService.Dismiss(ctx, q.ID); err != nil {
		return fmt.Errorf("failed to dismiss quest: %w", err)
	}
	cmd.Printf("Dismissed: %s\n", q.Question)
	return nil
}

func runBreakdown(cmd *cobra.Command, args []string) error {
	if questService == nil {
		return errors.New("quest service not configured")
	}
	ctx := commandContext(cmd)

	q, err := findQuest(cmd, args[0])
	if err != nil {
		return err
	}

	children, err := questService.Breakdown(ctx, q.ID)
	if errors.Is(err, domain.ErrBreakdownUnsupported) {
		return errors.New("breakdown needs an LLM provider. Run 'quest settings llm' to set one up")
	}
	if err != nil {
		return fmt.Errorf("failed to break down quest: %w", err)
	}

	styles := newListStyles()
	cmd.Println(q.Question)
	for i := range children {
		cmd.Println(styles.Child.Render(formatQuestLine(styles, &children[i])))
	}
	return nil
}

func runClear(cmd *cobra.Command, _ []string) error {
	if questService == nil {
		return errors.New("quest service not configured")
	}
	ctx := commandContext(cmd)

	if !clearYes {
		quests, err := questService.List(ctx, driving.ListFilter{IncludeDismissed: true})
		if err != nil {
			return fmt.Errorf("failed to list quests: %w", err)
		}
		if len(quests) == 0 {
			cmd.Println("No quests to clear.")
			return nil
		}
		cmd.Printf("Delete all %d quests? This cannot be undone. [y/N]: ", len(quests))
		answer := strings.ToLower(readLine(bufio.NewReader(cmd.InOrStdin())))
		if answer != "y" && answer != "yes" {
			cmd.Println("Cancelled.")
			return nil
		}
	}

	if err := questService.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear quests: %w", err)
	}
	cmd.Println("All quests deleted.")
	return nil
}

func runOpen(cmd *cobra.Command, args []string) error {
	if questService == nil {
		return errors.New("quest service not configured")
	}

	id, err := openDocument(cmd, args[0])
	if err != nil {
		return err
	}
	cmd.Printf("Active document: %s\n", id)
	cmd.Println("Run 'quest refresh' to update its quests.")
	return nil
}

// openDocument makes path the active document and returns its id.
func openDocument(cmd *cobra.Command, path string) (string, error) {
	id, err := resolveDocument(path)
	if err != nil {
		return "", err
	}
	if err := questService.SetActiveDocument(commandContext(cmd), id); err != nil {
		return "", fmt.Errorf("failed to open %s: %w", path, err)
	}
	return id, nil
}

// resolveDocument converts a path to a document id.
func resolveDocument(path string) (string, error) {
	if documents == nil {
		return "", errors.New("no vault configured. Pass --vault or set vault.path in the config file")
	}
	id, err := documents.DocumentID(path)
	if err != nil {
		return "", fmt.Errorf("invalid document %s: %w", path, err)
	}
	return id, nil
}

// findQuest looks a quest up by full id or unique id prefix.
func findQuest(cmd *cobra.Command, ref string) (*domain.Quest, error) {
	quests, err := questService.List(commandContext(cmd), driving.ListFilter{IncludeDismissed: true})
	if err != nil {
		return nil, fmt.Errorf("failed to list quests: %w", err)
	}

	var match *domain.Quest
	for i := range quests {
		if quests[i].ID == ref {
			return &quests[i], nil
		}
		if strings.HasPrefix(quests[i].ID, ref) {
			if match != nil {
				return nil, fmt.Errorf("quest id %q is ambiguous: %w", ref, domain.ErrInvalidInput)
			}
			match = &quests[i]
		}
	}
	if match == nil {
		return nil, fmt.Errorf("quest %s: %w", ref, domain.ErrNotFound)
	}
	return match, nil
}
