// Package cli implements the quest command line.
package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/quest-cli/internal/core/ports/driving"
	"github.com/custodia-labs/quest-cli/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// skipBootstrap marks commands that run without services.
const skipBootstrap = "skip-bootstrap"

// Global flag values.
var (
	verbose  bool
	vaultDir string
	dataDir  string
)

// Services wired by the composition root. Tests replace them directly.
var (
	questService    driving.QuestService
	settingsService driving.SettingsService
	scheduler       driving.Scheduler
	documents       DocumentResolver
	newWatcher      WatcherFactory
	closeServices   func()
)

// DocumentResolver converts a user-supplied path to a vault document id.
type DocumentResolver interface {
	DocumentID(path string) (string, error)
}

// Watcher blocks until ctx is cancelled, refreshing quests on edits.
type Watcher interface {
	Run(ctx context.Context) error
}

// WatcherFactory builds a vault watcher. follow makes the most recently
// edited note the active document.
type WatcherFactory func(follow bool) (Watcher, error)

// Options are the global flags handed to the bootstrap function.
type Options struct {
	Verbose  bool
	VaultDir string
	DataDir  string
}

// Services is everything a command may need. Nil fields are reported as
// "not configured" by the commands that use them.
type Services struct {
	Quests     driving.QuestService
	Settings   driving.SettingsService
	Scheduler  driving.Scheduler
	Documents  DocumentResolver
	NewWatcher WatcherFactory

	// Close releases resources after the command finishes.
	Close func()
}

// Bootstrap builds services once flags are parsed.
type Bootstrap func(opts Options) (*Services, error)

var bootstrap Bootstrap

var rootCmd = &cobra.Command{
	Use:   "quest",
	Short: "Research questions for the note you are writing",
	Long: `quest keeps a rolling set of AI-generated research questions for the
document you are working on in your notes vault.

As the document evolves, answered questions are marked complete, questions
whose context has changed are flagged obsolete, and new ones are generated
to keep five open questions in front of you.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: teardown,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&vaultDir, "vault", "", "notes vault directory (overrides vault.path)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "data directory (default ~/.quest/data)")
}

// Execute runs the root command. boot is called after flag parsing for
// every command that needs services.
func Execute(boot Bootstrap) error {
	bootstrap = boot

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return rootCmd.ExecuteContext(ctx)
}

func setup(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)

	if bootstrap == nil || cmd.Annotations[skipBootstrap] == "true" {
		return nil
	}

	services, err := bootstrap(Options{Verbose: verbose, VaultDir: vaultDir, DataDir: dataDir})
	if err != nil {
		return err
	}
	if services == nil {
		return errors.New("bootstrap returned no services")
	}

	questService = services.Quests
	settingsService = services.Settings
	scheduler = services.Scheduler
	documents = services.Documents
	newWatcher = services.NewWatcher
	closeServices = services.Close
	return nil
}

func teardown(_ *cobra.Command, _ []string) {
	if closeServices != nil {
		closeServices()
		closeServices = nil
	}
}

// commandContext returns the command's context, falling back to Background
// when the command is executed without one (as in tests).
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
