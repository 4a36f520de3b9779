package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var watchFollow bool

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Refresh quests as you write",
	Long: `Watches the vault and refreshes quests whenever the active document is
saved. The scheduler also refreshes on the configured interval, so quests stay
current while you are reading rather than writing.

With --follow, saving any note makes it the active document.

Press Ctrl+C to stop.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().BoolVarP(&watchFollow, "follow", "f", false, "make the last edited note the active document")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, _ []string) error {
	if questService == nil {
		return errors.New("quest service not configured")
	}
	if newWatcher == nil {
		return errors.New("no vault configured. Pass --vault or set vault.path in the config file")
	}

	watcher, err := newWatcher(watchFollow)
	if err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}

	ctx := commandContext(cmd)

	// Catch up on edits made while nothing was watching.
	report := questService.Refresh(ctx)
	if err := printReport(cmd, &report); err != nil {
		cmd.PrintErrf("Warning: %v\n", err)
	}
	cmd.Println("Watching for changes. Press Ctrl+C to stop.")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		// The scheduler has nothing to do once the watcher is gone.
		defer cancel()
		return watcher.Run(gctx)
	})
	if scheduler != nil {
		g.Go(func() error {
			return scheduler.Start(gctx)
		})
		g.Go(func() error {
			<-gctx.Done()
			return scheduler.Stop()
		})
	}

	err = g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
