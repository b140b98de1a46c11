package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tferrand/sleeve/internal/acquire"
	"github.com/tferrand/sleeve/internal/library"
)

func init() {
	cmdRoot.AddCommand(cmdFetch())
}

func cmdFetch() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "fetch",
		Short:        "Fetch artwork (and optionally lyrics) for the whole library",
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			withLyrics, _ := cmd.Flags().GetBool("lyrics")
			missingOnly, _ := cmd.Flags().GetBool("missing")

			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			items, err := a.lib.All()
			if err != nil {
				return fmt.Errorf("list library: %w", err)
			}
			if missingOnly {
				items = withoutArtwork(a, items)
			}
			if len(items) == 0 {
				fmt.Println("nothing to fetch")
				return nil
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			sub := a.manager.Subscribe()
			defer a.manager.Unsubscribe(sub)
			go printEvents(sub)

			result, err := a.manager.AcquireAll(ctx, items, withLyrics)
			if err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			if errors.Is(err, context.Canceled) {
				fmt.Println("interrupted")
			}

			fmt.Printf("fetched %d of %d items (%d failed)\n",
				result.Succeeded, len(items), result.Failed)
			return nil
		},
	}
	cmd.Flags().Bool("lyrics", false, "also fetch lyrics for each item")
	cmd.Flags().Bool("missing", false, "only fetch items without cached artwork")
	return cmd
}

func withoutArtwork(a *app, items []library.Item) []library.Item {
	var missing []library.Item
	for _, item := range items {
		if !a.manager.HasArtwork(item.ID) {
			missing = append(missing, item)
		}
	}
	return missing
}

// printEvents streams acquisition progress to stdout until the
// subscription closes.
func printEvents(sub *acquire.Subscription) {
	for {
		select {
		case e := <-sub.Events:
			switch e.Stage {
			case acquire.StageFailed:
				fmt.Printf("  %s %s: failed: %v\n", e.Kind, e.ItemID, e.Err)
			case acquire.StageStored:
				fmt.Printf("  %s %s: stored from %s\n", e.Kind, e.ItemID, e.Source)
			}
		case <-sub.Done:
			return
		}
	}
}
