package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tferrand/sleeve/internal/library"
)

func init() {
	cmdRoot.AddCommand(cmdArtwork())
}

func cmdArtwork() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "artwork <item-id>",
		Short:        "Fetch artwork for a single library item",
		SilenceUsage: true,
		Args:         cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			item, err := a.lib.Get(args[0])
			if errors.Is(err, library.ErrNotFound) {
				return fmt.Errorf("item %s not found", args[0])
			}
			if err != nil {
				return fmt.Errorf("lookup item: %w", err)
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			meta, err := a.manager.AcquireArtwork(ctx, *item)
			if err != nil {
				return fmt.Errorf("acquire artwork: %w", err)
			}

			path, _ := a.assets.Path(item.ID, false)
			fmt.Printf("%s - %s: %s (%dx%d, from %s)\n",
				item.Artist, item.Album, path, meta.Width, meta.Height, meta.Source)
			return nil
		},
	}
	return cmd
}
