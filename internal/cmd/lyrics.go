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
	"github.com/tferrand/sleeve/internal/lyrics"
)

func init() {
	cmdRoot.AddCommand(cmdLyrics())
}

func cmdLyrics() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "lyrics <item-id>",
		Short:        "Fetch and print lyrics for a single library item",
		SilenceUsage: true,
		Args:         cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			plain, _ := cmd.Flags().GetBool("plain")

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

			candidate, err := a.manager.AcquireLyrics(ctx, *item)
			if errors.Is(err, lyrics.ErrNotFound) {
				fmt.Printf("no lyrics found for %s - %s\n", item.Artist, item.Title)
				return nil
			}
			if err != nil {
				return fmt.Errorf("acquire lyrics: %w", err)
			}

			text := candidate.Text
			if plain {
				text = lyrics.Plain(text)
			}

			fmt.Printf("%s - %s (from %s)\n\n", item.Artist, item.Title, candidate.Source)
			fmt.Println(text)
			return nil
		},
	}
	cmd.Flags().Bool("plain", false, "strip LRC timestamps from synced lyrics")
	return cmd
}
