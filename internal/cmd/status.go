package cmd

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func init() {
	cmdRoot.AddCommand(cmdStatus())
}

func cmdStatus() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "status",
		Short:        "Show library and cache coverage",
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			items, err := a.lib.All()
			if err != nil {
				return fmt.Errorf("list library: %w", err)
			}

			var withLyrics int
			for _, item := range items {
				if a.manager.HasLyrics(item.ID) {
					withLyrics++
				}
			}

			count, totalBytes := a.assets.Stats()

			fmt.Printf("library:  %d items (%s)\n", len(items), a.cfg.DatabasePath)
			fmt.Printf("artwork:  %d cached, %s on disk\n", count, humanize.Bytes(uint64(totalBytes)))
			fmt.Printf("lyrics:   %d of %d items\n", withLyrics, len(items))
			fmt.Printf("cache:    %s\n", a.cfg.CacheDir)
			return nil
		},
	}
	return cmd
}
