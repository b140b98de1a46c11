package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmdRoot.AddCommand(cmdCleanup())
}

func cmdCleanup() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "cleanup",
		Short:        "Remove cached artwork and lyrics for items no longer in the library",
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			live, err := a.lib.LiveIDs()
			if err != nil {
				return fmt.Errorf("list library ids: %w", err)
			}

			artworkRemoved, lyricsRemoved, err := a.manager.CleanupUnused(live)
			if err != nil {
				return fmt.Errorf("cleanup: %w", err)
			}

			fmt.Printf("removed %d artwork and %d lyrics entries\n", artworkRemoved, lyricsRemoved)
			return nil
		},
	}
	return cmd
}
