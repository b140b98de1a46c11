package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmdRoot.AddCommand(cmdScan())
}

func cmdScan() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "scan [path...]",
		Short:        "Scan music directories into the library",
		Long:         "Scan walks the given directories (or the configured library sources) and upserts every audio file into the library database. Rescanning an unchanged path is a no-op for ids, favorites, and artwork references.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			sources := args
			if len(sources) == 0 {
				sources = a.cfg.LibrarySources
			}
			if len(sources) == 0 {
				return errors.New("no directories to scan: pass paths or set library_sources in config")
			}

			stats, err := a.lib.Scan(sources)
			if err != nil {
				return fmt.Errorf("scan: %w", err)
			}

			fmt.Printf("scanned %d files: %d added or updated, %d skipped\n",
				stats.Scanned, stats.Added, stats.Skipped)
			return nil
		},
	}
	return cmd
}
