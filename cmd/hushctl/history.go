package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hushd/hush/internal/output"
	"github.com/hushd/hush/internal/store"
)

var historyOpts struct {
	format string
	limit  int
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show persisted notifications, newest first",
	Long: `history reads the notification state file directly, so it works
whether or not hushd is running.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := globalOpts.statePath
		if path == "" {
			path = store.StatePath()
		}
		files, err := store.NewFileStore(path, logger)
		if err != nil {
			return fmt.Errorf("failed to open notification store: %w", err)
		}
		_, records, err := files.Load()
		if err != nil {
			return fmt.Errorf("failed to load notifications: %w", err)
		}

		// Stored oldest first, shown newest first.
		for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
			records[i], records[j] = records[j], records[i]
		}
		if historyOpts.limit > 0 && len(records) > historyOpts.limit {
			records = records[:historyOpts.limit]
		}

		formatter, err := output.NewFormatter(output.FormatType(historyOpts.format))
		if err != nil {
			return err
		}
		return formatter.Format(os.Stdout, records)
	},
}

func init() {
	historyCmd.Flags().StringVarP(&historyOpts.format, "format", "f", "plain", "Output format (plain, json, yaml)")
	historyCmd.Flags().IntVarP(&historyOpts.limit, "limit", "n", 0, "Show at most this many notifications (0 = all)")
	rootCmd.AddCommand(historyCmd)
}
