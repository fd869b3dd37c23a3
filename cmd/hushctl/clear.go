package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var clearCmd = &cobra.Command{
	Use:   "clear [id]",
	Short: "Close all notifications, or a single one by id",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 1 {
			id, err := strconv.ParseUint(args[0], 10, 32)
			if err != nil {
				return fmt.Errorf("invalid notification id %q: %w", args[0], err)
			}
			proxy, err := notificationsProxy()
			if err != nil {
				return err
			}
			defer proxy.Close()
			if _, err := proxy.Invoke("CloseNotification", uint32(id)); err != nil {
				return fmt.Errorf("failed to close notification %d: %w", id, err)
			}
			return nil
		}

		proxy, err := controlProxy()
		if err != nil {
			return err
		}
		defer proxy.Close()
		if _, err := proxy.Invoke("ClearAll"); err != nil {
			return fmt.Errorf("failed to clear notifications: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(clearCmd)
}
