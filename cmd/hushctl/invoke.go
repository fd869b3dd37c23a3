package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var invokeCmd = &cobra.Command{
	Use:   "invoke <id> <action>",
	Short: "Invoke an action on a notification",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseUint(args[0], 10, 32)
		if err != nil {
			return fmt.Errorf("invalid notification id %q: %w", args[0], err)
		}

		proxy, err := controlProxy()
		if err != nil {
			return err
		}
		defer proxy.Close()

		if _, err := proxy.Invoke("InvokeAction", uint32(id), args[1]); err != nil {
			return fmt.Errorf("failed to invoke action: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(invokeCmd)
}
