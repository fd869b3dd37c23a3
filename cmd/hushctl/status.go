package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the state of the running daemon",
	RunE: func(cmd *cobra.Command, args []string) error {
		proxy, err := controlProxy()
		if err != nil {
			return err
		}
		defer proxy.Close()

		rows := []struct {
			label    string
			property string
		}{
			{"Do not disturb", "DoNotDisturb"},
			{"Popup timeout (ms)", "PopupTimeout"},
			{"Max popups", "MaxPopupsCount"},
			{"Notifications", "NotificationCount"},
			{"Popups", "PopupCount"},
		}
		for _, row := range rows {
			value, ok := proxy.ReadProperty(row.property)
			if !ok {
				return fmt.Errorf("failed to read property %s", row.property)
			}
			fmt.Printf("%-20s %v\n", row.label+":", value.Value())
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
