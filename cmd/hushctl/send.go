package main

import (
	"fmt"
	"strings"

	"github.com/godbus/dbus/v5"
	"github.com/spf13/cobra"

	"github.com/hushd/hush/internal/model"
)

var sendOpts struct {
	appName  string
	icon     string
	urgency  string
	timeout  int32
	replaces uint32
	actions  []string
}

var sendCmd = &cobra.Command{
	Use:   "send <summary> [body]",
	Short: "Send a notification through the daemon",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		summary := args[0]
		body := ""
		if len(args) == 2 {
			body = args[1]
		}

		urgency, err := parseUrgency(sendOpts.urgency)
		if err != nil {
			return err
		}

		actions := make([]string, 0, len(sendOpts.actions)*2)
		for _, pair := range sendOpts.actions {
			key, label, found := strings.Cut(pair, "=")
			if !found || key == "" {
				return fmt.Errorf("invalid action %q (want key=label)", pair)
			}
			actions = append(actions, key, label)
		}

		proxy, err := notificationsProxy()
		if err != nil {
			return err
		}
		defer proxy.Close()

		hints := map[string]dbus.Variant{
			"urgency": dbus.MakeVariant(byte(urgency)),
		}
		results, err := proxy.Invoke("Notify",
			sendOpts.appName, sendOpts.replaces, sendOpts.icon,
			summary, body, actions, hints, sendOpts.timeout)
		if err != nil {
			return fmt.Errorf("failed to send notification: %w", err)
		}

		if len(results) == 1 {
			if id, ok := results[0].(uint32); ok {
				fmt.Println(id)
			}
		}
		return nil
	},
}

func parseUrgency(name string) (int, error) {
	for level, levelName := range model.UrgencyNames {
		if levelName == name {
			return level, nil
		}
	}
	return 0, fmt.Errorf("invalid urgency %q (want low, normal or critical)", name)
}

func init() {
	sendCmd.Flags().StringVarP(&sendOpts.appName, "app", "a", "hushctl", "Application name")
	sendCmd.Flags().StringVarP(&sendOpts.icon, "icon", "i", "", "Icon name or path")
	sendCmd.Flags().StringVarP(&sendOpts.urgency, "urgency", "u", "normal", "Urgency (low, normal, critical)")
	sendCmd.Flags().Int32VarP(&sendOpts.timeout, "timeout", "t", -1, "Expire timeout in milliseconds (-1 = server default)")
	sendCmd.Flags().Uint32VarP(&sendOpts.replaces, "replaces", "r", 0, "Id of a notification to replace")
	sendCmd.Flags().StringArrayVar(&sendOpts.actions, "action", nil, "Action as key=label (repeatable)")
	rootCmd.AddCommand(sendCmd)
}
