package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var dndCmd = &cobra.Command{
	Use:       "dnd {on|off|toggle}",
	Short:     "Enable, disable or toggle do-not-disturb mode",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"on", "off", "toggle"},
	RunE: func(cmd *cobra.Command, args []string) error {
		proxy, err := controlProxy()
		if err != nil {
			return err
		}
		defer proxy.Close()

		var enable bool
		switch args[0] {
		case "on":
			enable = true
		case "off":
			enable = false
		case "toggle":
			value, ok := proxy.ReadProperty("DoNotDisturb")
			if !ok {
				return fmt.Errorf("failed to read DoNotDisturb property")
			}
			current, _ := value.Value().(bool)
			enable = !current
		default:
			return fmt.Errorf("invalid argument %q (want on, off or toggle)", args[0])
		}

		if _, err := proxy.Invoke("SetDoNotDisturb", enable); err != nil {
			return fmt.Errorf("failed to set do-not-disturb: %w", err)
		}
		if enable {
			fmt.Println("do-not-disturb enabled")
		} else {
			fmt.Println("do-not-disturb disabled")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(dndCmd)
}
