// Package main provides the CLI entrypoint for hushctl.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/hushd/hush/internal/daemon"
	bus "github.com/hushd/hush/internal/dbus"
)

// Build-time variables (set via ldflags)
var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
)

var (
	logger     *slog.Logger
	globalOpts struct {
		verbose   bool
		statePath string
	}
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "hushctl",
	Short: "Control a running hushd notification daemon",
	Long: `hushctl talks to a running hushd daemon over the message bus.

It can inspect daemon state, toggle do-not-disturb, clear notifications,
invoke notification actions, send test notifications, and browse the
persisted notification history.`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildTime),
	SilenceUsage:  true,
	SilenceErrors: false,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogger()
	},
}

func setupLogger() {
	level := slog.LevelWarn
	if globalOpts.verbose {
		level = slog.LevelDebug
	}
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
}

// controlProxy resolves the daemon's control endpoint.
func controlProxy() (*bus.Proxy, error) {
	proxy, err := bus.NewProxy(nil, daemon.ControlBusName, daemon.ControlPath, daemon.ControlInterface)
	if err != nil {
		return nil, fmt.Errorf("connect to hushd: %w (is hushd running?)", err)
	}
	return proxy, nil
}

// notificationsProxy resolves the freedesktop notification endpoint.
func notificationsProxy() (*bus.Proxy, error) {
	proxy, err := bus.NewProxy(nil, bus.NotificationsBusName, bus.NotificationsPath, bus.NotificationsInterface)
	if err != nil {
		return nil, fmt.Errorf("connect to notification service: %w", err)
	}
	return proxy, nil
}

// Execute adds all child commands to the root command and runs it.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&globalOpts.verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&globalOpts.statePath, "state", "", "Path to the notification state file (default: XDG cache)")
}
