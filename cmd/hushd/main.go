// Package main is the entry point for the hushd notification daemon.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hushd/hush/internal/daemon"
	bus "github.com/hushd/hush/internal/dbus"
	"github.com/hushd/hush/internal/options"
	"github.com/hushd/hush/internal/store"
)

// Build-time variables (set via ldflags)
var version = "dev"

func main() {
	showVersion := flag.Bool("version", false, "Show version and exit")
	debug := flag.Bool("debug", false, "Enable debug logging")
	statePath := flag.String("state", "", "Path to the notification state file (default: XDG cache)")
	optionsPath := flag.String("options", "", "Path to the options file (default: XDG config)")
	flag.Parse()

	if *showVersion {
		fmt.Println("hushd version", version)
		os.Exit(0)
	}

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	logger.Info("starting hushd", "version", version)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	optsPath := *optionsPath
	if optsPath == "" {
		optsPath = options.DefaultPath()
	}
	opts, err := options.Open(optsPath, logger)
	if err != nil {
		logger.Error("failed to open options store", "error", err)
		os.Exit(1)
	}
	if err := opts.Watch(ctx); err != nil {
		logger.Warn("failed to watch options file", "error", err)
	}

	path := *statePath
	if path == "" {
		path = store.StatePath()
	}
	files, err := store.NewFileStore(path, logger)
	if err != nil {
		logger.Error("failed to create notification store", "error", err)
		os.Exit(1)
	}

	loop := daemon.NewLoop()
	workers := daemon.NewPool(2)

	info := bus.DefaultServerInfo()
	info.Version = version

	svc, err := daemon.NewService(daemon.Params{
		Logger:  logger,
		Loop:    loop,
		Workers: workers,
		Options: opts,
		Files:   files,
		Info:    info,
	})
	if err != nil {
		logger.Error("failed to create notification service", "error", err)
		os.Exit(1)
	}

	notifications := daemon.NewNotificationsEndpoint(svc)
	control := daemon.NewControlEndpoint(svc)

	if err := svc.Restore(); err != nil {
		logger.Error("failed to restore notification state", "error", err)
		os.Exit(1)
	}

	go loop.Run(ctx)

	// A name conflict is not fatal: log it and keep running without the
	// protocol surface rather than fighting the other daemon.
	if err := notifications.Start(nil); err != nil {
		if errors.Is(err, bus.ErrNameTaken) {
			logger.Error("another notification daemon is already running; " +
				"remove other daemons (e.g. dunst, mako, swaync) to let hushd own the service")
		} else {
			logger.Error("failed to start notifications endpoint", "error", err)
			os.Exit(1)
		}
	}
	if err := control.Start(nil); err != nil {
		logger.Warn("failed to start control endpoint", "error", err)
	}

	logger.Info("hushd ready",
		"interface", bus.NotificationsInterface,
		"state", files.Path(),
		"notifications", svc.NotificationCount())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.Info("received signal, shutting down", "signal", sig)

	if err := notifications.Stop(); err != nil {
		logger.Warn("error stopping notifications endpoint", "error", err)
	}
	if err := control.Stop(); err != nil {
		logger.Warn("error stopping control endpoint", "error", err)
	}
	cancel()
	workers.Close()

	logger.Info("hushd stopped")
}
