// Package main is the entry point for the imepopd input method overlay daemon.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/diamondburned/gotk4-adwaita/pkg/adw"
	"github.com/diamondburned/gotk4/pkg/glib/v2"
	godbus "github.com/godbus/dbus/v5"
	"golang.org/x/sync/errgroup"

	"github.com/jmylchreest/imepop/internal/config"
	"github.com/jmylchreest/imepop/internal/daemon"
	"github.com/jmylchreest/imepop/internal/dbus"
	"github.com/jmylchreest/imepop/internal/display"
	"github.com/jmylchreest/imepop/internal/overlay"
	"github.com/jmylchreest/imepop/internal/overlay/gtkshell"
	"github.com/jmylchreest/imepop/internal/render"
)

const (
	appID   = "io.github.jmylchreest.imepopd"
	appName = "imepopd"
)

var (
	// Build-time variables
	version = "dev"
)

func main() {
	configPath := flag.String("config", "", "Path to config file (default: ~/.config/imepop/config.toml)")
	debug := flag.Bool("debug", false, "Enable debug logging")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println("imepopd version", version)
		os.Exit(0)
	}

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	os.Exit(run(*configPath, logger))
}

// run starts the GTK application and returns the process exit status.
func run(configPath string, logger *slog.Logger) int {
	logger.Info("starting imepopd", "version", version)

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		return 1
	}

	conn, err := godbus.SessionBus()
	if err != nil {
		logger.Error("failed to connect to session bus", "error", err)
		return 1
	}

	app := adw.NewApplication(appID, 0)

	var (
		running  atomic.Bool
		exitCode atomic.Int32
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case sig := <-sigCh:
			logger.Info("received signal, shutting down", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	app.ConnectActivate(func() {
		if running.Swap(true) {
			logger.Warn("application already running")
			return
		}

		// The overlay has no regular windows, so hold the application open
		// until the daemon goroutines finish.
		app.Hold()

		// The GTK backend marshals onto the main loop and waits, so the
		// daemon must not run on it.
		go func() {
			if err := serve(ctx, app, cfg, configPath, conn, logger); err != nil {
				logger.Error("imepopd failed", "error", err)
				exitCode.Store(1)
			}
			glib.IdleAdd(func() {
				app.Release()
				app.Quit()
			})
		}()
	})

	app.ConnectShutdown(func() {
		logger.Info("application shutting down")
		cancel()
	})

	// GApplication would reject our flags, so only pass the program name.
	status := app.Run(os.Args[:1])
	cancel()

	if status != 0 {
		logger.Error("application exited with error", "status", status)
		return status
	}

	logger.Info("imepopd stopped")
	return int(exitCode.Load())
}

// serve builds the overlay pipeline and runs it until ctx is done.
func serve(ctx context.Context, app *adw.Application, cfg *config.Config, configPath string, conn *godbus.Conn, logger *slog.Logger) error {
	backend := gtkshell.New(&app.Application, logger.With("component", "gtkshell"))
	session, err := overlay.Open(ctx, backend, overlay.Options{
		Namespace:        cfg.Overlay.Namespace,
		ConfigureTimeout: cfg.Session.ConfigureTimeout.Duration(),
		Logger:           logger.With("component", "overlay"),
	})
	if err != nil {
		return err
	}
	defer func() { _ = session.Close() }()

	worker, err := display.NewWorker(display.Options{
		Config:     cfg,
		Session:    session,
		Rasterizer: render.NewGGRasterizer(nil, logger.With("component", "render")),
		Logger:     logger.With("component", "display"),
		OnStateChange: func(s display.State) {
			logger.Debug("display state", "state", s)
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create display worker: %w", err)
	}

	requests := daemon.NewRequestQueue()
	tracker := daemon.NewTracker(cfg, requests, logger.With("component", "tracker"))

	fcitx := dbus.NewFcitx5(conn, cfg.Watcher.DBusTimeout.Duration(), logger.With("component", "fcitx5"))
	poller := daemon.NewPoller(fcitx, tracker, cfg.Watcher.PollInterval.Duration(), logger.With("component", "poller"))

	notifier := daemon.NewInternalNotifier(logger)
	notifier.SetEnabled(cfg.Notify.Enabled)
	notifier.SetNotifyHandler(func(ctx context.Context, n *dbus.Notification) (uint32, error) {
		return dbus.SendNotification(ctx, conn, n)
	})

	control := dbus.NewControlServer(logger.With("component", "control"))
	control.SetServerInfo(dbus.ServerInfo{
		Name:    appName,
		Vendor:  "imepop",
		Version: version,
	})
	control.SetShowHandler(requests.Send)
	control.SetInputMethodHandler(tracker.Force)
	if err := control.Start(conn); err != nil {
		logger.Warn("failed to start D-Bus control server", "error", err)
	} else {
		defer func() { _ = control.Stop() }()
	}

	configWatcher, err := daemon.NewConfigWatcher(configPath, logger)
	if err != nil {
		logger.Warn("failed to create config watcher", "error", err)
	} else {
		configWatcher.SetReloadCallback(func(newConfig *config.Config) {
			worker.UpdateConfig(newConfig)
			tracker.UpdateConfig(newConfig)
			poller.SetInterval(newConfig.Watcher.PollInterval.Duration())
			notifier.SetEnabled(newConfig.Notify.Enabled)
			notifier.NotifyConfigReloaded()
		})
		configWatcher.SetErrorCallback(func(err error) {
			notifier.NotifyConfigError(err)
		})
		if err := configWatcher.Start(ctx, cfg); err != nil {
			logger.Warn("failed to start config watcher", "error", err)
		} else {
			defer configWatcher.Stop()
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return worker.Run(gctx, requests)
	})
	g.Go(func() error {
		return tracker.Run(gctx)
	})
	g.Go(func() error {
		return poller.Run(gctx)
	})
	g.Go(func() error {
		// Without signals the poller still drives the tracker.
		if err := daemon.WatchSignals(gctx, fcitx, tracker, logger); err != nil {
			logger.Warn("fcitx5 signal watch stopped", "error", err)
		}
		return nil
	})

	logger.Info("imepopd ready", "dbus_interface", dbus.DBusInterface)
	notifier.NotifyStartup(version)

	return g.Wait()
}
