package main

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"

	"markestedt/dictbar/config"
	"markestedt/dictbar/hotkey"
	"markestedt/dictbar/platform"
	"markestedt/dictbar/storage"
	"markestedt/dictbar/systray"
	"markestedt/dictbar/web"
)

// Agent coordinates the hotkey monitor, the popover shell, the web server
// and the tray.
type Agent struct {
	cfg        *config.Config
	configPath string
	db         *storage.DB
	bus        *hotkey.Bus
	monitor    *hotkey.Monitor
	shell      *Shell
	server     *web.Server
	tray       *systray.SystrayManager
}

// NewAgent creates a new agent instance
func NewAgent(cfg *config.Config, configPath string) (*Agent, error) {
	configDir, err := config.Dir()
	if err != nil {
		return nil, err
	}

	db, err := storage.Open(configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}

	keys, err := platform.NewKeyTap(cfg.Hotkey.Backend)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create key tap: %w", err)
	}

	var clicks hotkey.ClickTap
	if cfg.Popover.DismissOnClick {
		clicks = platform.NewClickTap()
	}

	bus := hotkey.NewBus()
	monitor := hotkey.NewMonitor(bus, keys, clicks)
	shell := NewShell(bus, monitor, db, cfg.Dictionaries, systray.OpenBrowser)
	server := web.NewServer(shell, db, cfg.Web.Port)
	shell.AttachView(server)

	tray := systray.NewSystrayManager(systray.Callbacks{
		OnOpen: shell.TogglePopover,
		OnPreferences: func() {
			if err := shell.BeginCapture(); err != nil {
				slog.Error("Failed to open preferences", "error", err)
			}
		},
	}, nil)
	shell.AttachLabeler(tray)

	return &Agent{
		cfg:        cfg,
		configPath: configPath,
		db:         db,
		bus:        bus,
		monitor:    monitor,
		shell:      shell,
		server:     server,
		tray:       tray,
	}, nil
}

// Run starts everything and blocks until ctx is done or the user quits
// from the tray.
func (a *Agent) Run(ctx context.Context) error {
	defer a.db.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	a.shell.Start(ctx)
	defer a.shell.Stop()

	if a.cfg.Hotkey.Backend != platform.BackendCarbon && runtime.GOOS == "darwin" {
		slog.Info("The hook backend needs Accessibility permission; grant it in System Settings if the shortcut does nothing")
	}

	if a.cfg.Popover.DismissOnClick {
		if err := a.monitor.WatchClicks(ctx); err != nil {
			slog.Warn("Click dismissal unavailable", "error", err)
		}
	}

	if err := a.server.Start(ctx); err != nil {
		return fmt.Errorf("failed to start web server: %w", err)
	}
	defer func() {
		if err := a.server.Stop(); err != nil {
			slog.Warn("Web server shutdown", "error", err)
		}
	}()

	if a.configPath != "" {
		go func() {
			err := config.Watch(ctx, a.configPath, func(cfg *config.Config) {
				if cfg.Hotkey.Backend != a.cfg.Hotkey.Backend || cfg.Web.Port != a.cfg.Web.Port {
					slog.Warn("Hotkey backend and web port changes apply after restart")
				}
				a.shell.ApplyConfig(cfg)
			})
			if err != nil {
				slog.Error("Config watcher stopped", "error", err)
			}
		}()
	}

	trayDone := make(chan struct{})
	go func() {
		defer close(trayDone)
		platform.CallOnMainThread(a.tray.Run)
	}()

	combo, registered := a.shell.Hotkey()
	slog.Info("dictbar started", "hotkey", combo.String(), "registered", registered, "url", a.server.URL())

	select {
	case <-ctx.Done():
		a.tray.Stop()
	case <-a.tray.WaitForQuit():
	}
	<-trayDone
	return nil
}
