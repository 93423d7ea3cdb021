package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/diamondburned/gotk4-adwaita/pkg/adw"
	"github.com/diamondburned/gotk4/pkg/glib/v2"
	"github.com/spf13/cobra"

	"github.com/jmylchreest/appdrawer/internal/audio"
	"github.com/jmylchreest/appdrawer/internal/config"
	"github.com/jmylchreest/appdrawer/internal/daemon"
	"github.com/jmylchreest/appdrawer/internal/dbus"
	"github.com/jmylchreest/appdrawer/internal/desktop"
	"github.com/jmylchreest/appdrawer/internal/display"
	"github.com/jmylchreest/appdrawer/internal/grid"
	"github.com/jmylchreest/appdrawer/internal/launch"
	"github.com/jmylchreest/appdrawer/internal/loop"
	"github.com/jmylchreest/appdrawer/internal/model"
	"github.com/jmylchreest/appdrawer/internal/raster"
	"github.com/jmylchreest/appdrawer/internal/store"
	"github.com/jmylchreest/appdrawer/internal/theme"
)

const (
	appID     = "io.github.jmylchreest.appdrawer"
	pixmapDir = "/usr/share/pixmaps"
)

// drawerApp holds everything the GTK callbacks share.
type drawerApp struct {
	app    *adw.Application
	ctx    context.Context
	cancel context.CancelFunc
	cfg    *config.Config
	show   bool

	loop          *loop.Loop
	window        *display.Window
	drawer        *daemon.Drawer
	themes        *theme.Loader
	control       *dbus.ControlServer
	monitor       *dbus.InventoryMonitor
	inventory     *desktop.Watcher
	configWatcher *config.Watcher
	feedback      *audio.Feedback
	launcher      *launch.Launcher
	notifier      *daemon.Notifier
	history       *store.History
}

func runDrawer(cmd *cobra.Command, args []string) error {
	hidden, _ := cmd.Flags().GetBool("hidden")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	d := &drawerApp{
		app:    adw.NewApplication(appID, 0),
		ctx:    ctx,
		cancel: cancel,
		cfg:    cfg,
		show:   !hidden,
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case sig := <-sigCh:
			logger.Info("received signal, shutting down", "signal", sig)
			glib.IdleAdd(d.app.Quit)
		case <-ctx.Done():
		}
	}()

	var startErr error
	d.app.ConnectActivate(func() {
		if d.loop != nil {
			// A second activation from the desktop shows the drawer.
			d.loop.Post(d.drawer.Show)
			return
		}
		if err := d.start(); err != nil {
			startErr = err
			d.app.Quit()
		}
	})
	d.app.ConnectShutdown(d.stop)

	logger.Info("starting appdrawer", "version", version)
	status := d.app.Run(os.Args[:1])

	if startErr != nil {
		if errors.Is(startErr, dbus.ErrAlreadyRunning) {
			logger.Info("drawer already running, showing it")
			return dbus.Send(dbus.CommandShow)
		}
		return startErr
	}
	if d.loop != nil {
		if err := d.loop.Err(); err != nil {
			return err
		}
	}
	if status != 0 {
		logger.Error("application exited with error", "status", status)
		os.Exit(status)
	}
	logger.Info("appdrawer stopped")
	return nil
}

// start wires the components. It runs once on the GTK main thread.
func (d *drawerApp) start() error {
	d.control = dbus.NewControlServer(logger)
	if err := d.control.Start(); err != nil {
		if errors.Is(err, dbus.ErrAlreadyRunning) {
			return err
		}
		logger.Warn("control interface unavailable", "error", err)
	}

	var notify daemon.NotifyFunc
	if conn := d.control.Connection(); conn != nil {
		notify = dbus.NewBusNotifier(conn).Notify
	}
	d.notifier = daemon.NewNotifier(notify, logger)

	d.loop = loop.New(display.IdleScheduler{}, logger)
	go func() {
		<-d.loop.Done()
		glib.IdleAdd(d.app.Quit)
	}()

	d.themes = theme.NewLoader(logger)
	if err := d.themes.LoadTheme(d.cfg.Theme.Name); err != nil {
		d.notifier.NotifyThemeError(err)
	}
	if err := d.themes.Apply(nil); err != nil {
		logger.Warn("failed to apply theme", "error", err)
	}

	buildIndex := func(iconTheme string) *raster.IconIndex {
		return raster.BuildIndex(iconTheme, desktop.IconDirs(), pixmapDir, logger)
	}
	rast := raster.New(
		buildIndex(d.cfg.Icons.Theme),
		&raster.FileDecoder{Vector: display.PixbufDecoder{}},
		display.NewPangoShaper(),
		raster.Options{
			IconCacheSize:  d.cfg.Icons.CacheSize,
			GlyphCacheSize: d.cfg.Icons.GlyphCacheSize,
			Logger:         logger,
		},
	)

	d.feedback = audio.NewFeedback(d.cfg.Sound, logger)
	if err := d.feedback.Start(d.ctx); err != nil {
		logger.Warn("failed to start sound feedback", "error", err)
	}

	d.history = openHistory()

	d.launcher = launch.New(launch.Options{
		Terminal: terminalFor(d.cfg),
		Logger:   logger,
	})

	scanner := desktop.NewScanner(
		desktop.WithDirs(desktop.ApplicationDirs(d.cfg.ExpandedExtraDirs()...)...),
		desktop.WithLogger(logger),
	)
	d.inventory = desktop.NewWatcher(scanner, d.cfg.Inventory.Debounce.Duration(), logger)

	d.window = display.NewWindow(&d.app.Application, d.cfg.Surface, d.loop, logger)
	d.drawer = daemon.New(daemon.Options{
		Config:       d.cfg,
		Backend:      d.window,
		Loop:         d.loop,
		Raster:       rast,
		Launcher:     d.launcher,
		Notifier:     d.notifier,
		Logger:       logger,
		IndexBuilder: buildIndex,
		Rescan:       d.inventory.Notify,
		OnVisibility: func(visible bool) {
			if err := d.control.SetVisible(visible); err != nil {
				logger.Debug("failed to publish visibility", "error", err)
			}
		},
		OnLaunch: d.launched,
	})
	d.window.SetHandler(d.drawer)
	d.drawer.SetPalette(d.palette())

	d.themes.SetChangeCallback(func(*theme.Theme) {
		d.loop.PostFunc(d.refreshPalette)
	})
	d.themes.StartHotReload(d.ctx, func(fn func()) { glib.IdleAdd(fn) })
	theme.OnSystemSchemeChanged(func(bool) {
		d.loop.PostFunc(d.refreshPalette)
	})

	d.control.SetCommandHandler(func(cmd dbus.Command) {
		d.loop.Post(func() error { return d.drawer.Command(cmd) })
	})

	d.inventory.SetUpdateCallback(d.setEntries)
	if err := d.inventory.Start(d.ctx, d.cfg.Inventory.WatchDirs); err != nil {
		logger.Warn("failed to watch applications directories", "error", err)
	}
	go d.initialScan()

	if d.cfg.Inventory.WatchBus {
		d.monitor = dbus.NewInventoryMonitor(dbus.DefaultInventoryRules(), logger)
		d.monitor.SetChangeHandler(func(rule string) {
			logger.Debug("package change signalled", "rule", rule)
			d.inventory.Notify()
		})
		if err := d.monitor.Start(); err != nil {
			logger.Warn("failed to subscribe to package signals", "error", err)
			d.monitor = nil
		}
	}

	d.configWatcher = config.NewWatcher(configPath(), logger)
	d.configWatcher.SetReloadCallback(func(next *config.Config) {
		d.loop.PostFunc(func() { d.applyConfig(next) })
	})
	d.configWatcher.SetErrorCallback(d.notifier.NotifyConfigError)
	if err := d.configWatcher.Start(d.ctx, d.cfg); err != nil {
		logger.Warn("failed to start config watcher", "error", err)
	}

	d.app.Hold()
	d.loop.Post(func() error { return d.drawer.Start(d.show) })
	logger.Info("appdrawer ready", "interface", dbus.ControlInterface)
	return nil
}

// initialScan runs the first scan through the inventory watcher, which
// drops it if a rescan triggered meanwhile already delivered a newer list.
func (d *drawerApp) initialScan() {
	entries, err := d.inventory.ScanNow(d.ctx)
	if err != nil {
		logger.Debug("initial scan aborted", "error", err)
		return
	}
	logger.Info("inventory loaded", "entries", len(entries))
}

// setEntries hands a scan result to the loop. Safe from any goroutine.
func (d *drawerApp) setEntries(entries []model.Entry) {
	d.loop.PostFunc(func() { d.drawer.SetEntries(entries) })
}

// launched runs on the loop after every launch attempt.
func (d *drawerApp) launched(e model.Entry, err error) {
	recordLaunch(d.history, e, err)

	ev := audio.EventLaunch
	if err != nil {
		ev = audio.EventFailure
	}
	go func() {
		if err := d.feedback.Play(ev); err != nil {
			logger.Debug("failed to play feedback sound", "event", ev, "error", err)
		}
	}()
}

// palette derives the grid colours from the active theme and scheme.
func (d *drawerApp) palette() grid.Palette {
	dark := theme.IsDark(config.ColorScheme(d.cfg.Theme.ColorScheme))
	fallback := grid.LightPalette
	if dark {
		fallback = grid.DarkPalette
	}
	t := d.themes.Theme()
	if t == nil {
		return fallback
	}
	p, err := theme.Palette(t.CSS, dark, fallback)
	if err != nil {
		logger.Warn("theme palette incomplete", "theme", t.Name, "error", err)
	}
	return p
}

func (d *drawerApp) refreshPalette() {
	d.drawer.SetPalette(d.palette())
}

// applyConfig runs on the loop after the config file changed.
func (d *drawerApp) applyConfig(next *config.Config) {
	prev := d.cfg
	d.cfg = next

	d.drawer.ApplyConfig(next)
	d.window.SetConfig(next.Surface)

	if next.Theme.Name != prev.Theme.Name {
		if err := d.themes.LoadTheme(next.Theme.Name); err != nil {
			d.notifier.NotifyThemeError(err)
		}
		d.themes.StartHotReload(d.ctx, func(fn func()) { glib.IdleAdd(fn) })
	}
	d.refreshPalette()

	if next.Sound != prev.Sound {
		if err := d.feedback.Update(d.ctx, next.Sound); err != nil {
			logger.Warn("failed to update sound feedback", "error", err)
		}
	}
	logger.Info("configuration reloaded")
}

func (d *drawerApp) stop() {
	logger.Info("application shutting down")
	d.cancel()

	if d.configWatcher != nil {
		d.configWatcher.Stop()
	}
	if d.monitor != nil {
		_ = d.monitor.Stop()
	}
	if d.inventory != nil {
		_ = d.inventory.Stop()
	}
	if d.themes != nil {
		d.themes.StopHotReload()
	}
	if d.feedback != nil {
		d.feedback.Stop()
	}
	if d.drawer != nil {
		d.drawer.Close()
	}
	if d.loop != nil {
		d.loop.Stop(nil)
	}
	if d.control != nil {
		_ = d.control.Stop()
	}
	if d.history != nil {
		_ = d.history.Close()
	}
}

// terminalFor returns the configured terminal wrapper, falling back to $TERMINAL.
func terminalFor(c *config.Config) []string {
	if len(c.Launch.Terminal) > 0 {
		return c.Launch.Terminal
	}
	return launch.TerminalFromEnv()
}

func configPath() string {
	if globalOpts.configPath != "" {
		return globalOpts.configPath
	}
	return config.ConfigPath()
}
