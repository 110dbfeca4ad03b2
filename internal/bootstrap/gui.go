// Package bootstrap starts the webhub GUI process: the hub, its main window,
// the global shortcuts and the control socket, all driven by the GTK main loop.
package bootstrap

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/bnema/webhub/internal/app/hub"
	"github.com/bnema/webhub/internal/domain/build"
	"github.com/bnema/webhub/internal/domain/entity"
	"github.com/bnema/webhub/internal/infrastructure/config"
	"github.com/bnema/webhub/internal/infrastructure/events"
	"github.com/bnema/webhub/internal/infrastructure/hotkey"
	"github.com/bnema/webhub/internal/infrastructure/instance"
	"github.com/bnema/webhub/internal/infrastructure/webkit"
	"github.com/bnema/webhub/internal/logging"
	"github.com/bnema/webhub/internal/ui/window"
)

const (
	shutdownTimeout = 10 * time.Second

	logFileName     = "webhub.log"
	logFileMaxMB    = 10
	logFileBackups  = 3
	defaultLogLevel = "info"
)

// Options configures Run.
type Options struct {
	BuildInfo build.Info
	// Hidden keeps the main window hidden until its shortcut or `webhub show`.
	Hidden bool
	// LogToFile also writes logs under the state directory.
	LogToFile bool
}

// Run starts the GUI and blocks until the main window quits or the process is
// signalled. It must be called from the main goroutine. It returns
// instance.ErrAlreadyRunning when another hub holds the lock.
func Run(ctx context.Context, opts Options) error {
	timer := newPhaseTimer(nil)

	dirs, err := config.GetDirs()
	if err != nil {
		return fmt.Errorf("resolve directories: %w", err)
	}

	logger, closeLog := newGUILogger(dirs, opts.LogToFile)
	defer closeLog()
	ctx = logging.WithComponent(logging.WithContext(ctx, logger), "bootstrap")
	log := logging.FromContext(ctx)
	log.Info().
		Str("version", opts.BuildInfo.Version).
		Str("commit", opts.BuildInfo.Commit).
		Msg("starting webhub")

	lock, err := instance.Acquire(dirs.RuntimeDir)
	if err != nil {
		return err
	}
	defer func() {
		if err := lock.Release(); err != nil {
			log.Warn().Err(err).Msg("failed to release instance lock")
		}
	}()
	timer.Mark("lock")

	store, cfg, err := loadConfig(ctx, dirs)
	if err != nil {
		return err
	}
	timer.Mark("config")

	if err := webkit.Init(); err != nil {
		return fmt.Errorf("initialize gtk: %w", err)
	}
	timer.Mark("gtk")

	bus := events.New(ctx)
	defer func() { _ = bus.Close() }()

	hotkeys := hotkey.New(ctx)
	h, err := hub.New(cfg, hub.Options{
		Store: store,
		Factory: webkit.NewFactory(webkit.SessionDirs{
			DataDir:  dirs.DataHome,
			CacheDir: dirs.CacheHome,
		}),
		Hotkeys: hotkeys,
		Events:  bus,
	})
	if err != nil {
		return err
	}
	if err := h.Start(ctx); err != nil {
		// Conflicting or unsupported shortcuts must not keep the hub down.
		log.Warn().Err(err).Msg("some shortcuts could not be registered")
	}
	timer.Mark("hub")

	runCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	mw := window.New(ctx, h, stop)
	h.SetMainWindow(mw)
	if !opts.Hidden {
		mw.Show()
	}
	timer.Mark("main_window")

	switches, err := bus.SubscribeSwitchWebApp(runCtx)
	if err != nil {
		return err
	}

	store.OnConfigChange(func(next *entity.AppConfig) {
		if err := h.ApplyExternalConfig(ctx, next); err != nil {
			log.Warn().Err(err).Msg("failed to apply edited config")
			return
		}
		mw.Refresh()
	})
	if err := store.Watch(ctx); err != nil {
		log.Warn().Err(err).Msg("config file watch disabled")
	}

	handler := &controlHandler{hub: h, store: store, main: mw}
	if manual, ok := hotkeys.(*hotkey.ManualBackend); ok {
		handler.presser = manual
	}
	server := instance.NewServer(instance.SocketPath(dirs.RuntimeDir), handler)
	if err := server.Listen(); err != nil {
		return fmt.Errorf("listen on control socket: %w", err)
	}
	timer.Mark("control")
	timer.Log(ctx)

	g, gctx := errgroup.WithContext(runCtx)
	g.Go(func() error { return server.Serve(gctx) })
	g.Go(func() error {
		mw.FollowSwitches(switches)
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		defer webkit.QuitMainLoop()

		// Windows are destroyed on the main thread, so this runs before the loop stops.
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := h.Shutdown(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("hub shutdown incomplete")
		}
		if err := mw.Close(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("failed to close main window")
		}
		return nil
	})

	webkit.RunMainLoop(context.WithoutCancel(ctx))
	stop()

	err = g.Wait()
	log.Info().Msg("webhub stopped")
	return err
}

// loadConfig reads the config file while the state directories are created.
func loadConfig(ctx context.Context, dirs *config.Dirs) (*config.Store, *entity.AppConfig, error) {
	store, err := config.NewDefaultStore()
	if err != nil {
		return nil, nil, err
	}

	var cfg *entity.AppConfig
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		cfg, err = store.Load(gctx)
		return err
	})
	for _, dir := range []string{dirs.DataHome, dirs.CacheHome} {
		g.Go(func() error {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create %s: %w", dir, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return store, cfg, nil
}

// newGUILogger logs to stderr and, when asked, to a rotated file in the state directory.
func newGUILogger(dirs *config.Dirs, toFile bool) (zerolog.Logger, func()) {
	level := os.Getenv(logging.EnvLogLevel)
	if level == "" {
		level = defaultLogLevel
	}
	cfg := logging.DefaultConfig()
	if lvl, ok := logging.ParseLevel(level); ok {
		cfg.Level = lvl
	}
	if format := os.Getenv(logging.EnvLogFormat); format == "json" {
		cfg.Format = format
	}

	if !toFile {
		return logging.New(cfg), func() {}
	}

	rotator, err := logging.NewRotator(filepath.Join(dirs.StateHome, "logs"), logFileName, logFileMaxMB, logFileBackups)
	if err != nil {
		logger := logging.New(cfg)
		logger.Warn().Err(err).Msg("file logging disabled")
		return logger, func() {}
	}

	// Files get JSON lines whatever the console format.
	console := cfg
	console.Output = os.Stderr
	file := cfg
	file.Format = "json"
	file.Output = rotator
	logger := zerolog.New(zerolog.MultiLevelWriter(console.Writer(), file.Writer())).
		Level(cfg.Level).
		With().Timestamp().Logger()
	return logger, func() { _ = rotator.Close() }
}
