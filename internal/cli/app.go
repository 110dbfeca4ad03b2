// Package cli holds the dependencies shared by the webhub CLI commands.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/bnema/webhub/internal/app/hub"
	"github.com/bnema/webhub/internal/cli/styles"
	"github.com/bnema/webhub/internal/domain/build"
	"github.com/bnema/webhub/internal/domain/entity"
	"github.com/bnema/webhub/internal/infrastructure/config"
	"github.com/bnema/webhub/internal/infrastructure/headless"
	"github.com/bnema/webhub/internal/infrastructure/hotkey"
	"github.com/bnema/webhub/internal/infrastructure/instance"
	"github.com/bnema/webhub/internal/logging"
)

// App holds CLI dependencies. Commands editing the record go through an offline
// Hub so they share the validation rules of the GUI; a running GUI picks the
// edits up through its config watcher.
type App struct {
	Store     *config.Store
	Dirs      *config.Dirs
	Theme     *styles.Theme
	Renderer  *styles.WebAppsRenderer
	BuildInfo build.Info

	ctx context.Context
	hub *hub.Hub
}

// NewApp loads the config record and builds the offline hub.
func NewApp() (*App, error) {
	logger := logging.NewFromConfigValues(envOr(logging.EnvLogLevel, "warn"), os.Getenv(logging.EnvLogFormat))
	ctx := logging.WithComponent(logging.WithContext(context.Background(), logger), "cli")

	dirs, err := config.GetDirs()
	if err != nil {
		return nil, fmt.Errorf("resolve directories: %w", err)
	}
	store, err := config.NewDefaultStore()
	if err != nil {
		return nil, err
	}
	cfg, err := store.Load(ctx)
	if err != nil {
		return nil, err
	}

	h, err := hub.New(cfg, hub.Options{
		Store:   store,
		Factory: headless.Factory{},
		Hotkeys: hotkey.NewManualBackend(),
	})
	if err != nil {
		return nil, err
	}

	theme := styles.NewTheme()
	return &App{
		Store:    store,
		Dirs:     dirs,
		Theme:    theme,
		Renderer: styles.NewWebAppsRenderer(theme),
		ctx:      ctx,
		hub:      h,
	}, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// Ctx returns the application context with logger.
func (a *App) Ctx() context.Context {
	return a.ctx
}

// Hub returns the offline hub.
func (a *App) Hub() *hub.Hub {
	return a.hub
}

// Close releases the offline hub.
func (a *App) Close() error {
	if a.hub == nil {
		return nil
	}
	return a.hub.Shutdown(a.ctx)
}

// SocketPath returns the control socket of the running GUI.
func (a *App) SocketPath() string {
	return instance.SocketPath(a.Dirs.RuntimeDir)
}

// Send forwards req to the running GUI.
func (a *App) Send(req instance.Request) (instance.Response, error) {
	ctx, cancel := context.WithTimeout(a.ctx, 10*time.Second)
	defer cancel()
	return instance.Send(ctx, a.SocketPath(), req)
}

// SendOrLaunch forwards req to the running GUI, starting `webhub run` in the
// background first when none is running.
func (a *App) SendOrLaunch(req instance.Request) (instance.Response, error) {
	resp, err := a.Send(req)
	if !errors.Is(err, instance.ErrNotRunning) {
		return resp, err
	}

	// The main window stays hidden unless it is what was asked for.
	if err := a.launchGUI(req.Command != instance.CmdShowMain); err != nil {
		return instance.Response{}, err
	}
	if err := a.waitForGUI(10 * time.Second); err != nil {
		return instance.Response{}, err
	}
	return a.Send(req)
}

func (a *App) launchGUI(hidden bool) error {
	executable, err := os.Executable()
	if err != nil {
		executable = "webhub"
	}
	args := []string{"run"}
	if hidden {
		args = append(args, "--hidden")
	}
	cmd := exec.Command(executable, args...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start webhub: %w", err)
	}
	logging.FromContext(a.ctx).Debug().Int("pid", cmd.Process.Pid).Msg("started webhub in the background")
	return cmd.Process.Release()
}

func (a *App) waitForGUI(timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if _, err := a.Send(instance.Request{Command: instance.CmdPing}); err == nil {
			return nil
		}
		time.Sleep(100 * time.Millisecond)
	}
	return fmt.Errorf("webhub did not come up within %s", timeout)
}

// FindWebApp resolves a webapp by id, falling back to a case-sensitive name match.
func (a *App) FindWebApp(ref string) (entity.WebApp, error) {
	if app, err := a.hub.GetWebApp(a.ctx, ref); err == nil {
		return app, nil
	}
	var found []entity.WebApp
	for _, app := range a.hub.ListWebApps(a.ctx) {
		if app.Name == ref {
			found = append(found, app)
		}
	}
	switch len(found) {
	case 0:
		return entity.WebApp{}, fmt.Errorf("%w: no webapp with id or name %q", entity.ErrNotFound, ref)
	case 1:
		return found[0], nil
	}
	return entity.WebApp{}, fmt.Errorf("%d webapps are named %q, use the id", len(found), ref)
}

// NotifyGUI asks a running GUI to reload the record. It is a no-op without one.
func (a *App) NotifyGUI() {
	if _, err := a.Send(instance.Request{Command: instance.CmdReloadConfig}); err != nil &&
		!errors.Is(err, instance.ErrNotRunning) {
		logging.FromContext(a.ctx).Debug().Err(err).Msg("could not notify running webhub")
	}
}
