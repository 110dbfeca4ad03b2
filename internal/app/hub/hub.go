// Package hub is the window lifecycle and resource manager of webhub: it owns the
// webapp registry, the LRU window pool and the global shortcut table, and exposes
// the command surface used by the GUI and the CLI.
package hub

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/go-multierror"

	"github.com/bnema/webhub/internal/application/port"
	"github.com/bnema/webhub/internal/domain/entity"
	"github.com/bnema/webhub/internal/logging"
)

// Options wires the hub to its platform adapters.
type Options struct {
	Store   port.ConfigStore
	Factory port.WindowFactory
	Hotkeys port.HotkeyBackend
	// Events is optional; switch-webapp events are dropped without it.
	Events port.EventPublisher
	// MainWindow is optional and may be attached later with SetMainWindow.
	MainWindow port.MainWindow
	// Now overrides the clock used for window recency.
	Now func() time.Time
}

// Hub is the process-wide manager. Create it once at startup and Shutdown it on exit.
//
// Commands that create or show windows hold lifecycle shared; commands that delete
// webapps or replace the whole record hold it exclusively, so no window can be
// created for a webapp after its deletion started. mutate serializes the commands
// that change the record, including the store write that follows.
type Hub struct {
	lifecycle sync.RWMutex
	mutate    sync.Mutex

	registry  *Registry
	pool      *WindowPool
	shortcuts *ShortcutRegistry
	injector  *ScriptInjector
	store     port.ConfigStore
	events    port.EventPublisher

	mainMu     sync.RWMutex
	mainWindow port.MainWindow
}

// New builds a hub over cfg. cfg is normalized and must be valid.
func New(cfg *entity.AppConfig, opts Options) (*Hub, error) {
	if opts.Store == nil || opts.Factory == nil || opts.Hotkeys == nil {
		return nil, errors.New("hub: store, window factory and hotkey backend are required")
	}
	if cfg == nil {
		cfg = entity.DefaultAppConfig()
	}
	cfg = cfg.Clone()
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	h := &Hub{
		registry:   NewRegistry(cfg),
		injector:   NewScriptInjector(),
		store:      opts.Store,
		events:     opts.Events,
		mainWindow: opts.MainWindow,
	}
	h.pool = NewWindowPool(opts.Factory, h.registry, h.injector, cfg.MaxActiveWindows, opts.Now)
	h.shortcuts = NewShortcutRegistry(opts.Hotkeys, h.onShortcut)
	return h, nil
}

// SetMainWindow attaches the main window toggled by the main-window shortcut.
func (h *Hub) SetMainWindow(w port.MainWindow) {
	h.mainMu.Lock()
	h.mainWindow = w
	h.mainMu.Unlock()
}

// Start registers the global shortcuts of the current record. Registration failures
// are logged and returned together; the hub stays usable.
func (h *Hub) Start(ctx context.Context) error {
	log := logging.FromContext(ctx)
	cfg := h.registry.Config()

	err := h.shortcuts.Rebuild(ctx, cfg.MainWindowShortcut, cfg.WebApps)
	if err != nil {
		log.Warn().Err(err).Msg("some global shortcuts could not be registered")
	}
	log.Info().Int("webapps", len(cfg.WebApps)).Int("max_active_windows", cfg.MaxActiveWindows).Msg("hub started")
	return err
}

// Shutdown closes every window and unregisters every shortcut.
func (h *Hub) Shutdown(ctx context.Context) error {
	h.lifecycle.Lock()
	defer h.lifecycle.Unlock()

	var result *multierror.Error
	if err := h.pool.CloseAll(ctx); err != nil {
		result = multierror.Append(result, err)
	}
	if err := h.shortcuts.Close(ctx); err != nil {
		result = multierror.Append(result, err)
	}
	logging.FromContext(ctx).Info().Msg("hub shut down")
	return result.ErrorOrNil()
}

// GetConfig returns a copy of the current record.
func (h *Hub) GetConfig(_ context.Context) *entity.AppConfig {
	return h.registry.Config()
}

// ListWebApps returns the webapps in display order.
func (h *Hub) ListWebApps(_ context.Context) []entity.WebApp {
	return h.registry.List()
}

// GetWebApp returns one webapp.
func (h *Hub) GetWebApp(_ context.Context, id string) (entity.WebApp, error) {
	return h.registry.Get(id)
}

// Windows returns the live windows, least recently used first.
func (h *Hub) Windows(ctx context.Context) []entity.WindowState {
	return h.pool.Snapshot(ctx)
}

// Bindings returns the active shortcut table.
func (h *Hub) Bindings() map[string]entity.ShortcutTarget {
	return h.shortcuts.Bindings()
}

// SaveConfig replaces the whole record, applies it to live windows and shortcuts,
// and persists it.
func (h *Hub) SaveConfig(ctx context.Context, cfg *entity.AppConfig) error {
	return h.replaceConfig(ctx, cfg, true)
}

// ApplyExternalConfig applies a record that was changed outside the process, such as
// a CLI edit picked up by the config watcher. It is not written back.
func (h *Hub) ApplyExternalConfig(ctx context.Context, cfg *entity.AppConfig) error {
	return h.replaceConfig(ctx, cfg, false)
}

func (h *Hub) replaceConfig(ctx context.Context, cfg *entity.AppConfig, persist bool) error {
	log := logging.FromContext(ctx)

	next := cfg.Clone()
	next.Normalize()
	if err := next.Validate(); err != nil {
		return err
	}
	for _, app := range next.WebApps {
		if err := h.injector.ValidateScript(app.InjectScript); err != nil {
			return fmt.Errorf("webapp %s: %w", app.ID, err)
		}
	}

	h.lifecycle.Lock()
	defer h.lifecycle.Unlock()
	h.mutate.Lock()
	defer h.mutate.Unlock()

	prev := h.registry.Config()
	for _, old := range prev.WebApps {
		if next.FindWebApp(old.ID) >= 0 {
			continue
		}
		if err := h.pool.OnWebAppDeleted(ctx, old.ID); err != nil {
			return fmt.Errorf("failed to close window of removed webapp %s: %w", old.ID, err)
		}
	}

	if err := h.registry.Replace(next); err != nil {
		return err
	}

	var result *multierror.Error
	if err := h.shortcuts.Rebuild(ctx, next.MainWindowShortcut, next.WebApps); err != nil {
		result = multierror.Append(result, err)
	}
	orders := make(map[string]int, len(next.WebApps))
	for _, app := range next.WebApps {
		orders[app.ID] = app.Order
	}
	h.pool.SyncOrder(orders)
	if err := h.pool.OnCapacityChanged(ctx, next.MaxActiveWindows); err != nil {
		result = multierror.Append(result, err)
	}
	if err := h.pool.RebindProxy(ctx); err != nil {
		result = multierror.Append(result, err)
	}

	if persist {
		if err := h.persist(ctx); err != nil {
			return err
		}
	}
	log.Info().Bool("persisted", persist).Int("webapps", len(next.WebApps)).Msg("config applied")
	return result.ErrorOrNil()
}

// NewWebApp describes a webapp to add. Zero Width/Height use the defaults and a nil
// UseProxy means true.
type NewWebApp struct {
	Name             string
	URL              string
	Icon             string
	Shortcut         string
	Width            int
	Height           int
	UseProxy         *bool
	InjectScript     string
	InjectOnLoad     bool
	InjectOnShortcut bool
}

// AddWebApp registers a new webapp and its shortcut.
func (h *Hub) AddWebApp(ctx context.Context, req NewWebApp) (entity.WebApp, error) {
	log := logging.FromContext(ctx)

	shortcut, err := entity.NormalizeShortcut(req.Shortcut)
	if err != nil {
		return entity.WebApp{}, err
	}
	if err := h.injector.ValidateScript(req.InjectScript); err != nil {
		return entity.WebApp{}, err
	}

	app := entity.NewWebApp(strings.TrimSpace(req.Name), strings.TrimSpace(req.URL))
	app.Icon = req.Icon
	app.Shortcut = shortcut
	if req.Width > 0 {
		app.Width = req.Width
	}
	if req.Height > 0 {
		app.Height = req.Height
	}
	if req.Width < 0 || req.Height < 0 {
		return entity.WebApp{}, fmt.Errorf("%w: width and height must be positive", entity.ErrInvalidConfig)
	}
	if req.UseProxy != nil {
		app.UseProxy = *req.UseProxy
	}
	app.InjectScript = req.InjectScript
	app.InjectOnLoad = req.InjectOnLoad
	app.InjectOnShortcut = req.InjectOnShortcut

	h.lifecycle.RLock()
	defer h.lifecycle.RUnlock()
	h.mutate.Lock()
	defer h.mutate.Unlock()

	added, err := h.registry.Add(*app)
	if err != nil {
		return entity.WebApp{}, err
	}
	if added.Shortcut != "" {
		if err := h.shortcuts.Bind(ctx, added.Shortcut, entity.WebAppTarget(added.ID)); err != nil {
			if _, rerr := h.registry.Remove(added.ID); rerr != nil {
				panic(fmt.Sprintf("hub: roll back webapp %s: %v", added.ID, rerr))
			}
			return entity.WebApp{}, err
		}
	}
	if err := h.persist(ctx); err != nil {
		return entity.WebApp{}, err
	}

	log.Info().Str("webapp_id", added.ID).Str("name", added.Name).Str("shortcut", added.Shortcut).Msg("webapp added")
	return added, nil
}

// WebAppPatch is a partial update: nil fields are left unchanged.
type WebAppPatch struct {
	Name             *string
	URL              *string
	Icon             *string
	Shortcut         *string
	Width            *int
	Height           *int
	UseProxy         *bool
	InjectScript     *string
	InjectOnLoad     *bool
	InjectOnShortcut *bool
}

func (p WebAppPatch) apply(w *entity.WebApp) error {
	if p.Name != nil {
		w.Name = strings.TrimSpace(*p.Name)
	}
	if p.URL != nil {
		w.URL = strings.TrimSpace(*p.URL)
	}
	if p.Icon != nil {
		w.Icon = *p.Icon
	}
	if p.Shortcut != nil {
		s, err := entity.NormalizeShortcut(*p.Shortcut)
		if err != nil {
			return err
		}
		w.Shortcut = s
	}
	if p.Width != nil {
		w.Width = *p.Width
	}
	if p.Height != nil {
		w.Height = *p.Height
	}
	if p.UseProxy != nil {
		w.UseProxy = *p.UseProxy
	}
	if p.InjectScript != nil {
		w.InjectScript = *p.InjectScript
	}
	if p.InjectOnLoad != nil {
		w.InjectOnLoad = *p.InjectOnLoad
	}
	if p.InjectOnShortcut != nil {
		w.InjectOnShortcut = *p.InjectOnShortcut
	}
	return nil
}

// UpdateWebApp applies a partial update. A changed shortcut is rebound and a changed
// proxy flag replaces the live window.
func (h *Hub) UpdateWebApp(ctx context.Context, id string, patch WebAppPatch) (entity.WebApp, error) {
	log := logging.FromContext(ctx)

	if patch.InjectScript != nil {
		if err := h.injector.ValidateScript(*patch.InjectScript); err != nil {
			return entity.WebApp{}, err
		}
	}

	h.lifecycle.RLock()
	defer h.lifecycle.RUnlock()
	h.mutate.Lock()
	defer h.mutate.Unlock()

	before, after, err := h.registry.Update(id, patch.apply)
	if err != nil {
		return entity.WebApp{}, err
	}

	target := entity.WebAppTarget(id)
	if before.Shortcut != after.Shortcut {
		var serr error
		if after.Shortcut == "" {
			serr = h.shortcuts.Unbind(ctx, target)
			if serr != nil {
				log.Warn().Err(serr).Str("webapp_id", id).Msg("old shortcut still grabbed")
				serr = nil
			}
		} else {
			serr = h.shortcuts.Bind(ctx, after.Shortcut, target)
		}
		if serr != nil {
			if rerr := h.registry.Put(before); rerr != nil {
				panic(fmt.Sprintf("hub: roll back webapp %s: %v", id, rerr))
			}
			return entity.WebApp{}, serr
		}
	}

	if before.Order != after.Order {
		h.pool.SyncOrder(map[string]int{id: after.Order})
	}

	var rebindErr error
	if before.UseProxy != after.UseProxy {
		rebindErr = h.pool.RebindWindow(ctx, id)
	}

	if err := h.persist(ctx); err != nil {
		return entity.WebApp{}, err
	}
	log.Info().Str("webapp_id", id).Msg("webapp updated")
	return after, rebindErr
}

// DeleteWebApp closes the webapp's window, drops its shortcut and removes it.
func (h *Hub) DeleteWebApp(ctx context.Context, id string) error {
	log := logging.FromContext(ctx)

	h.lifecycle.Lock()
	defer h.lifecycle.Unlock()
	h.mutate.Lock()
	defer h.mutate.Unlock()

	if !h.registry.Has(id) {
		return fmt.Errorf("%w: %s", entity.ErrNotFound, id)
	}
	if err := h.pool.OnWebAppDeleted(ctx, id); err != nil {
		return err
	}
	if err := h.shortcuts.Unbind(ctx, entity.WebAppTarget(id)); err != nil {
		log.Warn().Err(err).Str("webapp_id", id).Msg("shortcut of deleted webapp still grabbed")
	}
	if _, err := h.registry.Remove(id); err != nil {
		return err
	}
	if err := h.persist(ctx); err != nil {
		return err
	}

	log.Info().Str("webapp_id", id).Msg("webapp deleted")
	return nil
}

// OpenWebApp shows the webapp's window, creating it when needed.
func (h *Hub) OpenWebApp(ctx context.Context, id string) error {
	h.lifecycle.RLock()
	defer h.lifecycle.RUnlock()

	if !h.registry.Has(id) {
		return fmt.Errorf("%w: %s", entity.ErrNotFound, id)
	}
	return h.pool.Open(ctx, id)
}

// OpenWebAppWindow opens a webapp from the standalone window entry point
// (desktop launcher, CLI). It behaves like OpenWebApp.
func (h *Hub) OpenWebAppWindow(ctx context.Context, id string) error {
	logging.FromContext(ctx).Debug().Str("webapp_id", id).Msg("opening webapp from standalone entry")
	return h.OpenWebApp(ctx, id)
}

// CloseWebApp destroys the webapp's window if it is live.
func (h *Hub) CloseWebApp(ctx context.Context, id string) error {
	h.lifecycle.RLock()
	defer h.lifecycle.RUnlock()

	if !h.registry.Has(id) {
		return fmt.Errorf("%w: %s", entity.ErrNotFound, id)
	}
	return h.pool.Close(ctx, id)
}

// ToggleWebApp hides, shows or opens the webapp's window.
func (h *Hub) ToggleWebApp(ctx context.Context, id string) (entity.ToggleResult, error) {
	return h.toggle(ctx, id, false)
}

func (h *Hub) toggle(ctx context.Context, id string, viaShortcut bool) (entity.ToggleResult, error) {
	h.lifecycle.RLock()
	defer h.lifecycle.RUnlock()

	app, err := h.registry.Get(id)
	if err != nil {
		return 0, err
	}
	wantsScript := viaShortcut && app.WantsShortcutInjection()

	res, err := h.pool.Toggle(ctx, id, wantsScript)
	if err != nil {
		return res, err
	}
	// A freshly created window gets the script after its first load.
	if wantsScript && res == entity.ToggleShownExisting {
		if err := h.pool.InjectShortcutScript(ctx, app); err != nil {
			return res, err
		}
	}
	return res, nil
}

// TriggerShortcut dispatches shortcut as if the OS hotkey fired.
func (h *Hub) TriggerShortcut(ctx context.Context, shortcut string) {
	h.shortcuts.Dispatch(ctx, shortcut)
}

func (h *Hub) onShortcut(ctx context.Context, target entity.ShortcutTarget) {
	log := logging.FromContext(ctx)

	if target.IsMainWindow() {
		h.mainMu.RLock()
		mw := h.mainWindow
		h.mainMu.RUnlock()
		if mw == nil {
			log.Debug().Msg("main window shortcut fired without a main window")
			return
		}
		if err := mw.ToggleVisibility(ctx); err != nil {
			log.Warn().Err(err).Msg("failed to toggle main window")
		}
		return
	}

	id := target.WebAppID()
	if h.events != nil {
		h.events.PublishSwitchWebApp(ctx, id)
	}
	res, err := h.toggle(ctx, id, true)
	if err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			log.Debug().Str("webapp_id", id).Msg("shortcut target no longer exists")
			return
		}
		log.Warn().Err(err).Str("webapp_id", id).Msg("shortcut toggle failed")
		return
	}
	log.Debug().Str("webapp_id", id).Stringer("result", res).Msg("shortcut toggled webapp")
}

// ReorderWebApps sets the display order. Listed ids come first in the given order.
func (h *Hub) ReorderWebApps(ctx context.Context, ids []string) error {
	h.lifecycle.RLock()
	defer h.lifecycle.RUnlock()
	h.mutate.Lock()
	defer h.mutate.Unlock()

	orders, err := h.registry.Reorder(ids)
	if err != nil {
		return err
	}
	h.pool.SyncOrder(orders)
	return h.persist(ctx)
}

// SetMaxActiveWindows changes the window cap and evicts LRU windows above it.
func (h *Hub) SetMaxActiveWindows(ctx context.Context, n int) error {
	h.lifecycle.RLock()
	defer h.lifecycle.RUnlock()
	h.mutate.Lock()
	defer h.mutate.Unlock()

	if err := h.registry.SetMaxActiveWindows(n); err != nil {
		return err
	}
	evictErr := h.pool.OnCapacityChanged(ctx, n)
	if err := h.persist(ctx); err != nil {
		return err
	}
	return evictErr
}

// SetProxyConfig replaces the global proxy and rebuilds live windows whose proxy changed.
func (h *Hub) SetProxyConfig(ctx context.Context, proxy entity.ProxyConfig) error {
	log := logging.FromContext(ctx)

	h.lifecycle.RLock()
	defer h.lifecycle.RUnlock()
	h.mutate.Lock()
	defer h.mutate.Unlock()

	if err := h.registry.SetProxy(proxy); err != nil {
		return err
	}
	current := h.registry.Proxy()
	log.Info().Bool("enabled", current.Enabled).Str("type", string(current.ProxyType)).Msg("proxy settings changed")

	rebindErr := h.pool.RebindProxy(ctx)
	if err := h.persist(ctx); err != nil {
		return err
	}
	return rebindErr
}

// persist writes the whole record. Callers hold mutate.
func (h *Hub) persist(ctx context.Context) error {
	if err := h.store.Save(ctx, h.registry.Config()); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	return nil
}
