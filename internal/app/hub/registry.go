package hub

import (
	"fmt"
	"sort"
	"sync"

	"github.com/bnema/webhub/internal/domain/entity"
)

// Registry holds the durable AppConfig record: webapp definitions, proxy and limits.
// It owns no resources. Every mutation is validated against the whole record
// before it is committed, so the record is always valid.
type Registry struct {
	mu  sync.RWMutex
	cfg *entity.AppConfig
}

// NewRegistry takes a copy of cfg.
func NewRegistry(cfg *entity.AppConfig) *Registry {
	if cfg == nil {
		cfg = entity.DefaultAppConfig()
	}
	return &Registry{cfg: cfg.Clone()}
}

// Config returns a deep copy of the record.
func (r *Registry) Config() *entity.AppConfig {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.cfg.Clone()
}

// Replace swaps the whole record after validating it.
func (r *Registry) Replace(cfg *entity.AppConfig) error {
	next := cfg.Clone()
	if err := next.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	r.cfg = next
	r.mu.Unlock()
	return nil
}

// Get returns the webapp with the given id.
func (r *Registry) Get(id string) (entity.WebApp, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i := r.cfg.FindWebApp(id)
	if i < 0 {
		return entity.WebApp{}, fmt.Errorf("%w: %s", entity.ErrNotFound, id)
	}
	return r.cfg.WebApps[i], nil
}

// Has reports whether a webapp with the given id exists.
func (r *Registry) Has(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.cfg.FindWebApp(id) >= 0
}

// List returns the webapps sorted by display order.
func (r *Registry) List() []entity.WebApp {
	r.mu.RLock()
	out := make([]entity.WebApp, len(r.cfg.WebApps))
	copy(out, r.cfg.WebApps)
	r.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}

// Add appends a webapp at the end of the display order.
func (r *Registry) Add(app entity.WebApp) (entity.WebApp, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	next := r.cfg.Clone()
	app.Order = nextOrder(next.WebApps)
	next.WebApps = append(next.WebApps, app)
	if err := next.Validate(); err != nil {
		return entity.WebApp{}, err
	}
	r.cfg = next
	return app, nil
}

// Update applies fn to a copy of the webapp and commits it if the record stays valid.
// The id cannot be changed.
func (r *Registry) Update(id string, fn func(*entity.WebApp) error) (before, after entity.WebApp, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.cfg.FindWebApp(id)
	if i < 0 {
		return before, after, fmt.Errorf("%w: %s", entity.ErrNotFound, id)
	}
	before = r.cfg.WebApps[i]

	next := r.cfg.Clone()
	if err := fn(&next.WebApps[i]); err != nil {
		return before, after, err
	}
	next.WebApps[i].ID = id
	if err := next.Validate(); err != nil {
		return before, after, err
	}
	r.cfg = next
	return before, next.WebApps[i], nil
}

// Put overwrites an existing webapp verbatim. Used to roll back a failed update.
func (r *Registry) Put(app entity.WebApp) error {
	_, _, err := r.Update(app.ID, func(w *entity.WebApp) error {
		*w = app
		return nil
	})
	return err
}

// Remove deletes a webapp and returns its last definition.
func (r *Registry) Remove(id string) (entity.WebApp, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.cfg.FindWebApp(id)
	if i < 0 {
		return entity.WebApp{}, fmt.Errorf("%w: %s", entity.ErrNotFound, id)
	}
	removed := r.cfg.WebApps[i]

	next := r.cfg.Clone()
	next.WebApps = append(next.WebApps[:i], next.WebApps[i+1:]...)
	r.cfg = next
	return removed, nil
}

// Reorder assigns order 0..n-1 to the listed ids. Webapps not listed keep their
// relative order and follow the listed ones. It returns the resulting id→order map.
func (r *Registry) Reorder(ids []string) (map[string]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			return nil, fmt.Errorf("%w: webapp %s listed twice in order", entity.ErrInvalidConfig, id)
		}
		if r.cfg.FindWebApp(id) < 0 {
			return nil, fmt.Errorf("%w: %s", entity.ErrNotFound, id)
		}
		seen[id] = struct{}{}
	}

	rest := make([]entity.WebApp, 0, len(r.cfg.WebApps))
	for _, w := range r.cfg.WebApps {
		if _, listed := seen[w.ID]; !listed {
			rest = append(rest, w)
		}
	}
	sort.SliceStable(rest, func(i, j int) bool { return rest[i].Order < rest[j].Order })

	orders := make(map[string]int, len(r.cfg.WebApps))
	for i, id := range ids {
		orders[id] = i
	}
	for i, w := range rest {
		orders[w.ID] = len(ids) + i
	}

	next := r.cfg.Clone()
	for i := range next.WebApps {
		next.WebApps[i].Order = orders[next.WebApps[i].ID]
	}
	r.cfg = next
	return orders, nil
}

// Proxy returns the global proxy configuration.
func (r *Registry) Proxy() entity.ProxyConfig {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.cfg.Proxy
}

// SetProxy replaces the global proxy configuration after validating it.
func (r *Registry) SetProxy(p entity.ProxyConfig) error {
	p = p.Normalized()
	if err := p.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	r.cfg.Proxy = p
	r.mu.Unlock()
	return nil
}

// MaxActiveWindows returns the live window cap.
func (r *Registry) MaxActiveWindows() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.cfg.MaxActiveWindows
}

// SetMaxActiveWindows changes the live window cap. n must be at least 1.
func (r *Registry) SetMaxActiveWindows(n int) error {
	if n < 1 {
		return fmt.Errorf("%w: max active windows must be at least 1 (got %d)", entity.ErrInvalidConfig, n)
	}
	r.mu.Lock()
	r.cfg.MaxActiveWindows = n
	r.mu.Unlock()
	return nil
}

// MainWindowShortcut returns the normalized main window shortcut, or "".
func (r *Registry) MainWindowShortcut() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.cfg.MainWindowShortcut
}

func nextOrder(apps []entity.WebApp) int {
	next := 0
	for _, w := range apps {
		if w.Order >= next {
			next = w.Order + 1
		}
	}
	return next
}
