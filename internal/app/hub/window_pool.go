package hub

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/hashicorp/go-multierror"

	"github.com/bnema/webhub/internal/application/port"
	"github.com/bnema/webhub/internal/domain/entity"
	"github.com/bnema/webhub/internal/logging"
)

// ErrClosed is returned by operations issued after Shutdown.
var ErrClosed = errors.New("hub is shut down")

// WebAppSource gives the pool read access to webapp definitions and the global proxy.
type WebAppSource interface {
	Get(id string) (entity.WebApp, error)
	Proxy() entity.ProxyConfig
}

type entryState int

const (
	// statePending: native window is being created, handle not yet known.
	statePending entryState = iota
	// stateLive: handle is valid.
	stateLive
	// stateClosing: native window is being destroyed.
	stateClosing
)

func (s entryState) String() string {
	switch s {
	case statePending:
		return "pending"
	case stateLive:
		return "live"
	case stateClosing:
		return "closing"
	}
	return "unknown"
}

// windowEntry is the pool's WindowState. All fields are guarded by WindowPool.mu.
type windowEntry struct {
	id    string
	gen   uint64
	state entryState
	// done is closed when a pending or closing transition settles.
	done chan struct{}

	handle     port.NativeWindow
	visible    bool
	geometry   entity.Geometry
	lastAccess time.Time
	order      int
	proxy      entity.EffectiveProxy

	injectedOnLoad bool
	// queuedShortcutInject delivers the shortcut script after the first load
	// when a shortcut created the window.
	queuedShortcutInject bool
	// keepAccess preserves lastAccess across a proxy recreation.
	keepAccess bool
	// skipFocus swallows the focus event the window manager sends when a
	// recreated window is first presented.
	skipFocus bool
	// applying is set while one caller drives the native window to visible.
	applying bool
}

// WindowPool owns the bounded set of live native webapp windows and evicts the least
// recently used one when the cap is reached. Native calls run outside mu; entries are
// reserved as pending before creation and marked closing before destruction, and
// callers touching such an entry wait for it to settle.
type WindowPool struct {
	mu      sync.Mutex
	entries map[string]*windowEntry
	max     int
	gen     uint64
	closed  bool

	factory  port.WindowFactory
	source   WebAppSource
	injector *ScriptInjector
	now      func() time.Time
}

// NewWindowPool creates an empty pool capped at maxActive windows.
func NewWindowPool(factory port.WindowFactory, source WebAppSource, injector *ScriptInjector, maxActive int, now func() time.Time) *WindowPool {
	if maxActive < 1 {
		maxActive = 1
	}
	if now == nil {
		now = time.Now
	}
	if injector == nil {
		injector = NewScriptInjector()
	}
	return &WindowPool{
		entries:  make(map[string]*windowEntry),
		max:      maxActive,
		factory:  factory,
		source:   source,
		injector: injector,
		now:      now,
	}
}

func wait(ctx context.Context, done <-chan struct{}) error {
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Open shows the window of webappID, creating it (and evicting the LRU window if the
// pool is full) when none is live.
func (p *WindowPool) Open(ctx context.Context, webappID string) error {
	_, err := p.activate(ctx, webappID, false, false)
	return err
}

// Toggle hides a visible window, shows a hidden one, or opens a new one.
// When viaShortcut creates the window, the shortcut script is queued for the first load.
func (p *WindowPool) Toggle(ctx context.Context, webappID string, viaShortcut bool) (entity.ToggleResult, error) {
	return p.activate(ctx, webappID, true, viaShortcut)
}

func (p *WindowPool) activate(ctx context.Context, id string, toggle, viaShortcut bool) (entity.ToggleResult, error) {
	ctx = logging.WithWebAppID(ctx, id)
	log := logging.FromContext(ctx)

	for {
		p.mu.Lock()
		if p.closed {
			p.mu.Unlock()
			return 0, ErrClosed
		}

		if e, ok := p.entries[id]; ok {
			if e.state != stateLive {
				done := e.done
				state := e.state
				p.mu.Unlock()
				log.Debug().Stringer("state", state).Msg("waiting for window to settle")
				if err := wait(ctx, done); err != nil {
					return 0, err
				}
				continue
			}

			if toggle && e.visible {
				log.Debug().Msg("hiding window")
				if err := p.setVisibleLocked(ctx, e, false); err != nil {
					return entity.ToggleHidden, fmt.Errorf("failed to hide window %s: %w", id, err)
				}
				return entity.ToggleHidden, nil
			}

			e.lastAccess = p.now()
			e.skipFocus = false
			log.Debug().Msg("showing existing window")
			if err := p.setVisibleLocked(ctx, e, true); err != nil {
				return entity.ToggleShownExisting, fmt.Errorf("failed to show window %s: %w", id, err)
			}
			return entity.ToggleShownExisting, nil
		}

		if len(p.entries) >= p.max {
			// mu is released by makeRoom on every path.
			if err := p.makeRoom(ctx, id); err != nil {
				return 0, err
			}
			continue
		}

		e := p.reserveLocked(id)
		e.queuedShortcutInject = viaShortcut
		p.mu.Unlock()

		if err := p.create(ctx, e); err != nil {
			return 0, err
		}
		return entity.ToggleCreatedNew, nil
	}
}

// setVisibleLocked records the wanted visibility of a live entry. Unless another
// caller is already applying it, it then drives the native window until it matches
// the recorded value, so interleaved shows and hides settle on the last one.
// Caller holds mu; it is released on return.
func (p *WindowPool) setVisibleLocked(ctx context.Context, e *windowEntry, visible bool) error {
	e.visible = visible
	if e.applying {
		p.mu.Unlock()
		return nil
	}
	e.applying = true
	handle := e.handle
	for {
		want := e.visible
		p.mu.Unlock()

		var err error
		if want {
			err = handle.Show(ctx)
		} else {
			err = handle.Hide(ctx)
		}

		p.mu.Lock()
		if err != nil || e.visible == want || e.state != stateLive {
			e.applying = false
			p.mu.Unlock()
			return err
		}
	}
}

// reserveLocked inserts a pending entry for id. Caller holds mu.
func (p *WindowPool) reserveLocked(id string) *windowEntry {
	if _, exists := p.entries[id]; exists {
		panic(fmt.Sprintf("hub: second window entry for webapp %s", id))
	}
	p.gen++
	e := &windowEntry{
		id:    id,
		gen:   p.gen,
		state: statePending,
		done:  make(chan struct{}),
	}
	p.entries[id] = e
	return e
}

// makeRoom frees one slot. A window already being destroyed is waited for rather
// than picking a second victim; otherwise the LRU live window other than protect is
// evicted, or a pending entry is waited for when no live candidate exists.
// Caller holds mu; makeRoom always releases it.
func (p *WindowPool) makeRoom(ctx context.Context, protect string) error {
	if done := p.closingLocked(); done != nil {
		p.mu.Unlock()
		return wait(ctx, done)
	}
	victim := p.victimLocked(protect)
	if victim == nil {
		done := p.unsettledLocked()
		p.mu.Unlock()
		if done == nil {
			panic("hub: window pool full without live or unsettled entries")
		}
		return wait(ctx, done)
	}
	return p.destroyLocked(ctx, victim, "evicted")
}

// victimLocked picks the live entry with the oldest access, then the smaller order,
// then the smaller id.
func (p *WindowPool) victimLocked(protect string) *windowEntry {
	var victim *windowEntry
	for _, e := range p.entries {
		if e.state != stateLive || e.id == protect {
			continue
		}
		if victim == nil || lessRecent(e, victim) {
			victim = e
		}
	}
	return victim
}

func lessRecent(a, b *windowEntry) bool {
	if !a.lastAccess.Equal(b.lastAccess) {
		return a.lastAccess.Before(b.lastAccess)
	}
	if a.order != b.order {
		return a.order < b.order
	}
	return a.id < b.id
}

func (p *WindowPool) closingLocked() chan struct{} {
	for _, e := range p.entries {
		if e.state == stateClosing {
			return e.done
		}
	}
	return nil
}

func (p *WindowPool) unsettledLocked() chan struct{} {
	for _, e := range p.entries {
		if e.state != stateLive {
			return e.done
		}
	}
	return nil
}

// destroyLocked destroys a live entry's window and removes the entry. If the native
// window refuses to close the entry is restored and ErrResourceExhausted returned.
// Caller holds mu; it is released on return.
func (p *WindowPool) destroyLocked(ctx context.Context, e *windowEntry, reason string) error {
	log := logging.FromContext(ctx)

	e.state = stateClosing
	e.done = make(chan struct{})
	handle := e.handle
	p.mu.Unlock()

	err := handle.Destroy(ctx)

	p.mu.Lock()
	defer p.mu.Unlock()
	if err != nil {
		e.state = stateLive
		close(e.done)
		log.Warn().Err(err).Str("victim", e.id).Str("reason", reason).Msg("window refused to close")
		return fmt.Errorf("%w: window %s refused to close: %v", entity.ErrResourceExhausted, e.id, err)
	}

	delete(p.entries, e.id)
	close(e.done)
	log.Info().Str("victim", e.id).Str("reason", reason).Int("live", len(p.entries)).Msg("window destroyed")
	return nil
}

// create builds the native window for a pending entry and finalizes or rolls back the reservation.
func (p *WindowPool) create(ctx context.Context, e *windowEntry) error {
	log := logging.FromContext(ctx)

	app, err := p.source.Get(e.id)
	if err != nil {
		p.rollback(e)
		return err
	}
	proxy := ResolveProxy(app, p.source.Proxy())
	spec := port.WindowSpec{
		WebAppID: app.ID,
		Title:    app.Name,
		URL:      app.URL,
		Icon:     app.Icon,
		Geometry: app.Geometry(),
		Proxy:    proxy,
	}

	handle, err := p.factory.CreateWindow(ctx, spec, p.callbacks(ctx, e.id, e.gen))
	if err != nil {
		p.rollback(e)
		log.Error().Err(err).Msg("window creation failed")
		return fmt.Errorf("%w: webapp %s: %v", entity.ErrCreationFailed, e.id, err)
	}

	p.mu.Lock()
	if p.closed {
		delete(p.entries, e.id)
		close(e.done)
		p.mu.Unlock()
		if derr := handle.Destroy(ctx); derr != nil {
			log.Warn().Err(derr).Msg("failed to destroy window created during shutdown")
		}
		return ErrClosed
	}
	e.handle = handle
	e.state = stateLive
	e.visible = true
	e.geometry = spec.Geometry
	e.order = app.Order
	e.proxy = proxy
	if !e.keepAccess {
		e.lastAccess = p.now()
	}
	close(e.done)
	live := len(p.entries)
	p.mu.Unlock()

	log.Info().Str("proxy", proxy.Redacted()).Int("live", live).Msg("window created")
	return nil
}

func (p *WindowPool) rollback(e *windowEntry) {
	p.mu.Lock()
	if cur, ok := p.entries[e.id]; ok && cur == e {
		delete(p.entries, e.id)
	}
	close(e.done)
	p.mu.Unlock()
}

// Close destroys the window of webappID if one is live. Closing a webapp without a
// live window is a no-op.
func (p *WindowPool) Close(ctx context.Context, webappID string) error {
	ctx = logging.WithWebAppID(ctx, webappID)
	for {
		p.mu.Lock()
		e, ok := p.entries[webappID]
		if !ok {
			p.mu.Unlock()
			return nil
		}
		if e.state != stateLive {
			done := e.done
			p.mu.Unlock()
			if err := wait(ctx, done); err != nil {
				return err
			}
			continue
		}
		if err := p.destroyLocked(ctx, e, "closed"); err != nil {
			return fmt.Errorf("failed to close window %s: %w", webappID, err)
		}
		return nil
	}
}

// OnWebAppDeleted closes the window of a webapp that is about to be removed.
func (p *WindowPool) OnWebAppDeleted(ctx context.Context, webappID string) error {
	return p.Close(ctx, webappID)
}

// EvictLRU destroys the least recently used live window other than excluding.
// It returns the evicted id, or "" when there was no candidate.
func (p *WindowPool) EvictLRU(ctx context.Context, excluding string) (string, error) {
	p.mu.Lock()
	victim := p.victimLocked(excluding)
	if victim == nil {
		p.mu.Unlock()
		return "", nil
	}
	id := victim.id
	if err := p.destroyLocked(ctx, victim, "evicted"); err != nil {
		return "", err
	}
	return id, nil
}

// OnCapacityChanged sets a new cap and evicts LRU windows until the pool fits.
func (p *WindowPool) OnCapacityChanged(ctx context.Context, newMax int) error {
	if newMax < 1 {
		return fmt.Errorf("%w: max active windows must be at least 1 (got %d)", entity.ErrInvalidConfig, newMax)
	}
	log := logging.FromContext(ctx)

	p.mu.Lock()
	p.max = newMax
	p.mu.Unlock()
	log.Info().Int("max_active_windows", newMax).Msg("window cap changed")

	for {
		p.mu.Lock()
		if len(p.entries) <= p.max {
			p.mu.Unlock()
			return nil
		}
		if err := p.makeRoom(ctx, ""); err != nil {
			return err
		}
	}
}

// SyncOrder records new display orders for eviction tie-breaks.
func (p *WindowPool) SyncOrder(orders map[string]int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for id, e := range p.entries {
		if o, ok := orders[id]; ok {
			e.order = o
		}
	}
}

// Touch refreshes the recency of a live window, e.g. on a focus event.
func (p *WindowPool) Touch(webappID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if e, ok := p.entries[webappID]; ok && e.state == stateLive {
		e.lastAccess = p.now()
		e.skipFocus = false
	}
}

// RebindProxy destroys every live window whose effective proxy no longer matches the
// current settings. Visible ones are recreated with the same recency; hidden ones are
// simply closed and get the new proxy when next opened.
func (p *WindowPool) RebindProxy(ctx context.Context) error {
	p.mu.Lock()
	ids := make([]string, 0, len(p.entries))
	for id := range p.entries {
		ids = append(ids, id)
	}
	p.mu.Unlock()
	sort.Strings(ids)

	var result *multierror.Error
	global := p.source.Proxy()
	for _, id := range ids {
		app, err := p.source.Get(id)
		if err != nil {
			continue
		}
		if err := p.rebind(ctx, id, ResolveProxy(app, global)); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}

// RebindWindow applies the current proxy settings to a single webapp's window.
func (p *WindowPool) RebindWindow(ctx context.Context, webappID string) error {
	app, err := p.source.Get(webappID)
	if err != nil {
		return err
	}
	return p.rebind(ctx, webappID, ResolveProxy(app, p.source.Proxy()))
}

func (p *WindowPool) rebind(ctx context.Context, id string, want entity.EffectiveProxy) error {
	ctx = logging.WithWebAppID(ctx, id)
	log := logging.FromContext(ctx)

	for {
		p.mu.Lock()
		if p.closed {
			p.mu.Unlock()
			return ErrClosed
		}
		e, ok := p.entries[id]
		if !ok {
			p.mu.Unlock()
			return nil
		}
		if e.state != stateLive {
			done := e.done
			p.mu.Unlock()
			if err := wait(ctx, done); err != nil {
				return err
			}
			continue
		}
		if e.proxy == want {
			p.mu.Unlock()
			return nil
		}

		visible, lastAccess, from := e.visible, e.lastAccess, e.proxy
		e.state = stateClosing
		e.done = make(chan struct{})
		handle := e.handle
		p.mu.Unlock()

		log.Info().Str("from", from.Redacted()).Str("to", want.Redacted()).Bool("visible", visible).Msg("proxy changed, replacing window")
		err := handle.Destroy(ctx)

		p.mu.Lock()
		if err != nil {
			e.state = stateLive
			close(e.done)
			p.mu.Unlock()
			return fmt.Errorf("%w: window %s refused to close for proxy change: %v", entity.ErrResourceExhausted, id, err)
		}
		delete(p.entries, id)
		if !visible || p.closed {
			close(e.done)
			p.mu.Unlock()
			return nil
		}
		// Hand the slot straight to the replacement so capacity never changes.
		next := p.reserveLocked(id)
		next.lastAccess = lastAccess
		next.keepAccess = true
		next.skipFocus = true
		close(e.done)
		p.mu.Unlock()

		return p.create(ctx, next)
	}
}

// InjectShortcutScript delivers the shortcut script into the live window of app.
func (p *WindowPool) InjectShortcutScript(ctx context.Context, app entity.WebApp) error {
	p.mu.Lock()
	e, ok := p.entries[app.ID]
	var handle port.NativeWindow
	if ok && e.state == stateLive {
		handle = e.handle
	}
	p.mu.Unlock()

	return p.injector.InjectOnShortcut(ctx, handle, app.ID, app.InjectScript)
}

func (p *WindowPool) callbacks(ctx context.Context, id string, gen uint64) port.WindowCallbacks {
	// Native callbacks outlive the command that created the window.
	ctx = context.WithoutCancel(ctx)
	return port.WindowCallbacks{
		OnLoadFinished: func() { p.handleLoadFinished(ctx, id, gen) },
		OnFocus:        func() { p.handleFocus(id, gen) },
		OnClosed:       func() { p.handleClosed(ctx, id, gen) },
	}
}

// current returns the entry for id if it still belongs to generation gen, waiting
// for a pending creation to finish first.
func (p *WindowPool) current(ctx context.Context, id string, gen uint64) (*windowEntry, bool) {
	for {
		p.mu.Lock()
		e, ok := p.entries[id]
		if !ok || e.gen != gen {
			p.mu.Unlock()
			return nil, false
		}
		if e.state == statePending {
			done := e.done
			p.mu.Unlock()
			if wait(ctx, done) != nil {
				return nil, false
			}
			continue
		}
		// Caller gets mu held.
		return e, true
	}
}

func (p *WindowPool) handleLoadFinished(ctx context.Context, id string, gen uint64) {
	app, err := p.source.Get(id)
	if err != nil {
		return
	}

	e, ok := p.current(ctx, id, gen)
	if !ok {
		return
	}
	if e.state != stateLive {
		p.mu.Unlock()
		return
	}
	onLoad := app.WantsLoadInjection() && !e.injectedOnLoad
	if onLoad {
		e.injectedOnLoad = true
	}
	onShortcut := e.queuedShortcutInject && app.WantsShortcutInjection()
	e.queuedShortcutInject = false
	handle := e.handle
	p.mu.Unlock()

	log := logging.FromContext(ctx)
	if onLoad {
		if err := p.injector.InjectOnLoad(ctx, handle, id, app.InjectScript); err != nil {
			log.Warn().Err(err).Str("webapp_id", id).Msg("on-load injection failed")
		}
	}
	if onShortcut {
		if err := p.injector.InjectOnShortcut(ctx, handle, id, app.InjectScript); err != nil {
			log.Warn().Err(err).Str("webapp_id", id).Msg("queued shortcut injection failed")
		}
	}
}

func (p *WindowPool) handleFocus(id string, gen uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	e, ok := p.entries[id]
	if !ok || e.gen != gen {
		return
	}
	if e.skipFocus {
		e.skipFocus = false
		return
	}
	if e.state != stateLive {
		return
	}
	e.lastAccess = p.now()
	if !e.applying {
		e.visible = true
	}
}

// handleClosed drops the entry of a window the user closed from the window manager.
// Windows being destroyed by the pool itself are ignored.
func (p *WindowPool) handleClosed(ctx context.Context, id string, gen uint64) {
	e, ok := p.current(ctx, id, gen)
	if !ok {
		return
	}
	defer p.mu.Unlock()
	if e.state != stateLive {
		return
	}
	delete(p.entries, id)
	logging.FromContext(ctx).Info().Str("webapp_id", id).Msg("window closed by user")
}

// Snapshot returns the live windows, least recently used first.
func (p *WindowPool) Snapshot(ctx context.Context) []entity.WindowState {
	type item struct {
		state  entity.WindowState
		order  int
		handle port.NativeWindow
	}

	p.mu.Lock()
	items := make([]item, 0, len(p.entries))
	for _, e := range p.entries {
		if e.state != stateLive {
			continue
		}
		items = append(items, item{
			state: entity.WindowState{
				WebAppID:          e.id,
				Visible:           e.visible,
				Geometry:          e.geometry,
				LastAccessedAt:    e.lastAccess,
				HasInjectedOnLoad: e.injectedOnLoad,
				Proxy:             e.proxy,
			},
			order:  e.order,
			handle: e.handle,
		})
	}
	p.mu.Unlock()

	sort.Slice(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if !a.state.LastAccessedAt.Equal(b.state.LastAccessedAt) {
			return a.state.LastAccessedAt.Before(b.state.LastAccessedAt)
		}
		if a.order != b.order {
			return a.order < b.order
		}
		return a.state.WebAppID < b.state.WebAppID
	})

	out := make([]entity.WindowState, len(items))
	for i, it := range items {
		out[i] = it.state
		if g := it.handle.Geometry(ctx); !g.IsEmpty() {
			out[i].Geometry = g
		}
	}
	return out
}

// Len returns the number of entries, counting windows being created or destroyed.
func (p *WindowPool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.entries)
}

// Max returns the current cap.
func (p *WindowPool) Max() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.max
}

// CloseAll destroys every window and refuses further opens.
func (p *WindowPool) CloseAll(ctx context.Context) error {
	p.mu.Lock()
	p.closed = true
	var live []*windowEntry
	var unsettled []chan struct{}
	for _, e := range p.entries {
		switch e.state {
		case stateLive:
			e.state = stateClosing
			e.done = make(chan struct{})
			live = append(live, e)
		default:
			unsettled = append(unsettled, e.done)
		}
	}
	p.mu.Unlock()

	var result *multierror.Error
	for _, e := range live {
		if err := e.handle.Destroy(ctx); err != nil {
			result = multierror.Append(result, fmt.Errorf("failed to close window %s: %w", e.id, err))
		}
		p.mu.Lock()
		delete(p.entries, e.id)
		close(e.done)
		p.mu.Unlock()
	}
	for _, done := range unsettled {
		if err := wait(ctx, done); err != nil {
			result = multierror.Append(result, err)
			break
		}
	}

	logging.FromContext(ctx).Info().Int("closed", len(live)).Msg("window pool shut down")
	return result.ErrorOrNil()
}
