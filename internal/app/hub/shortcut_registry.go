package hub

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/hashicorp/go-multierror"

	"github.com/bnema/webhub/internal/application/port"
	"github.com/bnema/webhub/internal/domain/entity"
	"github.com/bnema/webhub/internal/logging"
)

// ShortcutAction runs when a bound global shortcut fires.
type ShortcutAction func(ctx context.Context, target entity.ShortcutTarget)

// ShortcutRegistry keeps a 1:1 mapping between normalized accelerators and targets,
// and keeps the OS hotkey registrations in sync with it.
type ShortcutRegistry struct {
	mu       sync.Mutex
	backend  port.HotkeyBackend
	byAccel  map[string]entity.ShortcutTarget
	byTarget map[entity.ShortcutTarget]entity.Accelerator
	action   ShortcutAction
}

// NewShortcutRegistry creates an empty registry. action receives every resolved dispatch.
func NewShortcutRegistry(backend port.HotkeyBackend, action ShortcutAction) *ShortcutRegistry {
	return &ShortcutRegistry{
		backend:  backend,
		byAccel:  make(map[string]entity.ShortcutTarget),
		byTarget: make(map[entity.ShortcutTarget]entity.Accelerator),
		action:   action,
	}
}

// Bind assigns shortcut to target, replacing target's previous shortcut.
// It fails with ErrDuplicateShortcut when the shortcut belongs to another target.
func (r *ShortcutRegistry) Bind(ctx context.Context, shortcut string, target entity.ShortcutTarget) error {
	acc, err := entity.ParseAccelerator(shortcut)
	if err != nil {
		return err
	}
	key := acc.String()
	log := logging.FromContext(ctx)

	r.mu.Lock()
	defer r.mu.Unlock()

	if owner, taken := r.byAccel[key]; taken {
		if owner == target {
			return nil
		}
		return fmt.Errorf("%w: %s is bound to %s", entity.ErrDuplicateShortcut, key, describeTarget(owner))
	}

	prev, hadPrev := r.byTarget[target]
	if hadPrev {
		// A stale OS grab is harmless once the binding is gone.
		_ = r.unbindLocked(ctx, target, prev)
	}

	if err := r.backend.Register(ctx, acc, r.fire(ctx, key)); err != nil {
		if hadPrev {
			if rerr := r.backend.Register(ctx, prev, r.fire(ctx, prev.String())); rerr == nil {
				r.byAccel[prev.String()] = target
				r.byTarget[target] = prev
			} else {
				log.Warn().Err(rerr).Str("shortcut", prev.String()).Msg("failed to restore previous shortcut")
			}
		}
		return fmt.Errorf("failed to register shortcut %s: %w", key, err)
	}

	r.byAccel[key] = target
	r.byTarget[target] = acc
	log.Debug().Str("shortcut", key).Str("target", string(target)).Msg("shortcut bound")
	return nil
}

// Unbind removes whatever shortcut is bound to target. No-op if none.
func (r *ShortcutRegistry) Unbind(ctx context.Context, target entity.ShortcutTarget) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	acc, ok := r.byTarget[target]
	if !ok {
		return nil
	}
	return r.unbindLocked(ctx, target, acc)
}

// unbindLocked drops the binding even if the OS refuses to unregister it; a stray
// callback from a stale grab resolves to nothing and is ignored by Dispatch.
func (r *ShortcutRegistry) unbindLocked(ctx context.Context, target entity.ShortcutTarget, acc entity.Accelerator) error {
	delete(r.byAccel, acc.String())
	delete(r.byTarget, target)
	if err := r.backend.Unregister(ctx, acc); err != nil {
		logging.FromContext(ctx).Warn().Err(err).Str("shortcut", acc.String()).Msg("failed to unregister shortcut")
		return fmt.Errorf("failed to unregister shortcut %s: %w", acc.String(), err)
	}
	logging.FromContext(ctx).Debug().Str("shortcut", acc.String()).Str("target", string(target)).Msg("shortcut unbound")
	return nil
}

func (r *ShortcutRegistry) fire(ctx context.Context, shortcut string) func() {
	ctx = context.WithoutCancel(ctx)
	return func() { r.Dispatch(ctx, shortcut) }
}

// Dispatch resolves shortcut and runs the action for its target.
// Unknown shortcuts are ignored: a callback may race with an unbind.
func (r *ShortcutRegistry) Dispatch(ctx context.Context, shortcut string) {
	ctx = logging.WithShortcut(ctx, shortcut)
	log := logging.FromContext(ctx)

	target, ok := r.Lookup(shortcut)
	if !ok {
		log.Debug().Msg("ignoring unbound shortcut")
		return
	}
	log.Debug().Str("target", string(target)).Msg("shortcut fired")
	if r.action != nil {
		r.action(ctx, target)
	}
}

// Lookup returns the target bound to shortcut.
func (r *ShortcutRegistry) Lookup(shortcut string) (entity.ShortcutTarget, bool) {
	key, err := entity.NormalizeShortcut(shortcut)
	if err != nil || key == "" {
		return "", false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	target, ok := r.byAccel[key]
	return target, ok
}

// ShortcutOf returns the normalized shortcut bound to target, or "".
func (r *ShortcutRegistry) ShortcutOf(target entity.ShortcutTarget) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if acc, ok := r.byTarget[target]; ok {
		return acc.String()
	}
	return ""
}

// Bindings returns a copy of the accelerator→target map.
func (r *ShortcutRegistry) Bindings() map[string]entity.ShortcutTarget {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]entity.ShortcutTarget, len(r.byAccel))
	for k, v := range r.byAccel {
		out[k] = v
	}
	return out
}

// Rebuild replaces every binding with the main window shortcut and the webapps'
// shortcuts. Individual failures do not stop the rebuild; they are returned together.
func (r *ShortcutRegistry) Rebuild(ctx context.Context, mainShortcut string, apps []entity.WebApp) error {
	var result *multierror.Error
	if err := r.unbindAll(ctx); err != nil {
		result = multierror.Append(result, err)
	}

	if mainShortcut != "" {
		if err := r.Bind(ctx, mainShortcut, entity.MainWindowTarget); err != nil {
			result = multierror.Append(result, fmt.Errorf("main window: %w", err))
		}
	}
	for _, app := range apps {
		if app.Shortcut == "" {
			continue
		}
		if err := r.Bind(ctx, app.Shortcut, entity.WebAppTarget(app.ID)); err != nil {
			result = multierror.Append(result, fmt.Errorf("webapp %s: %w", app.ID, err))
		}
	}

	logging.FromContext(ctx).Info().Int("bindings", len(r.Bindings())).Msg("shortcuts rebuilt")
	return result.ErrorOrNil()
}

func (r *ShortcutRegistry) unbindAll(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	targets := make([]entity.ShortcutTarget, 0, len(r.byTarget))
	for t := range r.byTarget {
		targets = append(targets, t)
	}
	sort.Slice(targets, func(i, j int) bool { return targets[i] < targets[j] })

	var result *multierror.Error
	for _, t := range targets {
		if err := r.unbindLocked(ctx, t, r.byTarget[t]); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}

// Close unregisters every shortcut and releases the backend.
func (r *ShortcutRegistry) Close(ctx context.Context) error {
	var result *multierror.Error
	if err := r.unbindAll(ctx); err != nil {
		result = multierror.Append(result, err)
	}
	if err := r.backend.Close(); err != nil {
		result = multierror.Append(result, fmt.Errorf("failed to close hotkey backend: %w", err))
	}
	return result.ErrorOrNil()
}

func describeTarget(t entity.ShortcutTarget) string {
	if t.IsMainWindow() {
		return "the main window"
	}
	return "webapp " + string(t)
}
