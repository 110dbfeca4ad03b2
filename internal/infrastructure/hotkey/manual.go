package hotkey

import (
	"context"
	"os"
	"sync"

	"github.com/bnema/webhub/internal/application/port"
	"github.com/bnema/webhub/internal/domain/entity"
	"github.com/bnema/webhub/internal/logging"
)

// ManualBackend keeps bindings without grabbing anything from the OS.
// Shortcuts fire only through Press, which the control socket uses so that
// compositor keybindings can drive webhub where X11 grabs are unavailable.
type ManualBackend struct {
	mu       sync.Mutex
	bindings map[string]func()
}

var _ port.HotkeyBackend = (*ManualBackend)(nil)

// NewManualBackend creates an empty manual backend.
func NewManualBackend() *ManualBackend {
	return &ManualBackend{bindings: make(map[string]func())}
}

// Register binds acc to fire, replacing any earlier binding of the same shortcut.
func (b *ManualBackend) Register(_ context.Context, acc entity.Accelerator, fire func()) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.bindings[acc.String()] = fire
	return nil
}

// Unregister drops the binding of acc. Unknown shortcuts are ignored.
func (b *ManualBackend) Unregister(_ context.Context, acc entity.Accelerator) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.bindings, acc.String())
	return nil
}

// Close drops every binding.
func (b *ManualBackend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.bindings = make(map[string]func())
	return nil
}

// Press fires the binding for shortcut on a new goroutine. It reports false
// when the shortcut is malformed or unbound.
func (b *ManualBackend) Press(shortcut string) bool {
	acc, err := entity.ParseAccelerator(shortcut)
	if err != nil {
		return false
	}
	b.mu.Lock()
	fire, ok := b.bindings[acc.String()]
	b.mu.Unlock()
	if !ok {
		return false
	}
	go fire()
	return true
}

// Registered returns the normalized shortcuts currently bound.
func (b *ManualBackend) Registered() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, 0, len(b.bindings))
	for name := range b.bindings {
		out = append(out, name)
	}
	return out
}

// New returns the X11 backend when an X display is reachable, and the manual
// backend otherwise.
func New(ctx context.Context) port.HotkeyBackend {
	log := logging.FromContext(ctx)
	if os.Getenv("DISPLAY") == "" {
		log.Info().Msg("no X display, global shortcuts only fire through the control socket")
		return NewManualBackend()
	}
	b, err := NewX11Backend(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("x11 hotkeys unavailable, falling back to manual backend")
		return NewManualBackend()
	}
	return b
}
