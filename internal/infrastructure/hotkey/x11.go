// Package hotkey implements global keyboard shortcuts.
package hotkey

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xevent"

	"github.com/bnema/webhub/internal/application/port"
	"github.com/bnema/webhub/internal/domain/entity"
	"github.com/bnema/webhub/internal/logging"
)

const fireQueueSize = 16

// ErrClosed is returned by Register after Close.
var ErrClosed = errors.New("hotkey backend closed")

// X11Backend grabs shortcuts on the X root window.
// Key presses are queued to a dispatch goroutine so a slow handler never
// stalls the X event loop.
type X11Backend struct {
	mu       sync.Mutex
	xu       *xgbutil.XUtil
	root     xproto.Window
	bindings map[string]x11Binding
	fires    chan func()
	done     chan struct{}
	closed   bool
	ctx      context.Context
}

type x11Binding struct {
	keyStr string
	fire   func()
}

var _ port.HotkeyBackend = (*X11Backend)(nil)

// NewX11Backend connects to the X server named by DISPLAY.
func NewX11Backend(ctx context.Context) (*X11Backend, error) {
	display := os.Getenv("DISPLAY")
	xu, err := xgbutil.NewConnDisplay(display)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to X-server using DISPLAY '%s': %w", display, err)
	}
	keybind.Initialize(xu)

	b := &X11Backend{
		xu:       xu,
		root:     xu.RootWin(),
		bindings: make(map[string]x11Binding),
		fires:    make(chan func(), fireQueueSize),
		done:     make(chan struct{}),
		ctx:      logging.WithComponent(context.WithoutCancel(ctx), "hotkey-x11"),
	}
	go xevent.Main(xu)
	go b.dispatch()

	logging.FromContext(b.ctx).Debug().Str("display", display).Msg("x11 hotkey backend ready")
	return b, nil
}

func (b *X11Backend) dispatch() {
	for {
		select {
		case <-b.done:
			return
		case fire := <-b.fires:
			fire()
		}
	}
}

// Register grabs acc on the root window.
func (b *X11Backend) Register(ctx context.Context, acc entity.Accelerator, fire func()) error {
	keyStr, err := X11KeyString(acc)
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrClosed
	}
	name := acc.String()
	if _, exists := b.bindings[name]; exists {
		return fmt.Errorf("shortcut %s is already grabbed", name)
	}
	if err := b.connectLocked(keyStr, fire); err != nil {
		return fmt.Errorf("failed to grab %s: %w\nAnother application may own this shortcut", name, err)
	}
	b.bindings[name] = x11Binding{keyStr: keyStr, fire: fire}

	logging.FromContext(ctx).Debug().Str("shortcut", name).Str("x11", keyStr).Msg("shortcut grabbed")
	return nil
}

func (b *X11Backend) connectLocked(keyStr string, fire func()) error {
	return keybind.KeyPressFun(func(_ *xgbutil.XUtil, _ xevent.KeyPressEvent) {
		select {
		case b.fires <- fire:
		default:
			logging.FromContext(b.ctx).Warn().Str("x11", keyStr).Msg("dropping shortcut press, dispatch queue full")
		}
	}).Connect(b.xu, b.root, keyStr, true)
}

// Unregister releases acc. keybind only detaches per window, so the remaining
// shortcuts are grabbed again afterwards.
func (b *X11Backend) Unregister(ctx context.Context, acc entity.Accelerator) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	name := acc.String()
	if _, ok := b.bindings[name]; !ok {
		return nil
	}
	delete(b.bindings, name)

	keybind.Detach(b.xu, b.root)
	var errs []error
	for other, binding := range b.bindings {
		if err := b.connectLocked(binding.keyStr, binding.fire); err != nil {
			errs = append(errs, fmt.Errorf("regrab %s: %w", other, err))
		}
	}

	logging.FromContext(ctx).Debug().Str("shortcut", name).Int("remaining", len(b.bindings)).Msg("shortcut released")
	return errors.Join(errs...)
}

// Close releases every grab and disconnects from the X server.
func (b *X11Backend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true

	keybind.Detach(b.xu, b.root)
	b.bindings = map[string]x11Binding{}
	xevent.Quit(b.xu)
	close(b.done)
	b.xu.Conn().Close()
	return nil
}
