// Package webkit hosts webapp windows in GTK4 + WebKitGTK 6.
package webkit

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/diamondburned/gotk4/pkg/glib/v2"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"
)

var (
	// ErrNoDisplay is returned by Init when GTK cannot open a display.
	ErrNoDisplay = errors.New("gtk: cannot open display")
	// ErrNotInitialized is returned when GTK work is requested before Init.
	ErrNotInitialized = errors.New("gtk main thread not initialized")
)

var (
	initialized atomic.Bool
	loopMu      sync.Mutex
	mainLoop    *glib.MainLoop
)

// Init locks the calling goroutine to its OS thread and initializes GTK on it.
// It must be called from main before RunMainLoop.
func Init() error {
	if initialized.Load() {
		return nil
	}
	runtime.LockOSThread()
	if !gtk.InitCheck() {
		return ErrNoDisplay
	}
	initialized.Store(true)
	return nil
}

// RunMainLoop blocks on the GTK main loop until ctx is done or QuitMainLoop is called.
func RunMainLoop(ctx context.Context) {
	loopMu.Lock()
	if mainLoop == nil {
		mainLoop = glib.NewMainLoop(nil, false)
	}
	loop := mainLoop
	loopMu.Unlock()

	stop := context.AfterFunc(ctx, QuitMainLoop)
	defer stop()
	loop.Run()
}

// QuitMainLoop stops the GTK main loop.
func QuitMainLoop() {
	loopMu.Lock()
	loop := mainLoop
	loopMu.Unlock()
	if loop == nil {
		return
	}
	glib.IdleAdd(func() bool {
		loop.Quit()
		return false
	})
}

// Invoke runs fn on the GTK main thread and waits for it to return.
// It must never be called from the main thread itself.
func Invoke(ctx context.Context, fn func()) error {
	if !initialized.Load() {
		return ErrNotInitialized
	}
	done := make(chan struct{})
	glib.IdleAdd(func() bool {
		defer close(done)
		fn()
		return false
	})
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Post queues fn on the GTK main thread without waiting.
func Post(fn func()) {
	glib.IdleAdd(func() bool {
		fn()
		return false
	})
}
