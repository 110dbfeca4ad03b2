package port

import (
	"context"

	"github.com/bnema/webhub/internal/domain/entity"
)

//go:generate mockgen -source=window.go -destination=mocks/mock_window.go

// WindowSpec carries everything a native webapp window needs at creation time.
// Proxy parameters cannot be changed once the window exists.
type WindowSpec struct {
	WebAppID string
	Title    string
	URL      string
	Icon     string
	Geometry entity.Geometry
	Proxy    entity.EffectiveProxy
}

// WindowCallbacks are invoked by the platform for events on one native window.
// Implementations must deliver them off the UI thread and never while holding
// a platform lock, since handlers call back into the window pool.
type WindowCallbacks struct {
	// OnLoadFinished fires every time the main frame finishes loading.
	OnLoadFinished func()
	// OnFocus fires when the window gains keyboard focus.
	OnFocus func()
	// OnClosed fires when the user closed the window from the window manager.
	OnClosed func()
}

// WindowFactory creates native webapp windows. A created window is already visible.
type WindowFactory interface {
	CreateWindow(ctx context.Context, spec WindowSpec, callbacks WindowCallbacks) (NativeWindow, error)
}

// NativeWindow is an owned platform window handle.
// Destroy releases it; every method called after Destroy is a no-op.
type NativeWindow interface {
	Show(ctx context.Context) error
	Hide(ctx context.Context) error
	Destroy(ctx context.Context) error
	EvaluateScript(ctx context.Context, script string) error
	Geometry(ctx context.Context) entity.Geometry
}
