package webkit

import (
	"context"
	"fmt"
	"path/filepath"
	"sync/atomic"

	webkit "github.com/diamondburned/gotk4-webkitgtk/pkg/webkit/v6"
	"github.com/diamondburned/gotk4/pkg/gio/v2"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"

	"github.com/bnema/webhub/internal/application/port"
	"github.com/bnema/webhub/internal/domain/entity"
	"github.com/bnema/webhub/internal/logging"
)

// nativeWindow is one GTK window hosting one WebView. GTK objects are only
// touched on the main thread; destroyed is the single cross-thread flag.
type nativeWindow struct {
	webappID  string
	win       *gtk.Window
	view      *webkit.WebView
	destroyed atomic.Bool
	fallback  entity.Geometry
}

var _ port.NativeWindow = (*nativeWindow)(nil)

// buildWindow creates and presents the window. Main thread only.
func buildWindow(ctx context.Context, session *webkit.NetworkSession, spec port.WindowSpec, cb port.WindowCallbacks) (*nativeWindow, error) {
	view := newWebViewWithSession(session)
	if view == nil {
		return nil, fmt.Errorf("webkit returned no web view")
	}

	w := &nativeWindow{
		webappID: spec.WebAppID,
		win:      gtk.NewWindow(),
		view:     view,
		fallback: spec.Geometry,
	}
	w.win.SetTitle(spec.Title)
	w.win.SetDefaultSize(spec.Geometry.Width, spec.Geometry.Height)
	if spec.Icon != "" && !filepath.IsAbs(spec.Icon) {
		w.win.SetIconName(spec.Icon)
	}
	w.win.SetChild(view)

	if settings := view.Settings(); settings != nil {
		settings.SetEnableJavascript(true)
		settings.SetHardwareAccelerationPolicy(webkit.HardwareAccelerationPolicyAlways)
	}

	w.connect(ctx, spec, cb)
	view.LoadURI(spec.URL)
	w.win.Present()
	return w, nil
}

// connect wires GTK signals to the callbacks. Callbacks always run on a fresh
// goroutine so the pool never takes its lock on the main thread.
func (w *nativeWindow) connect(ctx context.Context, spec port.WindowSpec, cb port.WindowCallbacks) {
	log := logging.FromContext(ctx)

	w.view.ConnectLoadChanged(func(event webkit.LoadEvent) {
		if event == webkit.LoadFinished && cb.OnLoadFinished != nil && !w.destroyed.Load() {
			go cb.OnLoadFinished()
		}
	})

	w.view.ConnectLoadFailed(func(_ webkit.LoadEvent, failingURI string, err error) bool {
		log.Warn().Err(err).Str("url", failingURI).Msg("page load failed")
		return false
	})

	w.win.NotifyProperty("is-active", func() {
		if w.win.IsActive() && cb.OnFocus != nil && !w.destroyed.Load() {
			go cb.OnFocus()
		}
	})

	w.win.ConnectCloseRequest(func() bool {
		if w.destroyed.Swap(true) {
			return false
		}
		if cb.OnClosed != nil {
			go cb.OnClosed()
		}
		return false
	})

	if spec.Proxy.Username != "" {
		proxy := spec.Proxy
		w.view.ConnectAuthenticate(func(req *webkit.AuthenticationRequest) bool {
			if !req.IsForProxy() {
				return false
			}
			req.Authenticate(webkit.NewCredential(proxy.Username, proxy.Password, webkit.CredentialPersistenceForSession))
			return true
		})
	}
}

func (w *nativeWindow) Show(ctx context.Context) error {
	return Invoke(ctx, func() {
		if !w.destroyed.Load() {
			w.win.Present()
		}
	})
}

func (w *nativeWindow) Hide(ctx context.Context) error {
	return Invoke(ctx, func() {
		if !w.destroyed.Load() {
			w.win.SetVisible(false)
		}
	})
}

func (w *nativeWindow) Destroy(ctx context.Context) error {
	if w.destroyed.Swap(true) {
		return nil
	}
	return Invoke(ctx, func() {
		w.win.Destroy()
	})
}

// EvaluateScript runs script in the page and waits for the engine to finish.
func (w *nativeWindow) EvaluateScript(ctx context.Context, script string) error {
	if w.destroyed.Load() {
		return fmt.Errorf("window %s is destroyed", w.webappID)
	}

	result := make(chan error, 1)
	err := Invoke(ctx, func() {
		w.view.EvaluateJavascript(context.Background(), script, -1, "", "", func(res gio.AsyncResulter) {
			_, err := w.view.EvaluateJavascriptFinish(res)
			result <- err
		})
	})
	if err != nil {
		return err
	}

	select {
	case err := <-result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Geometry reports the current size. GTK4 does not expose window positions.
func (w *nativeWindow) Geometry(ctx context.Context) entity.Geometry {
	g := w.fallback
	if w.destroyed.Load() {
		return g
	}
	_ = Invoke(ctx, func() {
		width, height := w.win.Width(), w.win.Height()
		if width <= 0 || height <= 0 {
			width, height = w.win.DefaultSize()
		}
		if width > 0 && height > 0 {
			g = entity.Geometry{Width: width, Height: height}
		}
	})
	return g
}
