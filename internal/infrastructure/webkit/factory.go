package webkit

import (
	"context"
	"fmt"

	"github.com/bnema/webhub/internal/application/port"
	"github.com/bnema/webhub/internal/logging"
)

// Factory creates webapp windows on the GTK main thread.
type Factory struct {
	sessions *sessionPool
}

var _ port.WindowFactory = (*Factory)(nil)

// NewFactory creates a factory whose windows store website data under dirs.
func NewFactory(dirs SessionDirs) *Factory {
	return &Factory{sessions: newSessionPool(dirs)}
}

// CreateWindow builds, loads and presents a window for spec.
func (f *Factory) CreateWindow(ctx context.Context, spec port.WindowSpec, callbacks port.WindowCallbacks) (port.NativeWindow, error) {
	ctx = logging.WithWebAppID(ctx, spec.WebAppID)
	log := logging.FromContext(ctx)

	var (
		win *nativeWindow
		err error
	)
	invokeErr := Invoke(ctx, func() {
		if ctx.Err() != nil {
			err = ctx.Err()
			return
		}
		session := f.sessions.sessionFor(spec.Proxy)
		win, err = buildWindow(ctx, session, spec, callbacks)
	})
	if invokeErr != nil {
		return nil, invokeErr
	}
	if err != nil {
		return nil, fmt.Errorf("create window for %s: %w", spec.WebAppID, err)
	}

	log.Debug().
		Str("url", spec.URL).
		Bool("proxied", !spec.Proxy.IsNone()).
		Int("width", spec.Geometry.Width).
		Int("height", spec.Geometry.Height).
		Msg("native window created")
	return win, nil
}
