// Package headless provides a window factory without a display. Offline CLI
// commands use it so they can run the hub's validation and persistence paths.
package headless

import (
	"context"
	"errors"

	"github.com/bnema/webhub/internal/application/port"
	"github.com/bnema/webhub/internal/logging"
)

// ErrNoDisplay is returned when a command tries to open a window offline.
var ErrNoDisplay = errors.New("no display: start the GUI with `webhub run` to open webapps")

// Factory refuses to create windows.
type Factory struct{}

var _ port.WindowFactory = Factory{}

func (Factory) CreateWindow(ctx context.Context, spec port.WindowSpec, _ port.WindowCallbacks) (port.NativeWindow, error) {
	logging.FromContext(ctx).Debug().Str("webapp_id", spec.WebAppID).Msg("headless factory refused window")
	return nil, ErrNoDisplay
}
