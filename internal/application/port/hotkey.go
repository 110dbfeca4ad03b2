package port

import (
	"context"

	"github.com/bnema/webhub/internal/domain/entity"
)

//go:generate mockgen -source=hotkey.go -destination=mocks/mock_hotkey.go

// HotkeyBackend registers process-wide keyboard shortcuts with the OS.
// The fire callback runs on a goroutine owned by the backend, never inside Register or Unregister.
type HotkeyBackend interface {
	Register(ctx context.Context, acc entity.Accelerator, fire func()) error
	Unregister(ctx context.Context, acc entity.Accelerator) error
	Close() error
}
