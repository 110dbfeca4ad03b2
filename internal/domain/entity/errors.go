package entity

import "errors"

// Error kinds surfaced by the hub to its callers. Callers match them with errors.Is;
// the hub wraps them with context using fmt.Errorf("%w: ...").
var (
	// ErrDuplicateShortcut means the normalized shortcut is already bound to another target.
	ErrDuplicateShortcut = errors.New("duplicate shortcut")
	// ErrResourceExhausted means a window had to be evicted to make room and refused to close.
	ErrResourceExhausted = errors.New("resource exhausted")
	// ErrCreationFailed means the native window could not be constructed.
	ErrCreationFailed = errors.New("window creation failed")
	// ErrInjectionFailed means a script could not be delivered into a window's content.
	ErrInjectionFailed = errors.New("script injection failed")
	// ErrNotFound means an operation referenced an unknown webapp id.
	ErrNotFound = errors.New("webapp not found")
	// ErrInvalidConfig means input was rejected at the boundary.
	ErrInvalidConfig = errors.New("invalid config")
)
