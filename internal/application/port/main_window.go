package port

import "context"

//go:generate mockgen -source=main_window.go -destination=mocks/mock_main_window.go

// MainWindow is the hub's list window, toggled by the main-window shortcut.
type MainWindow interface {
	ToggleVisibility(ctx context.Context) error
}
