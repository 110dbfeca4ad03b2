package entity

import "time"

// WindowState is an immutable snapshot of one live webapp window.
type WindowState struct {
	WebAppID          string
	Visible           bool
	Geometry          Geometry
	LastAccessedAt    time.Time
	HasInjectedOnLoad bool
	Proxy             EffectiveProxy
}

// ToggleResult reports what a toggle did to a webapp window.
type ToggleResult int

const (
	// ToggleHidden means a visible window was hidden.
	ToggleHidden ToggleResult = iota
	// ToggleShownExisting means a hidden live window was shown again.
	ToggleShownExisting
	// ToggleCreatedNew means no window was live and a new one was opened.
	ToggleCreatedNew
)

func (r ToggleResult) String() string {
	switch r {
	case ToggleHidden:
		return "hidden"
	case ToggleShownExisting:
		return "shown_existing"
	case ToggleCreatedNew:
		return "created_new"
	}
	return "unknown"
}

// MadeVisible reports whether the toggle left the window visible.
func (r ToggleResult) MadeVisible() bool {
	return r != ToggleHidden
}

// ShortcutTarget identifies what a global shortcut acts on.
// It is either MainWindowTarget or a webapp id.
type ShortcutTarget string

// MainWindowTarget is the shortcut target of the main window.
const MainWindowTarget ShortcutTarget = "__main__"

// WebAppTarget returns the shortcut target of a webapp.
func WebAppTarget(id string) ShortcutTarget {
	return ShortcutTarget(id)
}

// IsMainWindow reports whether the target is the main window.
func (t ShortcutTarget) IsMainWindow() bool {
	return t == MainWindowTarget
}

// WebAppID returns the webapp id of the target, or "" for the main window.
func (t ShortcutTarget) WebAppID() string {
	if t.IsMainWindow() {
		return ""
	}
	return string(t)
}
