// Package entity defines domain entities for webhub.
package entity

// Default window size for a webapp when none is given.
const (
	DefaultWindowWidth  = 1024
	DefaultWindowHeight = 768
)

// Geometry represents a window's screen position and size.
// X and Y are zero when the windowing system does not expose positions (Wayland, GTK4).
type Geometry struct {
	X, Y          int
	Width, Height int
}

// Center returns the center point of the rectangle.
func (g Geometry) Center() (cx, cy int) {
	return g.X + g.Width/2, g.Y + g.Height/2
}

// IsEmpty reports whether the geometry has no usable size.
func (g Geometry) IsEmpty() bool {
	return g.Width <= 0 || g.Height <= 0
}
