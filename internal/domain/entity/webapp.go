package entity

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

// WebApp is a user-defined binding of a URL to a launchable window.
type WebApp struct {
	ID               string `json:"id" mapstructure:"id" toml:"id"`
	Name             string `json:"name" mapstructure:"name" toml:"name"`
	URL              string `json:"url" mapstructure:"url" toml:"url"`
	Icon             string `json:"icon,omitempty" mapstructure:"icon" toml:"icon,omitempty"`
	Shortcut         string `json:"shortcut,omitempty" mapstructure:"shortcut" toml:"shortcut,omitempty"`
	Width            int    `json:"width" mapstructure:"width" toml:"width"`
	Height           int    `json:"height" mapstructure:"height" toml:"height"`
	UseProxy         bool   `json:"useProxy" mapstructure:"use_proxy" toml:"use_proxy"`
	Order            int    `json:"order" mapstructure:"order" toml:"order"`
	CreatedAt        int64  `json:"createdAt" mapstructure:"created_at" toml:"created_at"`
	InjectScript     string `json:"injectScript,omitempty" mapstructure:"inject_script" toml:"inject_script,omitempty"`
	InjectOnLoad     bool   `json:"injectOnLoad" mapstructure:"inject_on_load" toml:"inject_on_load"`
	InjectOnShortcut bool   `json:"injectOnShortcut" mapstructure:"inject_on_shortcut" toml:"inject_on_shortcut"`
}

// NewWebApp creates a webapp with a fresh id and default geometry.
func NewWebApp(name, rawURL string) *WebApp {
	return &WebApp{
		ID:        uuid.NewString(),
		Name:      name,
		URL:       rawURL,
		Width:     DefaultWindowWidth,
		Height:    DefaultWindowHeight,
		UseProxy:  true,
		CreatedAt: time.Now().Unix(),
	}
}

// Created returns CreatedAt as a time value.
func (w *WebApp) Created() time.Time {
	return time.Unix(w.CreatedAt, 0)
}

// Geometry returns the initial window geometry for this webapp.
func (w *WebApp) Geometry() Geometry {
	return Geometry{Width: w.Width, Height: w.Height}
}

// HasShortcut reports whether a global shortcut is assigned.
func (w *WebApp) HasShortcut() bool {
	return w.Shortcut != ""
}

// HasScript reports whether an injection script is set.
func (w *WebApp) HasScript() bool {
	return strings.TrimSpace(w.InjectScript) != ""
}

// WantsLoadInjection reports whether the script should run after the first load.
func (w *WebApp) WantsLoadInjection() bool {
	return w.InjectOnLoad && w.HasScript()
}

// WantsShortcutInjection reports whether the script should run on every shortcut recall.
func (w *WebApp) WantsShortcutInjection() bool {
	return w.InjectOnShortcut && w.HasScript()
}

// problems returns every field-level validation failure of the webapp.
func (w *WebApp) problems() []string {
	var out []string
	label := w.ID
	if label == "" {
		label = w.Name
	}

	if w.ID == "" {
		out = append(out, fmt.Sprintf("webapp %q: id must not be empty", w.Name))
	}
	if ShortcutTarget(w.ID).IsMainWindow() {
		out = append(out, fmt.Sprintf("webapp %q: id %s is reserved for the main window", w.Name, w.ID))
	}
	if strings.TrimSpace(w.Name) == "" {
		out = append(out, fmt.Sprintf("webapp %s: name must not be empty", label))
	}
	if err := ValidateWebAppURL(w.URL); err != nil {
		out = append(out, fmt.Sprintf("webapp %s: %v", label, err))
	}
	if w.Width <= 0 || w.Height <= 0 {
		out = append(out, fmt.Sprintf("webapp %s: width and height must be positive (got %dx%d)", label, w.Width, w.Height))
	}
	if w.Shortcut != "" {
		if _, err := ParseAccelerator(w.Shortcut); err != nil {
			out = append(out, fmt.Sprintf("webapp %s: %v", label, err))
		}
	}
	return out
}

// Validate checks the webapp's own fields. Cross-webapp invariants are checked by AppConfig.Validate.
func (w *WebApp) Validate() error {
	if p := w.problems(); len(p) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(p, "; "))
	}
	return nil
}

// ValidateWebAppURL accepts absolute http(s) and file URLs.
func ValidateWebAppURL(raw string) error {
	if strings.TrimSpace(raw) == "" {
		return fmt.Errorf("url must not be empty")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("malformed url %q: %w", raw, err)
	}
	switch u.Scheme {
	case "http", "https":
		if u.Host == "" {
			return fmt.Errorf("url %q has no host", raw)
		}
	case "file":
	default:
		return fmt.Errorf("url %q must use http, https or file", raw)
	}
	return nil
}
