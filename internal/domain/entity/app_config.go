package entity

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/tiendc/go-deepcopy"
)

// DefaultMaxActiveWindows is the window cap of a fresh configuration.
const DefaultMaxActiveWindows = 5

// AppConfig is the aggregate persisted as one record.
type AppConfig struct {
	WebApps            []WebApp    `json:"webapps" mapstructure:"webapps" toml:"webapps"`
	Proxy              ProxyConfig `json:"proxy" mapstructure:"proxy" toml:"proxy"`
	MaxActiveWindows   int         `json:"maxActiveWindows" mapstructure:"max_active_windows" toml:"max_active_windows"`
	MainWindowShortcut string      `json:"mainWindowShortcut,omitempty" mapstructure:"main_window_shortcut" toml:"main_window_shortcut,omitempty"`
	AutoStart          bool        `json:"autoStart" mapstructure:"auto_start" toml:"auto_start"`
	MinimizeToTray     bool        `json:"minimizeToTray" mapstructure:"minimize_to_tray" toml:"minimize_to_tray"`
}

// DefaultAppConfig returns the configuration used when no file exists yet.
func DefaultAppConfig() *AppConfig {
	return &AppConfig{
		WebApps:          []WebApp{},
		Proxy:            DefaultProxyConfig(),
		MaxActiveWindows: DefaultMaxActiveWindows,
		MinimizeToTray:   true,
	}
}

// Clone returns a deep copy that shares no slices with c.
func (c *AppConfig) Clone() *AppConfig {
	var out AppConfig
	if err := deepcopy.Copy(&out, *c); err != nil {
		// deepcopy only fails on unsupported kinds; AppConfig has none.
		panic(fmt.Sprintf("entity: clone app config: %v", err))
	}
	if out.WebApps == nil {
		out.WebApps = []WebApp{}
	}
	return &out
}

// Normalize canonicalizes shortcuts and the proxy type in place.
// Unparseable shortcuts are left untouched so Validate can report them.
func (c *AppConfig) Normalize() {
	if c.WebApps == nil {
		c.WebApps = []WebApp{}
	}
	if s, err := NormalizeShortcut(c.MainWindowShortcut); err == nil {
		c.MainWindowShortcut = s
	}
	for i := range c.WebApps {
		if s, err := NormalizeShortcut(c.WebApps[i].Shortcut); err == nil {
			c.WebApps[i].Shortcut = s
		}
	}
	c.Proxy = c.Proxy.Normalized()
}

// SortWebApps orders webapps by Order (stable) and renumbers them densely.
func (c *AppConfig) SortWebApps() {
	sort.SliceStable(c.WebApps, func(i, j int) bool {
		return c.WebApps[i].Order < c.WebApps[j].Order
	})
	for i := range c.WebApps {
		c.WebApps[i].Order = i
	}
}

// FindWebApp returns the index of the webapp with the given id, or -1.
func (c *AppConfig) FindWebApp(id string) int {
	for i := range c.WebApps {
		if c.WebApps[i].ID == id {
			return i
		}
	}
	return -1
}

// Validate checks every invariant of the record and reports all problems at once.
// The error always wraps ErrInvalidConfig, and also ErrDuplicateShortcut when two
// targets share a shortcut.
func (c *AppConfig) Validate() error {
	var problems []string
	duplicate := false

	if c.MaxActiveWindows < 1 {
		problems = append(problems, fmt.Sprintf("max_active_windows must be at least 1 (got %d)", c.MaxActiveWindows))
	}
	problems = append(problems, c.Proxy.problems()...)

	owners := make(map[string]string)
	if c.MainWindowShortcut != "" {
		if acc, err := ParseAccelerator(c.MainWindowShortcut); err != nil {
			problems = append(problems, fmt.Sprintf("main_window_shortcut: %v", err))
		} else {
			owners[acc.String()] = "the main window"
		}
	}

	ids := make(map[string]struct{}, len(c.WebApps))
	for i := range c.WebApps {
		w := &c.WebApps[i]
		problems = append(problems, w.problems()...)

		if w.ID != "" {
			if _, seen := ids[w.ID]; seen {
				problems = append(problems, fmt.Sprintf("webapp id %s is used more than once", w.ID))
			}
			ids[w.ID] = struct{}{}
		}

		if w.Shortcut == "" {
			continue
		}
		acc, err := ParseAccelerator(w.Shortcut)
		if err != nil {
			continue // already reported by problems()
		}
		key := acc.String()
		if owner, taken := owners[key]; taken {
			duplicate = true
			problems = append(problems, fmt.Sprintf("shortcut %s of webapp %s is already used by %s", key, w.ID, owner))
			continue
		}
		owners[key] = "webapp " + w.ID
	}

	if len(problems) == 0 {
		return nil
	}
	err := fmt.Errorf("%w: config validation failed:\n  - %s", ErrInvalidConfig, strings.Join(problems, "\n  - "))
	if duplicate {
		return errors.Join(ErrDuplicateShortcut, err)
	}
	return err
}
