package entity

import (
	"fmt"
	"strings"
)

// Modifier is a single accelerator modifier flag.
type Modifier uint8

const (
	// ModCommandOrControl is Control on Linux/Windows and Command on macOS.
	ModCommandOrControl Modifier = 1 << iota
	// ModAlt is the Alt (Option) key.
	ModAlt
	// ModShift is the Shift key.
	ModShift
	// ModMeta is the Super/Windows/Meta key.
	ModMeta
)

// canonicalModifiers lists modifiers in the order they appear in a normalized string.
var canonicalModifiers = []struct {
	mod  Modifier
	name string
}{
	{ModCommandOrControl, "CommandOrControl"},
	{ModAlt, "Alt"},
	{ModShift, "Shift"},
	{ModMeta, "Meta"},
}

var modifierByName = map[string]Modifier{
	"commandorcontrol": ModCommandOrControl,
	"cmdorctrl":        ModCommandOrControl,
	"cmdorcontrol":     ModCommandOrControl,
	"commandorctrl":    ModCommandOrControl,
	"ctrl":             ModCommandOrControl,
	"control":          ModCommandOrControl,
	"cmd":              ModCommandOrControl,
	"command":          ModCommandOrControl,
	"alt":              ModAlt,
	"option":           ModAlt,
	"shift":            ModShift,
	"meta":             ModMeta,
	"super":            ModMeta,
	"win":              ModMeta,
	"windows":          ModMeta,
}

// namedKeys maps lowercase key aliases to their canonical token.
var namedKeys = map[string]string{
	"space":      "Space",
	"enter":      "Enter",
	"return":     "Enter",
	"tab":        "Tab",
	"escape":     "Escape",
	"esc":        "Escape",
	"backspace":  "Backspace",
	"delete":     "Delete",
	"del":        "Delete",
	"insert":     "Insert",
	"home":       "Home",
	"end":        "End",
	"pageup":     "PageUp",
	"page_up":    "PageUp",
	"pagedown":   "PageDown",
	"page_down":  "PageDown",
	"up":         "Up",
	"arrowup":    "Up",
	"down":       "Down",
	"arrowdown":  "Down",
	"left":       "Left",
	"arrowleft":  "Left",
	"right":      "Right",
	"arrowright": "Right",
	"plus":       "Plus",
	"+":          "Plus",
	"minus":      "Minus",
	"-":          "Minus",
	"equal":      "Equal",
	"=":          "Equal",
	"comma":      "Comma",
	",":          "Comma",
	"period":     "Period",
	".":          "Period",
	"slash":      "Slash",
	"/":          "Slash",
	"backslash":  "Backslash",
	"\\":         "Backslash",
	"semicolon":  "Semicolon",
	";":          "Semicolon",
	"quote":      "Quote",
	"'":          "Quote",
	"backquote":  "Backquote",
	"`":          "Backquote",
	"[":          "BracketLeft",
	"]":          "BracketRight",
}

// Accelerator is a parsed global shortcut: a set of modifiers plus exactly one key.
type Accelerator struct {
	Modifiers Modifier
	Key       string // canonical key token, e.g. "A", "1", "F5", "Space"
}

// Has reports whether the accelerator carries the given modifier.
func (a Accelerator) Has(m Modifier) bool {
	return a.Modifiers&m != 0
}

// String returns the normalized form, e.g. "CommandOrControl+Shift+K".
// Two accelerators denote the same binding iff their strings are equal.
func (a Accelerator) String() string {
	parts := make([]string, 0, len(canonicalModifiers)+1)
	for _, m := range canonicalModifiers {
		if a.Modifiers&m.mod != 0 {
			parts = append(parts, m.name)
		}
	}
	parts = append(parts, a.Key)
	return strings.Join(parts, "+")
}

// ParseAccelerator converts a user-supplied shortcut like "ctrl+shift+k" into an Accelerator.
// Returns an error wrapping ErrInvalidConfig if the string cannot be parsed.
func ParseAccelerator(s string) (Accelerator, error) {
	raw := s
	s = strings.TrimSpace(s)
	if s == "" {
		return Accelerator{}, fmt.Errorf("%w: empty shortcut", ErrInvalidConfig)
	}

	var (
		mods    Modifier
		keyPart string
	)

	for _, part := range strings.Split(s, "+") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if mod, ok := modifierByName[strings.ToLower(part)]; ok {
			mods |= mod
			continue
		}
		if keyPart != "" {
			return Accelerator{}, fmt.Errorf("%w: shortcut %q has more than one key", ErrInvalidConfig, raw)
		}
		keyPart = part
	}

	// "Ctrl++" / "Alt+Shift++" bind the plus key itself.
	if keyPart == "" && strings.HasSuffix(s, "++") {
		keyPart = "+"
	}
	if keyPart == "" {
		return Accelerator{}, fmt.Errorf("%w: shortcut %q has no key", ErrInvalidConfig, raw)
	}

	key, ok := canonicalKey(keyPart)
	if !ok {
		return Accelerator{}, fmt.Errorf("%w: shortcut %q has unknown key %q", ErrInvalidConfig, raw, keyPart)
	}

	// A global grab on a bare printable key would swallow normal typing.
	if mods == 0 && !isFunctionKey(key) {
		return Accelerator{}, fmt.Errorf("%w: shortcut %q needs at least one modifier", ErrInvalidConfig, raw)
	}

	return Accelerator{Modifiers: mods, Key: key}, nil
}

// NormalizeShortcut parses and re-renders a shortcut string.
// The empty string normalizes to itself and means "no shortcut".
func NormalizeShortcut(s string) (string, error) {
	if strings.TrimSpace(s) == "" {
		return "", nil
	}
	acc, err := ParseAccelerator(s)
	if err != nil {
		return "", err
	}
	return acc.String(), nil
}

func canonicalKey(s string) (string, bool) {
	lower := strings.ToLower(s)
	if key, ok := namedKeys[lower]; ok {
		return key, true
	}

	if len(s) == 1 {
		c := s[0]
		switch {
		case c >= 'a' && c <= 'z':
			return string(c - 'a' + 'A'), true
		case c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
			return s, true
		}
		return "", false
	}

	if lower[0] == 'f' {
		var n int
		if _, err := fmt.Sscanf(lower[1:], "%d", &n); err == nil && n >= 1 && n <= 24 && fmt.Sprint(n) == lower[1:] {
			return fmt.Sprintf("F%d", n), true
		}
	}

	return "", false
}

func isFunctionKey(key string) bool {
	return len(key) >= 2 && key[0] == 'F' && key[1] >= '1' && key[1] <= '9'
}
