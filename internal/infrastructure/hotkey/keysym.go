package hotkey

import (
	"fmt"
	"strings"

	"github.com/bnema/webhub/internal/domain/entity"
)

// x11Keysyms maps canonical named keys to X keysym names.
var x11Keysyms = map[string]string{
	"Space":        "space",
	"Enter":        "Return",
	"Tab":          "Tab",
	"Escape":       "Escape",
	"Backspace":    "BackSpace",
	"Delete":       "Delete",
	"Insert":       "Insert",
	"Home":         "Home",
	"End":          "End",
	"PageUp":       "Prior",
	"PageDown":     "Next",
	"Up":           "Up",
	"Down":         "Down",
	"Left":         "Left",
	"Right":        "Right",
	"Plus":         "plus",
	"Minus":        "minus",
	"Equal":        "equal",
	"Comma":        "comma",
	"Period":       "period",
	"Slash":        "slash",
	"Backslash":    "backslash",
	"Semicolon":    "semicolon",
	"Quote":        "apostrophe",
	"Backquote":    "grave",
	"BracketLeft":  "bracketleft",
	"BracketRight": "bracketright",
}

// x11Modifiers lists modifiers in the order xgbutil key strings use.
var x11Modifiers = []struct {
	mod  entity.Modifier
	name string
}{
	{entity.ModCommandOrControl, "control"},
	{entity.ModAlt, "mod1"},
	{entity.ModShift, "shift"},
	{entity.ModMeta, "mod4"},
}

// X11KeyString renders acc in the "mod-mod-keysym" form understood by xgbutil/keybind.
func X11KeyString(acc entity.Accelerator) (string, error) {
	key, err := x11Keysym(acc.Key)
	if err != nil {
		return "", err
	}

	parts := make([]string, 0, len(x11Modifiers)+1)
	for _, m := range x11Modifiers {
		if acc.Has(m.mod) {
			parts = append(parts, m.name)
		}
	}
	parts = append(parts, key)
	return strings.Join(parts, "-"), nil
}

func x11Keysym(key string) (string, error) {
	if sym, ok := x11Keysyms[key]; ok {
		return sym, nil
	}
	switch {
	case len(key) == 1 && key[0] >= 'A' && key[0] <= 'Z':
		return strings.ToLower(key), nil
	case len(key) == 1 && key[0] >= '0' && key[0] <= '9':
		return key, nil
	case len(key) >= 2 && key[0] == 'F':
		return key, nil
	}
	return "", fmt.Errorf("%w: key %q has no X11 keysym", entity.ErrInvalidConfig, key)
}
