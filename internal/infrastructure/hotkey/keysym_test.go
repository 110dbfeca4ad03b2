package hotkey

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/webhub/internal/domain/entity"
)

func TestX11KeyString(t *testing.T) {
	tests := []struct {
		shortcut string
		want     string
	}{
		{"Ctrl+1", "control-1"},
		{"Ctrl+Alt+M", "control-mod1-m"},
		{"Super+Shift+Space", "shift-mod4-space"},
		{"Alt+PageDown", "mod1-Next"},
		{"Ctrl+Shift+Plus", "control-shift-plus"},
		{"Meta+Enter", "mod4-Return"},
		{"F5", "F5"},
		{"Ctrl+'", "control-apostrophe"},
	}

	for _, tt := range tests {
		t.Run(tt.shortcut, func(t *testing.T) {
			acc, err := entity.ParseAccelerator(tt.shortcut)
			require.NoError(t, err)

			got, err := X11KeyString(acc)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestX11KeyString_UnknownKey(t *testing.T) {
	_, err := X11KeyString(entity.Accelerator{Modifiers: entity.ModAlt, Key: "Hyper"})
	assert.ErrorIs(t, err, entity.ErrInvalidConfig)
}
