package hotkey

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/webhub/internal/domain/entity"
)

func TestManualBackend_Press(t *testing.T) {
	ctx := context.Background()
	b := NewManualBackend()

	acc, err := entity.ParseAccelerator("Ctrl+1")
	require.NoError(t, err)

	fired := make(chan struct{}, 1)
	require.NoError(t, b.Register(ctx, acc, func() { fired <- struct{}{} }))
	assert.Equal(t, []string{"CommandOrControl+1"}, b.Registered())

	assert.True(t, b.Press("control+1"))
	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("binding did not fire")
	}

	assert.False(t, b.Press("Ctrl+2"), "unbound")
	assert.False(t, b.Press("Ctrl+"), "malformed")

	require.NoError(t, b.Unregister(ctx, acc))
	assert.False(t, b.Press("Ctrl+1"))
	assert.Empty(t, b.Registered())
}

func TestManualBackend_RegisterReplacesAndUnregisterIgnoresUnknown(t *testing.T) {
	ctx := context.Background()
	b := NewManualBackend()
	acc, err := entity.ParseAccelerator("Alt+M")
	require.NoError(t, err)

	fired := make(chan string, 2)
	require.NoError(t, b.Register(ctx, acc, func() { fired <- "first" }))
	require.NoError(t, b.Register(ctx, acc, func() { fired <- "second" }))
	assert.Equal(t, []string{"Alt+M"}, b.Registered())

	require.True(t, b.Press("alt+m"))
	select {
	case got := <-fired:
		assert.Equal(t, "second", got)
	case <-time.After(time.Second):
		t.Fatal("binding did not fire")
	}

	other, err := entity.ParseAccelerator("Alt+N")
	require.NoError(t, err)
	assert.NoError(t, b.Unregister(ctx, other))
	assert.Equal(t, []string{"Alt+M"}, b.Registered())
}

func TestManualBackend_CloseDropsBindings(t *testing.T) {
	ctx := context.Background()
	b := NewManualBackend()
	acc, err := entity.ParseAccelerator("Alt+M")
	require.NoError(t, err)
	require.NoError(t, b.Register(ctx, acc, func() {}))

	require.NoError(t, b.Close())
	assert.Empty(t, b.Registered())
}

func TestNew_WithoutDisplay(t *testing.T) {
	t.Setenv("DISPLAY", "")
	_, ok := New(context.Background()).(*ManualBackend)
	assert.True(t, ok)
}
