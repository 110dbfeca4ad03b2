package hub_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/bnema/webhub/internal/app/hub"
	mock_port "github.com/bnema/webhub/internal/application/port/mocks"
	"github.com/bnema/webhub/internal/domain/entity"
)

func accel(t *testing.T, s string) entity.Accelerator {
	t.Helper()
	acc, err := entity.ParseAccelerator(s)
	require.NoError(t, err)
	return acc
}

type recordedActions struct {
	mu      sync.Mutex
	targets []entity.ShortcutTarget
}

func (r *recordedActions) action(_ context.Context, target entity.ShortcutTarget) {
	r.mu.Lock()
	r.targets = append(r.targets, target)
	r.mu.Unlock()
}

func (r *recordedActions) all() []entity.ShortcutTarget {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]entity.ShortcutTarget(nil), r.targets...)
}

func TestShortcutRegistry_DuplicateAndRebind(t *testing.T) {
	ctx := testContext()
	ctrl := gomock.NewController(t)
	backend := mock_port.NewMockHotkeyBackend(ctrl)

	ctrl1 := accel(t, "Ctrl+1")
	ctrl2 := accel(t, "Ctrl+2")

	gomock.InOrder(
		backend.EXPECT().Register(gomock.Any(), ctrl1, gomock.Any()).Return(nil),
		backend.EXPECT().Unregister(gomock.Any(), ctrl1).Return(nil),
		backend.EXPECT().Register(gomock.Any(), ctrl2, gomock.Any()).Return(nil),
		backend.EXPECT().Register(gomock.Any(), ctrl1, gomock.Any()).Return(nil),
	)

	reg := hub.NewShortcutRegistry(backend, nil)
	a, b := entity.WebAppTarget("a"), entity.WebAppTarget("b")

	require.NoError(t, reg.Bind(ctx, "Ctrl+1", a))

	err := reg.Bind(ctx, "control+1", b)
	assert.ErrorIs(t, err, entity.ErrDuplicateShortcut)
	assert.Equal(t, "", reg.ShortcutOf(b))

	require.NoError(t, reg.Bind(ctx, "Ctrl+2", a))
	require.NoError(t, reg.Bind(ctx, "CmdOrCtrl+1", b))

	assert.Equal(t, map[string]entity.ShortcutTarget{
		"CommandOrControl+1": b,
		"CommandOrControl+2": a,
	}, reg.Bindings())
}

func TestShortcutRegistry_BindSameTargetIsNoop(t *testing.T) {
	ctx := testContext()
	ctrl := gomock.NewController(t)
	backend := mock_port.NewMockHotkeyBackend(ctrl)
	backend.EXPECT().Register(gomock.Any(), accel(t, "Alt+M"), gomock.Any()).Return(nil).Times(1)

	reg := hub.NewShortcutRegistry(backend, nil)
	require.NoError(t, reg.Bind(ctx, "Alt+M", entity.MainWindowTarget))
	require.NoError(t, reg.Bind(ctx, "alt+m", entity.MainWindowTarget))
}

func TestShortcutRegistry_RegisterFailureRestoresPrevious(t *testing.T) {
	ctx := testContext()
	ctrl := gomock.NewController(t)
	backend := mock_port.NewMockHotkeyBackend(ctrl)

	ctrl1 := accel(t, "Ctrl+1")
	ctrl2 := accel(t, "Ctrl+2")
	grabbed := errors.New("key already grabbed by another client")

	gomock.InOrder(
		backend.EXPECT().Register(gomock.Any(), ctrl1, gomock.Any()).Return(nil),
		backend.EXPECT().Unregister(gomock.Any(), ctrl1).Return(nil),
		backend.EXPECT().Register(gomock.Any(), ctrl2, gomock.Any()).Return(grabbed),
		backend.EXPECT().Register(gomock.Any(), ctrl1, gomock.Any()).Return(nil),
	)

	reg := hub.NewShortcutRegistry(backend, nil)
	a := entity.WebAppTarget("a")
	require.NoError(t, reg.Bind(ctx, "Ctrl+1", a))

	err := reg.Bind(ctx, "Ctrl+2", a)
	assert.ErrorIs(t, err, grabbed)
	assert.Equal(t, "CommandOrControl+1", reg.ShortcutOf(a))

	target, ok := reg.Lookup("Ctrl+1")
	assert.True(t, ok)
	assert.Equal(t, a, target)
}

func TestShortcutRegistry_InvalidShortcut(t *testing.T) {
	ctrl := gomock.NewController(t)
	backend := mock_port.NewMockHotkeyBackend(ctrl)

	reg := hub.NewShortcutRegistry(backend, nil)
	err := reg.Bind(testContext(), "Ctrl+Shift", entity.WebAppTarget("a"))
	assert.ErrorIs(t, err, entity.ErrInvalidConfig)
	assert.Empty(t, reg.Bindings())
}

func TestShortcutRegistry_DispatchResolvesTarget(t *testing.T) {
	ctx := testContext()
	hotkeys := newFakeHotkeys()
	rec := &recordedActions{}
	reg := hub.NewShortcutRegistry(hotkeys, rec.action)

	require.NoError(t, reg.Bind(ctx, "Ctrl+Alt+M", entity.MainWindowTarget))
	require.NoError(t, reg.Bind(ctx, "Ctrl+1", entity.WebAppTarget("mail")))

	assert.True(t, hotkeys.press("ctrl+1"))
	assert.True(t, hotkeys.press("Alt+Control+m"))
	reg.Dispatch(ctx, "Ctrl+9")

	assert.Equal(t, []entity.ShortcutTarget{entity.WebAppTarget("mail"), entity.MainWindowTarget}, rec.all())
}

func TestShortcutRegistry_StaleFireAfterUnbindIsIgnored(t *testing.T) {
	ctx := testContext()
	ctrl := gomock.NewController(t)
	backend := mock_port.NewMockHotkeyBackend(ctrl)

	var fire func()
	backend.EXPECT().Register(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ entity.Accelerator, f func()) error {
			fire = f
			return nil
		})
	backend.EXPECT().Unregister(gomock.Any(), gomock.Any()).Return(errors.New("BadAccess"))

	rec := &recordedActions{}
	reg := hub.NewShortcutRegistry(backend, rec.action)
	a := entity.WebAppTarget("a")

	require.NoError(t, reg.Bind(ctx, "Ctrl+1", a))
	assert.Error(t, reg.Unbind(ctx, a), "OS failure is reported")
	assert.Empty(t, reg.Bindings(), "binding is dropped anyway")

	require.NotNil(t, fire)
	fire()
	assert.Empty(t, rec.all())
}

func TestShortcutRegistry_RebuildAggregatesFailures(t *testing.T) {
	ctx := testContext()
	hotkeys := newFakeHotkeys()
	hotkeys.failOn["CommandOrControl+2"] = errors.New("grabbed")
	reg := hub.NewShortcutRegistry(hotkeys, nil)

	require.NoError(t, reg.Bind(ctx, "Ctrl+9", entity.WebAppTarget("old")))

	a := testApp("a", 0)
	a.Shortcut = "CommandOrControl+1"
	b := testApp("b", 1)
	b.Shortcut = "CommandOrControl+2"
	c := testApp("c", 2)

	err := reg.Rebuild(ctx, "Alt+Space", []entity.WebApp{a, b, c})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "webapp b")

	assert.Equal(t, map[string]entity.ShortcutTarget{
		"Alt+Space":          entity.MainWindowTarget,
		"CommandOrControl+1": entity.WebAppTarget("a"),
	}, reg.Bindings())
	assert.ElementsMatch(t, []string{"Alt+Space", "CommandOrControl+1"}, hotkeys.registered())
}

func TestShortcutRegistry_Close(t *testing.T) {
	ctx := testContext()
	hotkeys := newFakeHotkeys()
	reg := hub.NewShortcutRegistry(hotkeys, nil)

	require.NoError(t, reg.Bind(ctx, "Ctrl+1", entity.WebAppTarget("a")))
	require.NoError(t, reg.Close(ctx))

	assert.Empty(t, hotkeys.registered())
	assert.True(t, hotkeys.closed)
}
