package hub_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/webhub/internal/app/hub"
	"github.com/bnema/webhub/internal/domain/entity"
)

func orderOf(t *testing.T, r *hub.Registry, id string) int {
	t.Helper()
	app, err := r.Get(id)
	require.NoError(t, err)
	return app.Order
}

func TestRegistry_AddAppendsAtEnd(t *testing.T) {
	r := hub.NewRegistry(testConfig(3, testApp("a", 0), testApp("b", 4)))

	added, err := r.Add(testApp("c", 0))
	require.NoError(t, err)
	assert.Equal(t, 5, added.Order)

	ids := []string{}
	for _, w := range r.List() {
		ids = append(ids, w.ID)
	}
	assert.Equal(t, []string{"a", "b", "c"}, ids)
}

func TestRegistry_AddRejectsInvalidRecord(t *testing.T) {
	first := testApp("a", 0)
	first.Shortcut = "CommandOrControl+1"
	r := hub.NewRegistry(testConfig(3, first))

	dup := testApp("b", 0)
	dup.Shortcut = "CommandOrControl+1"
	_, err := r.Add(dup)
	assert.ErrorIs(t, err, entity.ErrDuplicateShortcut)

	bad := testApp("c", 0)
	bad.URL = "ftp://nope"
	_, err = r.Add(bad)
	assert.ErrorIs(t, err, entity.ErrInvalidConfig)

	assert.False(t, r.Has("b"))
	assert.False(t, r.Has("c"))
}

func TestRegistry_Update(t *testing.T) {
	r := hub.NewRegistry(testConfig(3, testApp("a", 0)))

	before, after, err := r.Update("a", func(w *entity.WebApp) error {
		w.Name = "Mail"
		w.ID = "hijacked"
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "app-a", before.Name)
	assert.Equal(t, "Mail", after.Name)
	assert.Equal(t, "a", after.ID, "id is immutable")

	_, _, err = r.Update("a", func(w *entity.WebApp) error {
		w.Width = 0
		return nil
	})
	assert.ErrorIs(t, err, entity.ErrInvalidConfig)

	got, err := r.Get("a")
	require.NoError(t, err)
	assert.Equal(t, entity.DefaultWindowWidth, got.Width, "failed update leaves record untouched")

	require.NoError(t, r.Put(before))
	got, err = r.Get("a")
	require.NoError(t, err)
	assert.Equal(t, "app-a", got.Name)

	_, _, err = r.Update("ghost", func(*entity.WebApp) error { return nil })
	assert.ErrorIs(t, err, entity.ErrNotFound)
}

func TestRegistry_Remove(t *testing.T) {
	r := hub.NewRegistry(testConfig(3, testApp("a", 0), testApp("b", 1)))

	removed, err := r.Remove("a")
	require.NoError(t, err)
	assert.Equal(t, "a", removed.ID)
	assert.False(t, r.Has("a"))

	_, err = r.Get("a")
	assert.ErrorIs(t, err, entity.ErrNotFound)
	_, err = r.Remove("a")
	assert.ErrorIs(t, err, entity.ErrNotFound)
}

func TestRegistry_Reorder(t *testing.T) {
	r := hub.NewRegistry(testConfig(3, testApp("a", 0), testApp("b", 1), testApp("c", 2), testApp("d", 3)))

	orders, err := r.Reorder([]string{"c", "a"})
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"c": 0, "a": 1, "b": 2, "d": 3}, orders)
	for id, want := range orders {
		assert.Equal(t, want, orderOf(t, r, id))
	}

	_, err = r.Reorder([]string{"a", "a"})
	assert.ErrorIs(t, err, entity.ErrInvalidConfig)

	_, err = r.Reorder([]string{"a", "ghost"})
	assert.ErrorIs(t, err, entity.ErrNotFound)
	assert.Equal(t, 1, orderOf(t, r, "a"), "rejected reorder leaves orders untouched")
}

func TestRegistry_ProxyAndLimits(t *testing.T) {
	r := hub.NewRegistry(testConfig(3))

	err := r.SetProxy(entity.ProxyConfig{Enabled: true, Port: 8080})
	assert.ErrorIs(t, err, entity.ErrInvalidConfig)
	assert.False(t, r.Proxy().Enabled)

	require.NoError(t, r.SetProxy(entity.ProxyConfig{Enabled: true, Host: " proxy.lan ", Port: 8080}))
	assert.Equal(t, "proxy.lan", r.Proxy().Host)
	assert.Equal(t, entity.ProxyHTTP, r.Proxy().ProxyType)

	assert.ErrorIs(t, r.SetMaxActiveWindows(0), entity.ErrInvalidConfig)
	require.NoError(t, r.SetMaxActiveWindows(7))
	assert.Equal(t, 7, r.MaxActiveWindows())
}

func TestRegistry_ConfigIsACopy(t *testing.T) {
	r := hub.NewRegistry(testConfig(3, testApp("a", 0)))

	cfg := r.Config()
	cfg.WebApps[0].Name = "mutated"
	cfg.MaxActiveWindows = 99

	got, err := r.Get("a")
	require.NoError(t, err)
	assert.Equal(t, "app-a", got.Name)
	assert.Equal(t, 3, r.MaxActiveWindows())
}

func TestResolveProxy(t *testing.T) {
	global := entity.ProxyConfig{Enabled: true, Host: "proxy.lan", Port: 1080, ProxyType: entity.ProxySOCKS5}

	tests := []struct {
		name     string
		useProxy bool
		global   entity.ProxyConfig
		want     string
	}{
		{name: "enabled and opted in", useProxy: true, global: global, want: "socks5://proxy.lan:1080"},
		{name: "opted out", useProxy: false, global: global, want: ""},
		{name: "globally disabled", useProxy: true, global: entity.ProxyConfig{Host: "proxy.lan", Port: 1080}, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := testApp("a", 0)
			app.UseProxy = tt.useProxy
			got := hub.ResolveProxy(app, tt.global)
			assert.Equal(t, tt.want, got.URL())
			assert.Equal(t, tt.want == "", got.IsNone())
		})
	}
}
