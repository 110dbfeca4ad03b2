package entity_test

import (
	"testing"

	"github.com/bnema/webhub/internal/domain/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleWebApp(id, name, shortcut string, order int) entity.WebApp {
	return entity.WebApp{
		ID:       id,
		Name:     name,
		URL:      "https://" + name + ".example.com",
		Shortcut: shortcut,
		Width:    entity.DefaultWindowWidth,
		Height:   entity.DefaultWindowHeight,
		UseProxy: true,
		Order:    order,
	}
}

func TestDefaultAppConfig(t *testing.T) {
	cfg := entity.DefaultAppConfig()

	assert.Equal(t, 5, cfg.MaxActiveWindows)
	assert.True(t, cfg.MinimizeToTray)
	assert.False(t, cfg.AutoStart)
	assert.False(t, cfg.Proxy.Enabled)
	assert.Equal(t, entity.ProxyHTTP, cfg.Proxy.ProxyType)
	assert.NotNil(t, cfg.WebApps)
	assert.NoError(t, cfg.Validate())
}

func TestNewWebApp_Defaults(t *testing.T) {
	w := entity.NewWebApp("Mail", "https://mail.example.com")

	assert.NotEmpty(t, w.ID)
	assert.Equal(t, 1024, w.Width)
	assert.Equal(t, 768, w.Height)
	assert.True(t, w.UseProxy)
	assert.NotZero(t, w.CreatedAt)
	assert.NoError(t, w.Validate())

	other := entity.NewWebApp("Mail", "https://mail.example.com")
	assert.NotEqual(t, w.ID, other.ID)
}

func TestWebApp_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*entity.WebApp)
	}{
		{"empty name", func(w *entity.WebApp) { w.Name = " " }},
		{"empty url", func(w *entity.WebApp) { w.URL = "" }},
		{"bad scheme", func(w *entity.WebApp) { w.URL = "ftp://files.example.com" }},
		{"no host", func(w *entity.WebApp) { w.URL = "https://" }},
		{"zero width", func(w *entity.WebApp) { w.Width = 0 }},
		{"negative height", func(w *entity.WebApp) { w.Height = -5 }},
		{"bad shortcut", func(w *entity.WebApp) { w.Shortcut = "Ctrl+Shift" }},
		{"main window id", func(w *entity.WebApp) { w.ID = string(entity.MainWindowTarget) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := sampleWebApp("a", "mail", "", 0)
			tt.mutate(&w)
			assert.ErrorIs(t, w.Validate(), entity.ErrInvalidConfig)
		})
	}
}

func TestWebApp_InjectionFlags(t *testing.T) {
	w := sampleWebApp("a", "mail", "", 0)
	w.InjectOnLoad = true
	w.InjectOnShortcut = true
	assert.False(t, w.WantsLoadInjection(), "no script, nothing to inject")

	w.InjectScript = "document.title = 'x'"
	assert.True(t, w.WantsLoadInjection())
	assert.True(t, w.WantsShortcutInjection())
}

func TestAppConfig_Validate(t *testing.T) {
	t.Run("max active windows below one", func(t *testing.T) {
		cfg := entity.DefaultAppConfig()
		cfg.MaxActiveWindows = 0
		err := cfg.Validate()
		assert.ErrorIs(t, err, entity.ErrInvalidConfig)
		assert.Contains(t, err.Error(), "max_active_windows")
	})

	t.Run("duplicate webapp shortcut", func(t *testing.T) {
		cfg := entity.DefaultAppConfig()
		cfg.WebApps = []entity.WebApp{
			sampleWebApp("a", "mail", "Ctrl+1", 0),
			sampleWebApp("b", "chat", "control+1", 1),
		}
		err := cfg.Validate()
		assert.ErrorIs(t, err, entity.ErrDuplicateShortcut)
		assert.ErrorIs(t, err, entity.ErrInvalidConfig)
	})

	t.Run("shortcut clashes with main window", func(t *testing.T) {
		cfg := entity.DefaultAppConfig()
		cfg.MainWindowShortcut = "Alt+Space"
		cfg.WebApps = []entity.WebApp{sampleWebApp("a", "mail", "alt+space", 0)}
		assert.ErrorIs(t, cfg.Validate(), entity.ErrDuplicateShortcut)
	})

	t.Run("duplicate ids", func(t *testing.T) {
		cfg := entity.DefaultAppConfig()
		cfg.WebApps = []entity.WebApp{
			sampleWebApp("a", "mail", "", 0),
			sampleWebApp("a", "chat", "", 1),
		}
		err := cfg.Validate()
		assert.ErrorIs(t, err, entity.ErrInvalidConfig)
		assert.NotErrorIs(t, err, entity.ErrDuplicateShortcut)
	})

	t.Run("reports every problem", func(t *testing.T) {
		cfg := entity.DefaultAppConfig()
		cfg.MaxActiveWindows = 0
		cfg.Proxy = entity.ProxyConfig{Enabled: true, ProxyType: entity.ProxyHTTP}
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "max_active_windows")
		assert.Contains(t, err.Error(), "proxy.host")
		assert.Contains(t, err.Error(), "proxy.port")
	})
}

func TestAppConfig_Normalize(t *testing.T) {
	cfg := entity.DefaultAppConfig()
	cfg.MainWindowShortcut = "shift+ctrl+h"
	cfg.Proxy.ProxyType = "HTTPS"
	cfg.WebApps = []entity.WebApp{
		sampleWebApp("c", "chat", "alt+3", 30),
		sampleWebApp("a", "mail", "ctrl+1", 10),
		sampleWebApp("b", "docs", "", 20),
	}

	cfg.Normalize()

	assert.Equal(t, "CommandOrControl+Shift+H", cfg.MainWindowShortcut)
	assert.Equal(t, entity.ProxyHTTPS, cfg.Proxy.ProxyType)
	require.Len(t, cfg.WebApps, 3)
	assert.Equal(t, "Alt+3", cfg.WebApps[0].Shortcut)
	assert.Equal(t, "CommandOrControl+1", cfg.WebApps[1].Shortcut)
	assert.Equal(t, 30, cfg.WebApps[0].Order, "normalize keeps stored order")
}

func TestAppConfig_SortWebApps(t *testing.T) {
	cfg := entity.DefaultAppConfig()
	cfg.WebApps = []entity.WebApp{
		sampleWebApp("c", "chat", "", 30),
		sampleWebApp("a", "mail", "", 10),
		sampleWebApp("b", "docs", "", 20),
	}

	cfg.SortWebApps()

	assert.Equal(t, []string{"a", "b", "c"}, []string{cfg.WebApps[0].ID, cfg.WebApps[1].ID, cfg.WebApps[2].ID})
	assert.Equal(t, []int{0, 1, 2}, []int{cfg.WebApps[0].Order, cfg.WebApps[1].Order, cfg.WebApps[2].Order})
}

func TestAppConfig_Clone(t *testing.T) {
	cfg := entity.DefaultAppConfig()
	cfg.WebApps = []entity.WebApp{sampleWebApp("a", "mail", "Ctrl+1", 0)}

	clone := cfg.Clone()
	require.Equal(t, cfg, clone)

	clone.WebApps[0].Name = "changed"
	clone.WebApps = append(clone.WebApps, sampleWebApp("b", "chat", "", 1))

	assert.Equal(t, "mail", cfg.WebApps[0].Name)
	assert.Len(t, cfg.WebApps, 1)
	assert.Equal(t, 0, cfg.FindWebApp("a"))
	assert.Equal(t, -1, cfg.FindWebApp("b"))
}
