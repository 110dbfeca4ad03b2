package config_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/webhub/internal/domain/entity"
	"github.com/bnema/webhub/internal/infrastructure/config"
	"github.com/bnema/webhub/internal/logging"
)

func testContext() context.Context {
	logger := logging.NewFromConfigValues("debug", "console")
	return logging.WithContext(context.Background(), logger)
}

func sampleConfig() *entity.AppConfig {
	cfg := entity.DefaultAppConfig()
	cfg.MaxActiveWindows = 3
	cfg.MainWindowShortcut = "Alt+Space"
	cfg.Proxy = entity.ProxyConfig{
		Enabled:   true,
		Host:      "proxy.lan",
		Port:      1080,
		Username:  "me",
		Password:  "p@ss",
		ProxyType: entity.ProxySOCKS5,
	}
	cfg.WebApps = []entity.WebApp{
		{
			ID: "b", Name: "Chat", URL: "https://chat.example.com",
			Shortcut: "CommandOrControl+2", Width: 800, Height: 600,
			UseProxy: false, Order: 1, CreatedAt: 1700000001,
		},
		{
			ID: "a", Name: "Mail", URL: "https://mail.example.com", Icon: "/tmp/mail.png",
			Shortcut: "CommandOrControl+1", Width: 1024, Height: 768,
			UseProxy: true, Order: 0, CreatedAt: 1700000000,
			InjectScript: "document.title = \"inbox\"\n", InjectOnLoad: true, InjectOnShortcut: true,
		},
	}
	return cfg
}

func TestStore_LoadCreatesDefault(t *testing.T) {
	ctx := testContext()
	path := filepath.Join(t.TempDir(), "nested", "webhub.toml")
	store := config.NewStore(path)

	cfg, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, entity.DefaultAppConfig(), cfg)

	_, err = os.Stat(path)
	assert.NoError(t, err, "default record is written")
}

func TestStore_SaveLoadRoundTrip(t *testing.T) {
	ctx := testContext()
	store := config.NewStore(filepath.Join(t.TempDir(), "webhub.toml"))

	want := sampleConfig()
	require.NoError(t, store.Save(ctx, want))

	got, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestStore_SaveIsDeterministic(t *testing.T) {
	ctx := testContext()
	path := filepath.Join(t.TempDir(), "webhub.toml")
	store := config.NewStore(path)

	require.NoError(t, store.Save(ctx, sampleConfig()))
	first, err := os.ReadFile(path)
	require.NoError(t, err)

	require.NoError(t, store.Save(ctx, sampleConfig()))
	second, err := os.ReadFile(path)
	require.NoError(t, err)

	assert.Equal(t, string(first), string(second))
	assert.Contains(t, string(first), "[[webapps]]")
	assert.Contains(t, string(first), "[proxy]")
}

func TestStore_SaveRejectsInvalid(t *testing.T) {
	ctx := testContext()
	path := filepath.Join(t.TempDir(), "webhub.toml")
	store := config.NewStore(path)

	cfg := sampleConfig()
	cfg.MaxActiveWindows = 0
	assert.ErrorIs(t, store.Save(ctx, cfg), entity.ErrInvalidConfig)

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestStore_LoadNormalizesHandEditedFile(t *testing.T) {
	ctx := testContext()
	path := filepath.Join(t.TempDir(), "webhub.toml")
	content := `max_active_windows = 2
main_window_shortcut = "ctrl+alt+h"

[proxy]
enabled = false
proxy_type = "socks"

[[webapps]]
id = "x"
name = "X"
url = "https://x.example.com"
shortcut = "super+x"
width = 640
height = 480
use_proxy = true
order = 0
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := config.NewStore(path).Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.MaxActiveWindows)
	assert.Equal(t, "CommandOrControl+Alt+H", cfg.MainWindowShortcut)
	assert.Equal(t, entity.ProxySOCKS5, cfg.Proxy.ProxyType)
	require.Len(t, cfg.WebApps, 1)
	assert.Equal(t, "Meta+X", cfg.WebApps[0].Shortcut)
	assert.True(t, cfg.MinimizeToTray, "missing keys take defaults")
}

func TestStore_LoadReportsAllProblems(t *testing.T) {
	ctx := testContext()
	path := filepath.Join(t.TempDir(), "webhub.toml")
	content := `max_active_windows = 0

[[webapps]]
id = "x"
name = ""
url = "gopher://x"
width = 640
height = 480
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	_, err := config.NewStore(path).Load(ctx)
	require.ErrorIs(t, err, entity.ErrInvalidConfig)
	msg := err.Error()
	assert.Contains(t, msg, "max_active_windows")
	assert.Contains(t, msg, "name must not be empty")
	assert.Contains(t, msg, "gopher://x")
}

func TestStore_LoadRejectsMalformedTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "webhub.toml")
	require.NoError(t, os.WriteFile(path, []byte("max_active_windows = [\n"), 0o644))

	_, err := config.NewStore(path).Load(testContext())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "valid TOML")
}

func TestStore_EnvOverride(t *testing.T) {
	t.Setenv("WEBHUB_MAX_ACTIVE_WINDOWS", "9")
	ctx := testContext()
	store := config.NewStore(filepath.Join(t.TempDir(), "webhub.toml"))
	require.NoError(t, store.Save(ctx, sampleConfig()))

	cfg, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 9, cfg.MaxActiveWindows)
}

func TestStore_SaveKeepsEnvOverridesOutOfFile(t *testing.T) {
	ctx := testContext()
	path := filepath.Join(t.TempDir(), "webhub.toml")
	store := config.NewStore(path)
	require.NoError(t, store.Save(ctx, sampleConfig()))

	t.Setenv("WEBHUB_MAX_ACTIVE_WINDOWS", "9")
	cfg, err := store.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, 9, cfg.MaxActiveWindows)

	cfg.AutoStart = true
	require.NoError(t, store.Save(ctx, cfg))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "max_active_windows = 3")
	assert.Contains(t, string(data), "auto_start = true")

	// An explicit edit of an overridden setting is persisted.
	cfg.MaxActiveWindows = 5
	require.NoError(t, store.Save(ctx, cfg))
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "max_active_windows = 5")
}

func TestStore_WatchSkipsOwnSaves(t *testing.T) {
	ctx := testContext()
	path := filepath.Join(t.TempDir(), "webhub.toml")
	store := config.NewStore(path)
	require.NoError(t, store.Save(ctx, sampleConfig()))

	changes := make(chan *entity.AppConfig, 8)
	store.OnConfigChange(func(cfg *entity.AppConfig) { changes <- cfg })
	require.NoError(t, store.Watch(ctx))

	own := sampleConfig()
	own.MaxActiveWindows = 4
	require.NoError(t, store.Save(ctx, own))

	external := sampleConfig()
	external.MaxActiveWindows = 7
	data, err := config.EncodeConfig(external)
	require.NoError(t, err)
	tmp := filepath.Join(t.TempDir(), "edit.toml")
	require.NoError(t, os.WriteFile(tmp, data, 0o644))
	require.NoError(t, os.Rename(tmp, path))

	deadline := time.After(5 * time.Second)
	for {
		select {
		case cfg := <-changes:
			require.NotEqual(t, 4, cfg.MaxActiveWindows, "own save must not be reported")
			if cfg.MaxActiveWindows == 7 {
				return
			}
		case <-deadline:
			t.Fatal("external edit was not reported")
		}
	}
}

func TestGenerateSchema(t *testing.T) {
	data, err := config.GenerateSchema()
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, "webhub configuration", doc["title"])

	text := string(data)
	for _, key := range []string{"max_active_windows", "webapps", "inject_on_shortcut", "proxy_type"} {
		assert.True(t, strings.Contains(text, key), "schema lacks %s", key)
	}
}

func TestStore_WriteSchema(t *testing.T) {
	store := config.NewStore(filepath.Join(t.TempDir(), "webhub.toml"))
	path, err := store.WriteSchema()
	require.NoError(t, err)
	assert.Equal(t, store.SchemaPath(), path)
	_, err = os.Stat(path)
	assert.NoError(t, err)
}
