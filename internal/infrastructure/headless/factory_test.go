package headless_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/webhub/internal/app/hub"
	"github.com/bnema/webhub/internal/application/port"
	"github.com/bnema/webhub/internal/domain/entity"
	"github.com/bnema/webhub/internal/infrastructure/headless"
	"github.com/bnema/webhub/internal/infrastructure/hotkey"
)

type memoryStore struct {
	saved *entity.AppConfig
}

func (s *memoryStore) Load(context.Context) (*entity.AppConfig, error) {
	return entity.DefaultAppConfig(), nil
}

func (s *memoryStore) Save(_ context.Context, cfg *entity.AppConfig) error {
	s.saved = cfg.Clone()
	return nil
}

func TestFactory_RefusesWindows(t *testing.T) {
	_, err := headless.Factory{}.CreateWindow(context.Background(), port.WindowSpec{WebAppID: "a"}, port.WindowCallbacks{})
	assert.ErrorIs(t, err, headless.ErrNoDisplay)
}

func TestFactory_OfflineHubStillPersists(t *testing.T) {
	ctx := context.Background()
	store := &memoryStore{}
	h, err := hub.New(entity.DefaultAppConfig(), hub.Options{
		Store:   store,
		Factory: headless.Factory{},
		Hotkeys: hotkey.NewManualBackend(),
	})
	require.NoError(t, err)
	require.NoError(t, h.Start(ctx))

	app, err := h.AddWebApp(ctx, hub.NewWebApp{Name: "Mail", URL: "https://mail.example.com", Shortcut: "ctrl+1"})
	require.NoError(t, err)
	require.NotNil(t, store.saved)
	assert.Equal(t, "CommandOrControl+1", store.saved.WebApps[0].Shortcut)

	err = h.OpenWebApp(ctx, app.ID)
	assert.ErrorIs(t, err, entity.ErrCreationFailed)
	assert.Empty(t, h.Windows(ctx))
}
