package bootstrap

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/bnema/webhub/internal/domain/entity"
	"github.com/bnema/webhub/internal/infrastructure/instance"
	"github.com/bnema/webhub/internal/logging"
)

// controlHub is the part of the hub reachable through the control socket.
type controlHub interface {
	OpenWebApp(ctx context.Context, id string) error
	ToggleWebApp(ctx context.Context, id string) (entity.ToggleResult, error)
	CloseWebApp(ctx context.Context, id string) error
	TriggerShortcut(ctx context.Context, shortcut string)
	Bindings() map[string]entity.ShortcutTarget
	Windows(ctx context.Context) []entity.WindowState
	ApplyExternalConfig(ctx context.Context, cfg *entity.AppConfig) error
}

type configLoader interface {
	Load(ctx context.Context) (*entity.AppConfig, error)
}

type presenter interface {
	Present(ctx context.Context) error
	Refresh()
}

// shortcutPresser fires a binding the way the hotkey backend would.
type shortcutPresser interface {
	Press(shortcut string) bool
}

// controlHandler answers the commands sent by `webhub <command>` to the running hub.
type controlHandler struct {
	hub     controlHub
	store   configLoader
	main    presenter
	presser shortcutPresser
}

var _ instance.Handler = (*controlHandler)(nil)

func (c *controlHandler) HandleControl(ctx context.Context, req instance.Request) (string, error) {
	ctx = logging.WithComponent(ctx, "control")
	logging.FromContext(ctx).Debug().
		Str("command", req.Command).
		Str("webapp_id", req.WebAppID).
		Msg("control request")

	switch req.Command {
	case instance.CmdPing:
		return "pong", nil

	case instance.CmdOpen:
		if err := c.hub.OpenWebApp(ctx, req.WebAppID); err != nil {
			return "", err
		}
		c.refresh()
		return "", nil

	case instance.CmdToggle:
		result, err := c.hub.ToggleWebApp(ctx, req.WebAppID)
		if err != nil {
			return "", err
		}
		c.refresh()
		return result.String(), nil

	case instance.CmdClose:
		if err := c.hub.CloseWebApp(ctx, req.WebAppID); err != nil {
			return "", err
		}
		c.refresh()
		return "", nil

	case instance.CmdShortcut:
		return "", c.pressShortcut(ctx, req.Shortcut)

	case instance.CmdShowMain:
		if c.main == nil {
			return "", errors.New("main window not ready")
		}
		return "", c.main.Present(ctx)

	case instance.CmdReloadConfig:
		cfg, err := c.store.Load(ctx)
		if err != nil {
			return "", err
		}
		if err := c.hub.ApplyExternalConfig(ctx, cfg); err != nil {
			return "", err
		}
		c.refresh()
		return "", nil

	case instance.CmdWindows:
		states := c.hub.Windows(ctx)
		ids := make([]string, 0, len(states))
		for _, s := range states {
			ids = append(ids, s.WebAppID)
		}
		data, err := json.Marshal(ids)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
	return "", fmt.Errorf("unknown command %q", req.Command)
}

func (c *controlHandler) pressShortcut(ctx context.Context, shortcut string) error {
	acc, err := entity.ParseAccelerator(shortcut)
	if err != nil {
		return err
	}
	key := acc.String()
	if _, ok := c.hub.Bindings()[key]; !ok {
		return fmt.Errorf("%w: no binding for %s", entity.ErrNotFound, key)
	}
	if c.presser != nil && c.presser.Press(key) {
		return nil
	}
	c.hub.TriggerShortcut(ctx, key)
	return nil
}

func (c *controlHandler) refresh() {
	if c.main != nil {
		c.main.Refresh()
	}
}
