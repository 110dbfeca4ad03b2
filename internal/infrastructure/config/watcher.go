package config

import (
	"context"

	"github.com/fsnotify/fsnotify"

	"github.com/bnema/webhub/internal/domain/entity"
	"github.com/bnema/webhub/internal/logging"
)

// Watch starts watching the config file and calls every registered callback with
// the new record after an external edit. Writes made by Save are skipped.
// Invalid edits are logged and ignored; the previous record stays in effect.
func (s *Store) Watch(ctx context.Context) error {
	s.mu.Lock()
	if s.watching {
		s.mu.Unlock()
		return nil
	}
	s.watching = true
	s.mu.Unlock()

	ctx = logging.WithComponent(context.WithoutCancel(ctx), "config-watcher")
	log := logging.FromContext(ctx)

	v := s.newViper(true)
	if err := v.ReadInConfig(); err != nil {
		s.mu.Lock()
		s.watching = false
		s.mu.Unlock()
		return err
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		log.Debug().Str("op", e.Op.String()).Str("file", e.Name).Msg("fsnotify config change detected")
		s.handleChange(ctx)
	})
	v.WatchConfig()

	log.Debug().Str("path", s.path).Msg("watching config file")
	return nil
}

func (s *Store) handleChange(ctx context.Context) {
	log := logging.FromContext(ctx)

	if s.isOwnWrite() {
		log.Debug().Msg("skipping reload (triggered by own Save)")
		return
	}

	s.mu.Lock()
	cfg, err := s.decodeLocked()
	callbacks := make([]func(*entity.AppConfig), len(s.callbacks))
	copy(callbacks, s.callbacks)
	s.mu.Unlock()

	if err != nil {
		log.Warn().Err(err).Msg("ignoring invalid config change")
		return
	}

	log.Info().Int("webapps", len(cfg.WebApps)).Msg("config changed on disk")
	for _, callback := range callbacks {
		callback(cfg.Clone())
	}
}

// OnConfigChange registers a callback for external edits.
func (s *Store) OnConfigChange(callback func(*entity.AppConfig)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.callbacks = append(s.callbacks, callback)
}
