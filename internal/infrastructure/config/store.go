package config

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/viper"

	"github.com/bnema/webhub/internal/domain/entity"
	"github.com/bnema/webhub/internal/logging"
)

// EnvPrefix prefixes environment overrides, e.g. WEBHUB_MAX_ACTIVE_WINDOWS.
const EnvPrefix = "WEBHUB"

// Store implements port.ConfigStore on top of a single TOML file.
type Store struct {
	mu   sync.Mutex
	path string
	// lastWritten holds the bytes of our own last Save so the watcher can skip it.
	lastWritten []byte
	// env remembers what environment overrides changed on the last decode.
	env         *envOverlay
	watching    bool
	callbacks   []func(*entity.AppConfig)
}

// NewStore creates a store for the file at path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// NewDefaultStore creates a store for the XDG config file.
func NewDefaultStore() (*Store, error) {
	path, err := GetConfigFile()
	if err != nil {
		return nil, fmt.Errorf("failed to determine config file: %w\nCheck XDG_CONFIG_HOME or WEBHUB_CONFIG_DIR", err)
	}
	return NewStore(path), nil
}

// Path returns the config file path.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) newViper(withEnv bool) *viper.Viper {
	v := viper.New()
	v.SetConfigFile(s.path)
	v.SetConfigType("toml")

	if withEnv {
		v.SetEnvPrefix(EnvPrefix)
		v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		v.AutomaticEnv()
	}

	setDefaults(v, entity.DefaultAppConfig())
	return v
}

func setDefaults(v *viper.Viper, defaults *entity.AppConfig) {
	v.SetDefault("max_active_windows", defaults.MaxActiveWindows)
	v.SetDefault("main_window_shortcut", defaults.MainWindowShortcut)
	v.SetDefault("auto_start", defaults.AutoStart)
	v.SetDefault("minimize_to_tray", defaults.MinimizeToTray)
	v.SetDefault("proxy.enabled", defaults.Proxy.Enabled)
	v.SetDefault("proxy.host", defaults.Proxy.Host)
	v.SetDefault("proxy.port", defaults.Proxy.Port)
	v.SetDefault("proxy.username", defaults.Proxy.Username)
	v.SetDefault("proxy.password", defaults.Proxy.Password)
	v.SetDefault("proxy.proxy_type", string(defaults.Proxy.ProxyType))
}

// Load reads and validates the record. A missing file yields the default record,
// which is written so the user has something to edit.
func (s *Store) Load(ctx context.Context) (*entity.AppConfig, error) {
	log := logging.FromContext(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := os.Stat(s.path); errors.Is(err, os.ErrNotExist) {
		cfg := entity.DefaultAppConfig()
		if err := s.writeLocked(cfg); err != nil {
			return nil, fmt.Errorf(
				"failed to create default config at %s: %w\nTry creating the directory manually or check permissions",
				s.path, err,
			)
		}
		log.Info().Str("path", s.path).Msg("created default config")
		return s.decodeLocked()
	}
	return s.decodeLocked()
}

func (s *Store) decodeLocked() (*entity.AppConfig, error) {
	cfg, err := s.readLocked(true)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config file %s: %w", s.path, err)
	}

	s.env = nil
	if keys := overriddenKeys(); len(keys) > 0 {
		if file, err := s.readLocked(false); err == nil {
			s.env = &envOverlay{keys: keys, loaded: cfg.Clone(), file: file}
		}
	}
	return cfg, nil
}

func (s *Store) readLocked(withEnv bool) (*entity.AppConfig, error) {
	v := s.newViper(withEnv)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file at %s: %w\nCheck the file format (must be valid TOML) and permissions", s.path, err)
	}

	cfg := &entity.AppConfig{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf(
			"failed to parse config file at %s: %w\nCheck for syntax errors, invalid values, or type mismatches",
			s.path, err,
		)
	}
	cfg.Normalize()
	return cfg, nil
}

// Save rewrites the whole record. Settings that came from a WEBHUB_* variable
// and were left unchanged keep their file value on disk.
func (s *Store) Save(ctx context.Context, cfg *entity.AppConfig) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.writeLocked(s.env.strip(cfg)); err != nil {
		return err
	}
	logging.FromContext(ctx).Debug().Str("path", s.path).Int("webapps", len(cfg.WebApps)).Msg("config saved")
	return nil
}

func (s *Store) writeLocked(cfg *entity.AppConfig) error {
	data, err := EncodeConfig(cfg)
	if err != nil {
		return err
	}
	if err := writeFileAtomic(s.path, data); err != nil {
		return err
	}
	s.lastWritten = data
	return nil
}

// isOwnWrite reports whether the file still holds exactly what Save last wrote.
func (s *Store) isOwnWrite() bool {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastWritten != nil && bytes.Equal(data, s.lastWritten)
}

// SchemaPath returns where WriteSchema puts the JSON schema.
func (s *Store) SchemaPath() string {
	return filepath.Join(filepath.Dir(s.path), schemaFileName)
}
