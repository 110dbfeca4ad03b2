package config

import (
	"os"
	"strings"

	"github.com/bnema/webhub/internal/domain/entity"
)

// envField is one setting a WEBHUB_* variable can override.
type envField struct {
	key     string
	changed func(cur, loaded *entity.AppConfig) bool
	restore func(dst, file *entity.AppConfig)
}

func fieldOf[T comparable](key string, at func(*entity.AppConfig) *T) envField {
	return envField{
		key:     key,
		changed: func(cur, loaded *entity.AppConfig) bool { return *at(cur) != *at(loaded) },
		restore: func(dst, file *entity.AppConfig) { *at(dst) = *at(file) },
	}
}

var envFields = []envField{
	fieldOf("max_active_windows", func(c *entity.AppConfig) *int { return &c.MaxActiveWindows }),
	fieldOf("main_window_shortcut", func(c *entity.AppConfig) *string { return &c.MainWindowShortcut }),
	fieldOf("auto_start", func(c *entity.AppConfig) *bool { return &c.AutoStart }),
	fieldOf("minimize_to_tray", func(c *entity.AppConfig) *bool { return &c.MinimizeToTray }),
	fieldOf("proxy.enabled", func(c *entity.AppConfig) *bool { return &c.Proxy.Enabled }),
	fieldOf("proxy.host", func(c *entity.AppConfig) *string { return &c.Proxy.Host }),
	fieldOf("proxy.port", func(c *entity.AppConfig) *int { return &c.Proxy.Port }),
	fieldOf("proxy.username", func(c *entity.AppConfig) *string { return &c.Proxy.Username }),
	fieldOf("proxy.password", func(c *entity.AppConfig) *string { return &c.Proxy.Password }),
	fieldOf("proxy.proxy_type", func(c *entity.AppConfig) *entity.ProxyType { return &c.Proxy.ProxyType }),
}

// envVar maps a config key to its variable, e.g. proxy.host to WEBHUB_PROXY_HOST.
func envVar(key string) string {
	return EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

func overriddenKeys() []envField {
	var out []envField
	for _, f := range envFields {
		if _, ok := os.LookupEnv(envVar(f.key)); ok {
			out = append(out, f)
		}
	}
	return out
}

// envOverlay keeps environment overrides out of the file. loaded is the record
// handed out by the last decode and file the same record without the environment.
type envOverlay struct {
	keys   []envField
	loaded *entity.AppConfig
	file   *entity.AppConfig
}

// strip returns the record to persist: overridden settings the caller did not
// touch go back to their file value.
func (o *envOverlay) strip(cfg *entity.AppConfig) *entity.AppConfig {
	if o == nil {
		return cfg
	}
	out := cfg.Clone()
	for _, f := range o.keys {
		if !f.changed(cfg, o.loaded) {
			f.restore(out, o.file)
		}
	}
	return out
}
