package entity

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
)

// ProxyType is the protocol spoken to the proxy server.
type ProxyType string

const (
	ProxyHTTP   ProxyType = "http"
	ProxyHTTPS  ProxyType = "https"
	ProxySOCKS5 ProxyType = "socks5"
)

// DefaultProxyType is used when the config leaves the type empty.
const DefaultProxyType = ProxyHTTP

// ParseProxyType converts a case-insensitive name into a ProxyType.
func ParseProxyType(s string) (ProxyType, error) {
	switch ProxyType(strings.ToLower(strings.TrimSpace(s))) {
	case ProxyHTTP:
		return ProxyHTTP, nil
	case ProxyHTTPS:
		return ProxyHTTPS, nil
	case ProxySOCKS5, "socks":
		return ProxySOCKS5, nil
	case "":
		return DefaultProxyType, nil
	}
	return "", fmt.Errorf("%w: unknown proxy type %q (want http, https or socks5)", ErrInvalidConfig, s)
}

// Valid reports whether t is one of the supported proxy types.
func (t ProxyType) Valid() bool {
	return t == ProxyHTTP || t == ProxyHTTPS || t == ProxySOCKS5
}

// ProxyConfig is the global proxy setting shared by every webapp that opts in.
type ProxyConfig struct {
	Enabled   bool      `json:"enabled" mapstructure:"enabled" toml:"enabled"`
	Host      string    `json:"host" mapstructure:"host" toml:"host"`
	Port      int       `json:"port" mapstructure:"port" toml:"port"`
	Username  string    `json:"username,omitempty" mapstructure:"username" toml:"username,omitempty"`
	Password  string    `json:"password,omitempty" mapstructure:"password" toml:"password,omitempty"`
	ProxyType ProxyType `json:"proxyType" mapstructure:"proxy_type" toml:"proxy_type"`
}

// DefaultProxyConfig returns a disabled proxy with the default type.
func DefaultProxyConfig() ProxyConfig {
	return ProxyConfig{ProxyType: DefaultProxyType}
}

func (p ProxyConfig) problems() []string {
	var out []string
	if p.ProxyType != "" && !p.ProxyType.Valid() {
		out = append(out, fmt.Sprintf("proxy.proxy_type must be http, https or socks5 (got %q)", p.ProxyType))
	}
	if p.Port < 0 || p.Port > 65535 {
		out = append(out, fmt.Sprintf("proxy.port must be between 1 and 65535 (got %d)", p.Port))
	}
	if !p.Enabled {
		return out
	}
	if strings.TrimSpace(p.Host) == "" {
		out = append(out, "proxy.host must not be empty when the proxy is enabled")
	}
	if p.Port == 0 {
		out = append(out, "proxy.port must be set when the proxy is enabled")
	}
	return out
}

// Validate checks the proxy invariants: when enabled, host is set and port is in range.
func (p ProxyConfig) Validate() error {
	if pr := p.problems(); len(pr) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(pr, "; "))
	}
	return nil
}

// Normalized fills the default proxy type and trims the host.
func (p ProxyConfig) Normalized() ProxyConfig {
	p.Host = strings.TrimSpace(p.Host)
	if t, err := ParseProxyType(string(p.ProxyType)); err == nil {
		p.ProxyType = t
	}
	return p
}

// URL renders type://[user[:pass]@]host:port with percent-encoded credentials.
func (p ProxyConfig) URL() string {
	return EffectiveProxy{
		Type:     p.ProxyType,
		Host:     p.Host,
		Port:     p.Port,
		Username: p.Username,
		Password: p.Password,
	}.URL()
}

// EffectiveProxy is the proxy actually applied to one native window.
// The zero value means "no proxy". Values are comparable with ==.
type EffectiveProxy struct {
	Type     ProxyType
	Host     string
	Port     int
	Username string
	Password string
}

// NoProxy is the effective proxy of a window that connects directly.
var NoProxy = EffectiveProxy{}

// IsNone reports whether the window connects directly.
func (e EffectiveProxy) IsNone() bool {
	return e == NoProxy
}

// URL renders the proxy URI understood by the web engine, or "" for no proxy.
func (e EffectiveProxy) URL() string {
	if e.IsNone() || e.Host == "" {
		return ""
	}
	scheme := e.Type
	if scheme == "" {
		scheme = DefaultProxyType
	}
	u := url.URL{
		Scheme: string(scheme),
		Host:   net.JoinHostPort(e.Host, strconv.Itoa(e.Port)),
	}
	switch {
	case e.Username != "" && e.Password != "":
		u.User = url.UserPassword(e.Username, e.Password)
	case e.Username != "":
		u.User = url.User(e.Username)
	}
	return u.String()
}

// Redacted renders the proxy URI with the password masked, for logs.
func (e EffectiveProxy) Redacted() string {
	if e.Password == "" {
		return e.URL()
	}
	e.Password = "xxxxx"
	return e.URL()
}
