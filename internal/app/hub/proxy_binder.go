package hub

import "github.com/bnema/webhub/internal/domain/entity"

// ResolveProxy computes the proxy a new window for app must use.
// A window connects directly unless the global proxy is enabled and the webapp opts in.
func ResolveProxy(app entity.WebApp, global entity.ProxyConfig) entity.EffectiveProxy {
	if !global.Enabled || !app.UseProxy {
		return entity.NoProxy
	}
	t := global.ProxyType
	if t == "" {
		t = entity.DefaultProxyType
	}
	return entity.EffectiveProxy{
		Type:     t,
		Host:     global.Host,
		Port:     global.Port,
		Username: global.Username,
		Password: global.Password,
	}
}
