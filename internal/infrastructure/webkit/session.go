package webkit

import (
	"os"
	"path/filepath"

	webkit "github.com/diamondburned/gotk4-webkitgtk/pkg/webkit/v6"

	"github.com/bnema/webhub/internal/domain/entity"
)

const sessionDirPerm = 0o700

// SessionDirs locates persistent website data. Empty fields give ephemeral sessions.
type SessionDirs struct {
	DataDir  string
	CacheDir string
}

// sessionPool holds one network session for direct windows and one for proxied
// windows. Every method runs on the GTK main thread.
type sessionPool struct {
	dirs        SessionDirs
	direct      *webkit.NetworkSession
	proxied     *webkit.NetworkSession
	proxiedWith entity.EffectiveProxy
}

func newSessionPool(dirs SessionDirs) *sessionPool {
	return &sessionPool{dirs: dirs}
}

// sessionFor returns the session matching proxy. The proxied session is
// reconfigured in place when the proxy changed; windows still using the old
// parameters are recreated by the window pool.
func (p *sessionPool) sessionFor(proxy entity.EffectiveProxy) *webkit.NetworkSession {
	if proxy.IsNone() {
		if p.direct == nil {
			p.direct = p.newSession("direct")
			p.direct.SetProxySettings(webkit.NetworkProxyModeNoProxy, nil)
		}
		return p.direct
	}

	if p.proxied == nil {
		p.proxied = p.newSession("proxy")
	}
	if p.proxiedWith != proxy {
		p.proxied.SetProxySettings(webkit.NetworkProxyModeCustom, webkit.NewNetworkProxySettings(proxy.URL(), nil))
		p.proxiedWith = proxy
	}
	return p.proxied
}

func (p *sessionPool) newSession(name string) *webkit.NetworkSession {
	dataDir, cacheDir := sessionPaths(p.dirs, name)
	if dataDir == "" {
		return webkit.NewNetworkSessionEphemeral()
	}
	_ = os.MkdirAll(dataDir, sessionDirPerm)
	_ = os.MkdirAll(cacheDir, sessionDirPerm)

	session := webkit.NewNetworkSession(dataDir, cacheDir)
	if cookies := session.CookieManager(); cookies != nil {
		cookies.SetPersistentStorage(filepath.Join(dataDir, "cookies.db"), webkit.CookiePersistentStorageSqlite)
		cookies.SetAcceptPolicy(webkit.CookiePolicyAcceptNoThirdParty)
	}
	session.SetPersistentCredentialStorageEnabled(true)
	return session
}

// sessionPaths returns the data and cache directories of the named session.
func sessionPaths(dirs SessionDirs, name string) (dataDir, cacheDir string) {
	if dirs.DataDir == "" {
		return "", ""
	}
	dataDir = filepath.Join(dirs.DataDir, "sessions", name)
	cacheDir = dataDir
	if dirs.CacheDir != "" {
		cacheDir = filepath.Join(dirs.CacheDir, "sessions", name)
	}
	return dataDir, cacheDir
}
