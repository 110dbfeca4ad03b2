// Package build carries the version information stamped into the binary at link time.
package build

const repoURL = "https://github.com/bnema/webhub"

// Info is filled from ldflags in cmd/webhub.
type Info struct {
	Version   string
	Commit    string
	BuildDate string
	GoVersion string
}

// Dev reports whether the binary was built without a release version.
func (i Info) Dev() bool {
	return i.Version == "" || i.Version == "dev"
}

// RepoURL returns the project page.
func RepoURL() string {
	return repoURL
}
