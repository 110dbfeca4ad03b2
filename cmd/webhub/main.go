package main

import (
	"runtime"

	"github.com/bnema/webhub/internal/cli/cmd"
	"github.com/bnema/webhub/internal/domain/build"
)

// Build-time variables (set via ldflags).
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

// GTK must own the main OS thread, and `webhub run` reaches it from the main goroutine.
func init() {
	runtime.LockOSThread()
}

func main() {
	cmd.SetBuildInfo(build.Info{
		Version:   version,
		Commit:    commit,
		BuildDate: buildDate,
		GoVersion: runtime.Version(),
	})
	cmd.Execute()
}
