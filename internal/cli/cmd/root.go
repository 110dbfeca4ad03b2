// Package cmd provides Cobra CLI commands for webhub.
package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bnema/webhub/internal/cli"
	"github.com/bnema/webhub/internal/cli/styles"
	"github.com/bnema/webhub/internal/domain/build"
)

var (
	app       *cli.App
	buildInfo build.Info
	rootCmd   = &cobra.Command{
		Use:   "webhub",
		Short: "Run websites as standalone desktop apps",
		Long: `webhub - websites as standalone desktop apps.

Register a URL once, then open it in its own WebKitGTK window from the main
list or from a global keyboard shortcut. Only a bounded number of windows stay
alive; the least recently used one is closed when the limit is reached.

Use 'webhub run' to start the hub, or the subcommands below to manage
webapps from the terminal. Edits made here are picked up by a running hub.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Commands that don't need the offline hub
			switch cmd.Name() {
			case "help", "completion", "run", "schema":
				return nil
			}

			var err error
			app, err = cli.NewApp()
			if err != nil {
				return fmt.Errorf("initialize app: %w", err)
			}
			app.BuildInfo = buildInfo
			return nil
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			if app != nil {
				_ = app.Close()
			}
		},
	}
)

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		renderer := styles.NewWebAppsRenderer(styles.NewTheme())
		fmt.Fprintln(os.Stderr, renderer.RenderError(err))
		os.Exit(1)
	}
}

// SetBuildInfo records the ldflags build info for `version` and `run`.
func SetBuildInfo(info build.Info) {
	buildInfo = info
}

func requireApp() (*cli.App, error) {
	if app == nil {
		return nil, errors.New("app not initialized")
	}
	return app, nil
}
