package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bnema/webhub/internal/bootstrap"
	"github.com/bnema/webhub/internal/infrastructure/config"
	"github.com/bnema/webhub/internal/infrastructure/instance"
)

var (
	runHidden  bool
	runLogFile bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the hub with its main window",
	Long: `Start webhub: register the global shortcuts, show the main window and keep
running until the main window is closed or the process is signalled.

Only one hub runs per user. Starting a second one shows the main window of the
first instead.`,
	Args: cobra.NoArgs,
	RunE: runRun,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version, build information and paths",
	Args:  cobra.NoArgs,
	RunE:  runVersion,
}

func init() {
	rootCmd.AddCommand(runCmd, versionCmd)

	runCmd.Flags().BoolVar(&runHidden, "hidden", false, "start with the main window hidden")
	runCmd.Flags().BoolVar(&runLogFile, "log-file", true, "also write logs to the state directory")
}

func runRun(cmd *cobra.Command, _ []string) error {
	err := bootstrap.Run(cmd.Context(), bootstrap.Options{
		BuildInfo: buildInfo,
		Hidden:    runHidden,
		LogToFile: runLogFile,
	})
	if err == nil {
		return nil
	}

	if errors.Is(err, instance.ErrAlreadyRunning) {
		// Hand over to the running hub.
		dirs, derr := config.GetDirs()
		if derr != nil {
			return err
		}
		resp, serr := instance.Send(cmd.Context(), instance.SocketPath(dirs.RuntimeDir),
			instance.Request{Command: instance.CmdShowMain})
		if serr != nil {
			return fmt.Errorf("%w (and it did not answer: %v)", err, serr)
		}
		return resp.Err()
	}
	return err
}

func runVersion(_ *cobra.Command, _ []string) error {
	a, err := requireApp()
	if err != nil {
		return err
	}

	paths := map[string]string{
		"config": a.Store.Path(),
		"data":   a.Dirs.DataHome,
		"cache":  a.Dirs.CacheHome,
		"socket": a.SocketPath(),
	}
	fmt.Println(a.Theme.RenderAbout(a.BuildInfo, paths))
	return nil
}
