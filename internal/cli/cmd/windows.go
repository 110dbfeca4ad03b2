package cmd

import (
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/bnema/webhub/internal/cli"
	"github.com/bnema/webhub/internal/cli/model"
	"github.com/bnema/webhub/internal/cli/styles"
	"github.com/bnema/webhub/internal/domain/entity"
	"github.com/bnema/webhub/internal/infrastructure/instance"
)

var openCmd = &cobra.Command{
	Use:   "open <id|name>",
	Short: "Open and focus a webapp window",
	Long:  `Open and focus a webapp window, starting the hub if it is not running.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		return forwardWebApp(args[0], instance.CmdOpen, true)
	},
}

var toggleCmd = &cobra.Command{
	Use:   "toggle <id|name>",
	Short: "Show or hide a webapp window",
	Long: `Hide the webapp window when it is visible, show it otherwise. This is what the
webapp's global shortcut does. Starts the hub if it is not running.`,
	Args: cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		return forwardWebApp(args[0], instance.CmdToggle, true)
	},
}

var closeCmd = &cobra.Command{
	Use:   "close <id|name>",
	Short: "Close a webapp window in the running hub",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		return forwardWebApp(args[0], instance.CmdClose, false)
	},
}

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the main window, starting the hub if needed",
	Args:  cobra.NoArgs,
	RunE:  runShow,
}

var shortcutCmd = &cobra.Command{
	Use:   "shortcut <accelerator>",
	Short: "Trigger a global shortcut in the running hub",
	Long: `Trigger a global shortcut as if it had been pressed. Useful on compositors
where webhub cannot grab keys itself: bind the key in the compositor to

  webhub shortcut ctrl+alt+m`,
	Args: cobra.ExactArgs(1),
	RunE: runShortcut,
}

var pickCmd = &cobra.Command{
	Use:   "pick",
	Short: "Pick a webapp interactively and toggle it",
	Args:  cobra.NoArgs,
	RunE:  runPick,
}

func init() {
	rootCmd.AddCommand(openCmd, toggleCmd, closeCmd, showCmd, shortcutCmd, pickCmd)
}

func send(a *cli.App, req instance.Request, launch bool) (string, error) {
	var (
		resp instance.Response
		err  error
	)
	if launch {
		resp, err = a.SendOrLaunch(req)
	} else {
		resp, err = a.Send(req)
	}
	if err != nil {
		return "", err
	}
	return resp.Result, resp.Err()
}

func forwardWebApp(ref, command string, launch bool) error {
	a, err := requireApp()
	if err != nil {
		return err
	}
	target, err := a.FindWebApp(ref)
	if err != nil {
		return err
	}
	return forwardTo(a, target, command, launch)
}

func forwardTo(a *cli.App, target entity.WebApp, command string, launch bool) error {
	result, err := send(a, instance.Request{Command: command, WebAppID: target.ID}, launch)
	if err != nil {
		return err
	}

	switch command {
	case instance.CmdClose:
		fmt.Println(a.Renderer.RenderClosed(target.Name))
	default:
		fmt.Println(a.Renderer.RenderOpened(target.Name, parseToggleResult(result)))
	}
	return nil
}

func parseToggleResult(s string) entity.ToggleResult {
	for _, r := range []entity.ToggleResult{entity.ToggleHidden, entity.ToggleShownExisting, entity.ToggleCreatedNew} {
		if r.String() == s {
			return r
		}
	}
	return entity.ToggleCreatedNew
}

func runShow(_ *cobra.Command, _ []string) error {
	a, err := requireApp()
	if err != nil {
		return err
	}
	_, err = send(a, instance.Request{Command: instance.CmdShowMain}, true)
	return err
}

func runShortcut(_ *cobra.Command, args []string) error {
	a, err := requireApp()
	if err != nil {
		return err
	}
	shortcut, err := entity.NormalizeShortcut(args[0])
	if err != nil {
		return err
	}
	if shortcut == "" {
		return fmt.Errorf("%w: empty shortcut", entity.ErrInvalidConfig)
	}

	_, err = send(a, instance.Request{Command: instance.CmdShortcut, Shortcut: shortcut}, false)
	if errors.Is(err, instance.ErrNotRunning) {
		return fmt.Errorf("%w; start it with `webhub run`", err)
	}
	return err
}

func runPick(_ *cobra.Command, _ []string) error {
	a, err := requireApp()
	if err != nil {
		return err
	}

	load := func() ([]styles.WebAppItem, error) {
		open := liveWindows(a)
		apps := a.Hub().ListWebApps(a.Ctx())
		items := make([]styles.WebAppItem, len(apps))
		for i, w := range apps {
			items[i] = styles.WebAppItem{
				ID:       w.ID,
				Name:     w.Name,
				URL:      w.URL,
				Shortcut: w.Shortcut,
				Open:     open[w.ID],
			}
		}
		return items, nil
	}

	p := tea.NewProgram(model.NewPickerModel(a.Theme, load), tea.WithAltScreen())
	finalModel, err := p.Run()
	if err != nil {
		return err
	}

	pm, ok := finalModel.(model.PickerModel)
	if !ok || pm.SelectedID() == "" {
		return nil
	}
	target, err := a.Hub().GetWebApp(a.Ctx(), pm.SelectedID())
	if err != nil {
		return err
	}
	return forwardTo(a, target, instance.CmdToggle, true)
}
