package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/bnema/webhub/internal/app/hub"
	"github.com/bnema/webhub/internal/cli"
	"github.com/bnema/webhub/internal/domain/entity"
	"github.com/bnema/webhub/internal/infrastructure/instance"
)

var listJSON bool

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List registered webapps",
	Long: `List webapps in display order.

A dot marks webapps that have a live window in the running hub.`,
	Args: cobra.NoArgs,
	RunE: runList,
}

var (
	addShortcut         string
	addIcon             string
	addWidth            int
	addHeight           int
	addNoProxy          bool
	addScript           string
	addScriptFile       string
	addInjectOnLoad     bool
	addInjectOnShortcut bool
)

var addCmd = &cobra.Command{
	Use:   "add <name> <url>",
	Short: "Register a new webapp",
	Long: `Register a URL as a webapp.

Examples:
  webhub add Mail https://mail.example.com --shortcut ctrl+alt+m
  webhub add Chat https://chat.example.com --no-proxy --width 800 --height 600
  webhub add Notes https://notes.example.com --script-file dark.js --inject-on-load`,
	Args: cobra.ExactArgs(2),
	RunE: runAdd,
}

var editCmd = &cobra.Command{
	Use:   "edit <id|name>",
	Short: "Change fields of a webapp",
	Long: `Change fields of a webapp. Only the flags given are applied.

Examples:
  webhub edit Mail --shortcut ctrl+alt+1
  webhub edit Mail --shortcut ""          # remove the shortcut
  webhub edit Chat --proxy=false`,
	Args: cobra.ExactArgs(1),
	RunE: runEdit,
}

var removeCmd = &cobra.Command{
	Use:     "remove <id|name>",
	Aliases: []string{"rm"},
	Short:   "Remove a webapp and close its window",
	Args:    cobra.ExactArgs(1),
	RunE:    runRemove,
}

var reorderCmd = &cobra.Command{
	Use:   "reorder <id|name>...",
	Short: "Set the display order of the webapps",
	Long: `Set the display order. Webapps not listed keep their relative order after
the listed ones.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runReorder,
}

func init() {
	rootCmd.AddCommand(listCmd, addCmd, editCmd, removeCmd, reorderCmd)

	listCmd.Flags().BoolVar(&listJSON, "json", false, "output as JSON")

	addCmd.Flags().StringVarP(&addShortcut, "shortcut", "s", "", "global shortcut, e.g. ctrl+alt+m")
	addCmd.Flags().StringVar(&addIcon, "icon", "", "icon name or path")
	addCmd.Flags().IntVar(&addWidth, "width", entity.DefaultWindowWidth, "window width")
	addCmd.Flags().IntVar(&addHeight, "height", entity.DefaultWindowHeight, "window height")
	addCmd.Flags().BoolVar(&addNoProxy, "no-proxy", false, "never route this webapp through the proxy")
	addCmd.Flags().StringVar(&addScript, "script", "", "JavaScript to inject")
	addCmd.Flags().StringVar(&addScriptFile, "script-file", "", "read the JavaScript to inject from a file")
	addCmd.Flags().BoolVar(&addInjectOnLoad, "inject-on-load", false, "inject the script after the first page load")
	addCmd.Flags().BoolVar(&addInjectOnShortcut, "inject-on-shortcut", false, "inject the script each time the shortcut shows the window")
	addCmd.MarkFlagsMutuallyExclusive("script", "script-file")

	addEditFlags(editCmd.Flags())
	editCmd.MarkFlagsMutuallyExclusive("script", "script-file")
}

func addEditFlags(fs *pflag.FlagSet) {
	fs.String("name", "", "new name")
	fs.String("url", "", "new URL")
	fs.String("icon", "", "icon name or path")
	fs.StringP("shortcut", "s", "", "global shortcut (empty to remove)")
	fs.Int("width", 0, "window width")
	fs.Int("height", 0, "window height")
	fs.Bool("proxy", true, "route this webapp through the proxy")
	fs.String("script", "", "JavaScript to inject (empty to remove)")
	fs.String("script-file", "", "read the JavaScript to inject from a file")
	fs.Bool("inject-on-load", false, "inject the script after the first page load")
	fs.Bool("inject-on-shortcut", false, "inject the script each time the shortcut shows the window")
}

// liveWindows asks the running hub which webapps have a window.
func liveWindows(a *cli.App) map[string]bool {
	resp, err := a.Send(instance.Request{Command: instance.CmdWindows})
	if err != nil || resp.Err() != nil {
		return nil
	}
	var ids []string
	if err := json.Unmarshal([]byte(resp.Result), &ids); err != nil {
		return nil
	}
	open := make(map[string]bool, len(ids))
	for _, id := range ids {
		open[id] = true
	}
	return open
}

func runList(_ *cobra.Command, _ []string) error {
	a, err := requireApp()
	if err != nil {
		return err
	}

	apps := a.Hub().ListWebApps(a.Ctx())
	if listJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(apps)
	}

	fmt.Println(a.Renderer.RenderList(apps, liveWindows(a)))
	return nil
}

func readScript(inline, file string) (string, error) {
	if file == "" {
		return inline, nil
	}
	data, err := os.ReadFile(file)
	if err != nil {
		return "", fmt.Errorf("read script file: %w", err)
	}
	return string(data), nil
}

func runAdd(_ *cobra.Command, args []string) error {
	a, err := requireApp()
	if err != nil {
		return err
	}

	script, err := readScript(addScript, addScriptFile)
	if err != nil {
		return err
	}
	useProxy := !addNoProxy

	added, err := a.Hub().AddWebApp(a.Ctx(), hub.NewWebApp{
		Name:             args[0],
		URL:              args[1],
		Icon:             addIcon,
		Shortcut:         addShortcut,
		Width:            addWidth,
		Height:           addHeight,
		UseProxy:         &useProxy,
		InjectScript:     script,
		InjectOnLoad:     addInjectOnLoad,
		InjectOnShortcut: addInjectOnShortcut,
	})
	if err != nil {
		return err
	}
	a.NotifyGUI()

	fmt.Println(a.Renderer.RenderAdded(added))
	return nil
}

func runEdit(cmd *cobra.Command, args []string) error {
	a, err := requireApp()
	if err != nil {
		return err
	}
	target, err := a.FindWebApp(args[0])
	if err != nil {
		return err
	}

	patch, err := patchFromFlags(cmd.Flags())
	if err != nil {
		return err
	}

	updated, err := a.Hub().UpdateWebApp(a.Ctx(), target.ID, patch)
	if err != nil {
		return err
	}
	a.NotifyGUI()

	fmt.Println(a.Renderer.RenderUpdated(updated))
	return nil
}

// patchFromFlags turns the flags explicitly set into a partial update.
func patchFromFlags(flags *pflag.FlagSet) (hub.WebAppPatch, error) {
	var patch hub.WebAppPatch

	str := func(name string, dst **string) {
		if flags.Changed(name) {
			v, _ := flags.GetString(name)
			*dst = &v
		}
	}
	num := func(name string, dst **int) {
		if flags.Changed(name) {
			v, _ := flags.GetInt(name)
			*dst = &v
		}
	}
	flag := func(name string, dst **bool) {
		if flags.Changed(name) {
			v, _ := flags.GetBool(name)
			*dst = &v
		}
	}

	str("name", &patch.Name)
	str("url", &patch.URL)
	str("icon", &patch.Icon)
	str("shortcut", &patch.Shortcut)
	num("width", &patch.Width)
	num("height", &patch.Height)
	flag("proxy", &patch.UseProxy)
	str("script", &patch.InjectScript)
	flag("inject-on-load", &patch.InjectOnLoad)
	flag("inject-on-shortcut", &patch.InjectOnShortcut)

	if flags.Changed("script-file") {
		file, _ := flags.GetString("script-file")
		script, err := readScript("", file)
		if err != nil {
			return hub.WebAppPatch{}, err
		}
		patch.InjectScript = &script
	}
	return patch, nil
}

func runRemove(_ *cobra.Command, args []string) error {
	a, err := requireApp()
	if err != nil {
		return err
	}
	target, err := a.FindWebApp(args[0])
	if err != nil {
		return err
	}

	if err := a.Hub().DeleteWebApp(a.Ctx(), target.ID); err != nil {
		return err
	}
	a.NotifyGUI()

	fmt.Println(a.Renderer.RenderRemoved(target))
	return nil
}

func runReorder(_ *cobra.Command, args []string) error {
	a, err := requireApp()
	if err != nil {
		return err
	}

	ids := make([]string, len(args))
	for i, ref := range args {
		target, err := a.FindWebApp(ref)
		if err != nil {
			return err
		}
		ids[i] = target.ID
	}

	if err := a.Hub().ReorderWebApps(a.Ctx(), ids); err != nil {
		return err
	}
	a.NotifyGUI()

	fmt.Println(a.Renderer.RenderReordered(a.Hub().ListWebApps(a.Ctx())))
	return nil
}
