package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/bnema/webhub/internal/cli/styles"
	"github.com/bnema/webhub/internal/domain/entity"
	"github.com/bnema/webhub/internal/infrastructure/config"
)

var proxyCmd = &cobra.Command{
	Use:   "proxy",
	Short: "Show or change the global proxy",
	Long: `Show or change the proxy used by webapps that opt in.

Without flags the current setting is printed. Changing the proxy recreates the
windows that use it.

Examples:
  webhub proxy --enable --host 127.0.0.1 --port 1080 --type socks5
  webhub proxy --user me --password secret
  webhub proxy --disable`,
	Args: cobra.NoArgs,
	RunE: runProxy,
}

var limitCmd = &cobra.Command{
	Use:   "limit [n]",
	Short: "Show or set the maximum number of open webapp windows",
	Long: `Show or set how many webapp windows stay alive at once. Lowering the limit
closes the least recently used windows right away.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLimit,
}

var schemaStdout bool

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Write the JSON schema of webhub.toml",
	Long: `Write the JSON schema of the config file next to it, for editor completion.
Use --stdout to print it instead.`,
	Args: cobra.NoArgs,
	RunE: runSchema,
}

func init() {
	rootCmd.AddCommand(proxyCmd, limitCmd, schemaCmd)

	addProxyFlags(proxyCmd.Flags())
	proxyCmd.MarkFlagsMutuallyExclusive("enable", "disable")

	schemaCmd.Flags().BoolVar(&schemaStdout, "stdout", false, "print the schema instead of writing it")
}

func addProxyFlags(fs *pflag.FlagSet) {
	fs.Bool("enable", false, "enable the proxy")
	fs.Bool("disable", false, "disable the proxy")
	fs.String("host", "", "proxy host")
	fs.Int("port", 0, "proxy port")
	fs.String("type", "", "proxy type: http, https or socks5")
	fs.String("user", "", "proxy username")
	fs.String("password", "", "proxy password")
}

// proxyFromFlags applies the flags explicitly set to current.
func proxyFromFlags(flags *pflag.FlagSet, current entity.ProxyConfig) (entity.ProxyConfig, bool, error) {
	next := current
	changed := false

	if flags.Changed("enable") {
		next.Enabled, changed = true, true
	}
	if flags.Changed("disable") {
		next.Enabled, changed = false, true
	}
	if flags.Changed("host") {
		next.Host, _ = flags.GetString("host")
		changed = true
	}
	if flags.Changed("port") {
		next.Port, _ = flags.GetInt("port")
		changed = true
	}
	if flags.Changed("type") {
		raw, _ := flags.GetString("type")
		t, err := entity.ParseProxyType(raw)
		if err != nil {
			return current, false, err
		}
		next.ProxyType = t
		changed = true
	}
	if flags.Changed("user") {
		next.Username, _ = flags.GetString("user")
		changed = true
	}
	if flags.Changed("password") {
		next.Password, _ = flags.GetString("password")
		changed = true
	}
	return next, changed, nil
}

func runProxy(cmd *cobra.Command, _ []string) error {
	a, err := requireApp()
	if err != nil {
		return err
	}

	current := a.Hub().GetConfig(a.Ctx()).Proxy
	next, changed, err := proxyFromFlags(cmd.Flags(), current)
	if err != nil {
		return err
	}
	if changed {
		if err := a.Hub().SetProxyConfig(a.Ctx(), next); err != nil {
			return err
		}
		a.NotifyGUI()
	}

	fmt.Println(a.Renderer.RenderProxy(a.Hub().GetConfig(a.Ctx()).Proxy))
	return nil
}

func runLimit(_ *cobra.Command, args []string) error {
	a, err := requireApp()
	if err != nil {
		return err
	}

	if len(args) == 1 {
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("%w: limit must be a number, got %q", entity.ErrInvalidConfig, args[0])
		}
		if err := a.Hub().SetMaxActiveWindows(a.Ctx(), n); err != nil {
			return err
		}
		a.NotifyGUI()
	}

	fmt.Println(a.Renderer.RenderLimit(a.Hub().GetConfig(a.Ctx()).MaxActiveWindows))
	return nil
}

func runSchema(_ *cobra.Command, _ []string) error {
	if schemaStdout {
		data, err := config.GenerateSchema()
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(append(data, '\n'))
		return err
	}

	store, err := config.NewDefaultStore()
	if err != nil {
		return err
	}
	path, err := store.WriteSchema()
	if err != nil {
		return err
	}
	fmt.Println(styles.NewWebAppsRenderer(styles.NewTheme()).RenderSchema(path))
	return nil
}
