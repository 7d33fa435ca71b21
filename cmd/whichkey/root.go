package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// cli holds the settings shared by every subcommand. Flags are bound to
// viper so each can also be set through a WHICHKEY_* environment variable.
type cli struct {
	v *viper.Viper
}

func newRootCmd() *cobra.Command {
	c := &cli{v: viper.New()}

	root := &cobra.Command{
		Use:   "whichkey",
		Short: "Key-driven command menus",
		Long: `whichkey shows a menu of key bindings read from layered configuration
files. Typing a key runs its command or opens its submenu.

Configuration is read from the built-in defaults, the user file and the
workspace file (.whichkey.toml), in increasing priority.`,
		Version:      fmt.Sprintf("%s (commit %s, built %s)", version, commit, date),
		SilenceUsage: true,
	}

	f := root.PersistentFlags()
	f.String("config", "", "user configuration file (default $XDG_CONFIG_HOME/whichkey/config.toml)")
	f.String("workspace", ".", "workspace directory searched for "+workspaceFileName)
	f.String("commands", "", "Lua script defining commands")
	f.String("language", "", "language id matched by conditional bindings")
	f.String("sort-order", "", "override whichkey.sortOrder")
	f.Bool("layers", false, "treat the section as a layer map")
	f.String("log-level", "info", "log level (debug, info, warn, error)")
	f.String("log-file", "", "write logs to this file")
	if err := c.v.BindPFlags(f); err != nil {
		panic(err)
	}
	c.v.SetEnvPrefix("WHICHKEY")
	c.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	c.v.AutomaticEnv()

	root.AddCommand(
		c.showCmd(),
		c.runCmd(),
		c.searchCmd(),
		c.dumpCmd(),
	)
	return root
}
