package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/dshills/whichkey/internal/app"
	"github.com/dshills/whichkey/internal/binding"
	"github.com/dshills/whichkey/internal/status"
)

func (c *cli) dumpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dump [section]",
		Short: "Print the composed bindings of a menu as YAML",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := c.open(ui{notes: status.NewBar(status.NewWriter(cmd.ErrOrStderr()))})
			if err != nil {
				return err
			}
			defer e.close()

			section := app.DefaultConfig.Bindings
			if len(args) > 0 {
				section = args[0]
			}
			var items []binding.Item
			if tree := c.menu(e, args).Tree(); tree != nil {
				items = tree.Items(tree.Roots())
			}

			out := cmd.OutOrStdout()
			if name, file, ok := e.store.Origin(section); ok {
				if file != "" {
					name += " " + file
				}
				fmt.Fprintf(out, "# %s from %s\n", section, name)
			}
			return writeYAML(out, items)
		},
	}
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}
