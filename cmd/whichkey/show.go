package main

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/dshills/whichkey/internal/app"
	"github.com/dshills/whichkey/internal/status"
)

func (c *cli) showCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show [section]",
		Short: "Show a menu in the terminal",
		Long: `Show the menu of a binding section in the terminal. Without a section
the menu of whichkey.bindings is shown.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.interactive(cmd, args, (*app.WhichKey).Show)
		},
	}
	cmd.Flags().Bool("watch", false, "reload configuration files while the menu is open")
	return cmd
}

func (c *cli) searchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search [section]",
		Short: "Search the bindings of a menu in the terminal",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.interactive(cmd, args, (*app.WhichKey).Search)
		},
	}
}

// interactive runs a menu on the terminal and prints the last status
// message once the terminal is restored.
func (c *cli) interactive(cmd *cobra.Command, args []string, run func(*app.WhichKey, context.Context) error) error {
	t, err := newTerminal()
	if err != nil {
		return err
	}
	e, err := c.open(t.ui())
	if err != nil {
		t.close()
		return err
	}
	defer e.close()

	if watch, _ := cmd.Flags().GetBool("watch"); watch {
		if err := e.store.Watch(); err != nil {
			e.logger.Warn("watching configuration", "error", err)
		}
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	go t.loop(e.app.Relay(), cancel)

	err = run(c.menu(e, args), ctx)
	t.close()

	if msg, ok := t.last(); ok {
		status.NewWriter(cmd.OutOrStdout()).Show(msg)
	}
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
