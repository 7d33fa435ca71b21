package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/dshills/whichkey/internal/picklist"
	"github.com/dshills/whichkey/internal/relay"
	"github.com/dshills/whichkey/internal/status"
)

// spaceKey names the space key in --keys.
const spaceKey = "SPC"

var (
	errMenuOpen   = errors.New("menu still open after the last key")
	errMenuClosed = errors.New("menu closed")
)

func (c *cli) runCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [section]",
		Short: "Run a menu without a terminal, pressing the given keys",
		Long: `Run the menu of a binding section headlessly. Each key of --keys is
pressed in turn once the menu is ready; status messages are printed.`,
		Example: `  whichkey run --keys "e h"
  whichkey run --keys "z + + q"`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			keys, _ := cmd.Flags().GetString("keys")
			timeout, _ := cmd.Flags().GetDuration("timeout")
			pause, _ := cmd.Flags().GetDuration("key-delay")
			return c.headless(cmd, args, parseKeys(keys), timeout, pause)
		},
	}
	cmd.Flags().String("keys", "", `keys to press, separated by spaces; "`+spaceKey+`" is the space key`)
	cmd.Flags().Duration("timeout", 2*time.Second, "how long to wait for the menu")
	cmd.Flags().Duration("key-delay", 20*time.Millisecond, "pause after each key so nested menus can open")
	return cmd
}

func (c *cli) headless(cmd *cobra.Command, args, keys []string, timeout, pause time.Duration) error {
	var (
		mu   sync.Mutex
		last *picklist.Headless
	)
	e, err := c.open(ui{
		notes: status.NewBar(status.NewWriter(cmd.OutOrStdout())),
		newWidget: func() picklist.Widget {
			w := picklist.NewHeadless()
			mu.Lock()
			last = w
			mu.Unlock()
			return w
		},
	})
	if err != nil {
		return err
	}
	defer e.close()

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	w := c.menu(e, args)
	done := make(chan struct{})
	var showErr error
	go func() {
		defer close(done)
		showErr = w.Show(ctx)
	}()

	r := e.app.Relay()
	ready := func() bool {
		mu.Lock()
		defer mu.Unlock()
		return r.Active() && last != nil && last.Visible()
	}
	for _, k := range keys {
		if err := waitReady(ctx, ready, done); err != nil {
			return fmt.Errorf("pressing %q: %w", k, err)
		}
		r.TriggerKey(relay.KeyEvent{Key: k})
		select {
		case <-time.After(pause):
		case <-done:
		}
	}

	select {
	case <-done:
	case <-ctx.Done():
		mu.Lock()
		widget := last
		mu.Unlock()
		if widget != nil {
			widget.Dismiss()
		}
		<-done
	}
	if ctx.Err() != nil {
		return errMenuOpen
	}
	return showErr
}

// waitReady waits until a menu shows its widget.
func waitReady(ctx context.Context, ready func() bool, done <-chan struct{}) error {
	tick := time.NewTicker(time.Millisecond)
	defer tick.Stop()
	for !ready() {
		select {
		case <-done:
			return errMenuClosed
		case <-ctx.Done():
			return ctx.Err()
		case <-tick.C:
		}
	}
	return nil
}

func parseKeys(s string) []string {
	fields := strings.Fields(s)
	for i, f := range fields {
		if f == spaceKey {
			fields[i] = " "
		}
	}
	return fields
}
