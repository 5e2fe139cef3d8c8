package main

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/pders01/anirss/internal/debuglog"
)

func newRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:     "remove <url>",
		Aliases: []string{"rm"},
		Short:   "Delete a subscription",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := ctx.open()
			if err != nil {
				return err
			}

			url := strings.TrimSpace(args[0])
			if !s.store.Remove(url) {
				return errors.Errorf("not subscribed: %s", url)
			}
			if res := s.store.Sync(); !res.OK() {
				return errors.Wrap(res.Err, "saving subscriptions")
			}
			if err := s.index.Remove(url); err != nil {
				debuglog.Warnf("removing %s from search index: %v", url, err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render("✓ removed ")+url)
			return nil
		},
	}
}
