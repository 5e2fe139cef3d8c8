package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/pders01/anirss/internal/textutil"
)

const (
	listTitleWidth = 36
	listURLWidth   = 48
)

func newListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List subscriptions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := ctx.open()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			subs := s.store.All()
			if len(subs) == 0 {
				fmt.Fprintln(out, dimStyle.Render("no subscriptions"))
				return nil
			}
			for _, sub := range subs {
				state := successStyle.Render("●")
				if !sub.Enable {
					state = dimStyle.Render("○")
				}
				title := textutil.TruncateEnd(sub.Title, listTitleWidth)
				pad := listTitleWidth - textutil.Width(title)
				fmt.Fprintf(out, "%s %s%*s  S%-2s %s\n",
					state,
					title, pad, "",
					strconv.Itoa(sub.SeasonNumber()),
					dimStyle.Render(textutil.TruncateMiddle(sub.URL, listURLWidth)),
				)
			}
			fmt.Fprintln(out, dimStyle.Render(fmt.Sprintf("%d subscriptions", len(subs))))
			return nil
		},
	}
}
