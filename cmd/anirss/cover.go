package main

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/pders01/anirss/internal/cover"
	"github.com/pders01/anirss/internal/feed"
)

func newCoverCommand(ctx *commandContext) *cobra.Command {
	var overwrite bool
	var all bool

	cmd := &cobra.Command{
		Use:   "cover [image-url]",
		Short: "Cache a cover image, or every subscription's cover with --all",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := ctx.open()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if all {
				changed, err := s.resolver.RefreshCovers(cmd.Context(), overwrite)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, successStyle.Render(fmt.Sprintf("✓ %d covers updated", changed)))
				return nil
			}
			if len(args) == 0 {
				return errors.New("an image URL or --all is required")
			}

			covers := cover.New(s.cfg.FilesDir(), feed.NewFetcher(s.cfg))
			name := covers.Save(cmd.Context(), args[0], overwrite)
			if name == cover.Placeholder {
				fmt.Fprintln(out, dimStyle.Render("download failed, using placeholder"))
			}
			fmt.Fprintln(out, field("cover", name))
			fmt.Fprintln(out, field("path", covers.Path(name)))
			return nil
		},
	}

	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Download again even if cached")
	cmd.Flags().BoolVar(&all, "all", false, "Refresh the covers of all subscriptions")
	return cmd
}
