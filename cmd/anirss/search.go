package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newSearchCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search subscriptions by title, TMDB name, subgroup or URL",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := ctx.open()
			if err != nil {
				return err
			}

			results, err := s.index.Search(strings.Join(args, " "), limit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(results) == 0 {
				fmt.Fprintln(out, dimStyle.Render("no matches"))
				return nil
			}
			for _, r := range results {
				name := r.Title
				if r.ThemoviedbName != "" && r.ThemoviedbName != r.Title {
					name += dimStyle.Render(" / " + r.ThemoviedbName)
				}
				fmt.Fprintf(out, "%s  %s\n", titleStyle.Render(name), dimStyle.Render(r.Subgroup))
				fmt.Fprintf(out, "  %s\n", r.URL)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Maximum number of results")
	return cmd
}
