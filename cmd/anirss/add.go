package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pders01/anirss/internal/storage"
	"github.com/pders01/anirss/internal/validation"
)

func newAddCommand(ctx *commandContext) *cobra.Command {
	var typ, bgmURL string
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "add <url>",
		Short: "Subscribe to an anime RSS feed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			feedURL, err := validation.FeedURL(args[0])
			if err != nil {
				return err
			}

			s, err := ctx.open()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if dryRun {
				sub, err := s.resolver.Resolve(cmd.Context(), feedURL, typ, bgmURL)
				if err != nil {
					return err
				}
				printSubscription(out, sub)
				fmt.Fprintln(out, dimStyle.Render("dry run: nothing saved"))
				return nil
			}

			sub, err := s.resolver.Add(cmd.Context(), feedURL, typ, bgmURL)
			if err != nil {
				return err
			}
			printSubscription(out, sub)
			fmt.Fprintln(out, successStyle.Render("✓ subscribed"))
			return nil
		},
	}

	cmd.Flags().StringVarP(&typ, "type", "t", storage.TypeMikan, "Feed type: mikan or other")
	cmd.Flags().StringVar(&bgmURL, "bgm-url", "", "bgm.tv subject URL, for feeds that are not from Mikan")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Resolve and print without saving")
	return cmd
}

func printSubscription(out io.Writer, sub *storage.Subscription) {
	fmt.Fprintln(out, titleStyle.Render(sub.Title))
	fmt.Fprintln(out, field("url", sub.URL))
	fmt.Fprintln(out, field("type", sub.Type))
	fmt.Fprintln(out, field("subgroup", sub.Subgroup))
	fmt.Fprintln(out, field("season", strconv.Itoa(sub.SeasonNumber())))
	fmt.Fprintln(out, field("offset", strconv.Itoa(sub.EpisodeOffset())))
	if sub.ThemoviedbName != "" {
		fmt.Fprintln(out, field("tmdb", sub.ThemoviedbName))
	}
	if sub.BgmURL != "" {
		fmt.Fprintln(out, field("bangumi", sub.BgmURL))
	}
	fmt.Fprintln(out, field("download", sub.DownloadPath))
	if len(sub.Exclude) > 0 {
		fmt.Fprintln(out, field("exclude", strings.Join(sub.Exclude, ", ")))
	}
	if sub.Ova {
		fmt.Fprintln(out, field("ova", "yes"))
	}
}
