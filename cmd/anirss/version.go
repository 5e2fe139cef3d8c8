package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Show version information",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), banner())
		},
	}
}

func banner() string {
	lines := []string{
		titleStyle.Render("anirss " + Version),
		"Anime RSS subscription manager",
		dimStyle.Render("github.com/pders01/anirss"),
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#4ECDC4")).
		Padding(0, 2).
		Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}
