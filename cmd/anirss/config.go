package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/pders01/anirss/internal/config"
)

func newConfigCommand() *cobra.Command {
	configCmd := &cobra.Command{
		Use:         "config",
		Short:       "Configuration utilities",
		Annotations: map[string]string{"skipConfigLoad": "true"},
	}

	configCmd.AddCommand(newConfigGenerateCommand())
	return configCmd
}

func defaultConfigFile() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "anirss", "config.toml")
}

func newConfigGenerateCommand() *cobra.Command {
	var targetPath string
	var overwrite bool

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write the default configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(targetPath)
			if target == "" {
				target = defaultConfigFile()
			}

			if !overwrite {
				if _, err := os.Stat(target); err == nil {
					return errors.Errorf("config file already exists at %s (use --overwrite to replace it)", target)
				}
			}

			if err := config.GenerateDefaultConfig(target); err != nil {
				return errors.Wrap(err, "generate config")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Generated default configuration at: %s\n", target)
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the configuration file")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing configuration if present")
	return cmd
}
