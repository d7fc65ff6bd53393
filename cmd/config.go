package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/oakwood-commons/treepick/internal/config"
)

func newConfigCommand(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect treepick configuration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "get",
			Short: "Show the merged configuration (defaults, config file, environment)",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				out, err := root.cfg.YAML()
				if err != nil {
					return err
				}
				_, err = cmd.OutOrStdout().Write(out)
				return err
			},
		},
		&cobra.Command{
			Use:   "default",
			Short: "Print the built-in default configuration",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				_, err := cmd.OutOrStdout().Write(config.DefaultConfigYAML())
				return err
			},
		},
		&cobra.Command{
			Use:   "path",
			Short: "Print where treepick looks for its config file",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				if root.configFile != "" {
					_, err := fmt.Fprintln(cmd.OutOrStdout(), root.configFile)
					return err
				}
				dir, err := config.ConfigDir()
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), filepath.Join(dir, config.ConfigFileName))
				return err
			},
		},
	)
	return cmd
}
