package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"infragraph/internal/config"
)

var configOpts struct {
	force bool
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the configuration file",
}

var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write a config file with default settings",
	Long: `Write a config file holding the default settings, with any --store,
--format or --verbose flags applied. Without a path the file goes to
$XDG_CONFIG_HOME/infragraph/config.yaml (or ~/.config/infragraph).

An existing file is only replaced with --force.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := config.DefaultConfigPath()
		if len(args) == 1 {
			path = args[0]
		}
		if _, err := os.Stat(path); err == nil && !configOpts.force {
			return fmt.Errorf("config file %s already exists (use --force to replace it)", path)
		}

		cfg := config.DefaultConfig()
		applyFlagOverrides(cmd, cfg)
		if err := cfg.Validate(); err != nil {
			return err
		}
		if err := cfg.Save(path); err != nil {
			return fmt.Errorf("write config: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), cfg.Summary())
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "List the config search path",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		found := config.FindConfigPath()
		for _, path := range config.SearchPaths() {
			fmt.Fprintln(out, path)
		}
		if found == "" {
			fmt.Fprintln(out, "(no config file found, using defaults)")
		} else {
			fmt.Fprintf(out, "(using %s)\n", found)
		}
		return nil
	},
}

func init() {
	configInitCmd.Flags().BoolVar(&configOpts.force, "force", false, "replace an existing file")

	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configPathCmd)
}
