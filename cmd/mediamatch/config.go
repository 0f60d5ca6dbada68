package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Nomadcxx/mediamatch/internal/config"
	"github.com/Nomadcxx/mediamatch/internal/paths"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage mediamatch configuration",
		Long: `Commands for managing mediamatch configuration.

The config file is stored at: ~/.config/mediamatch/config.toml

Examples:
  mediamatch config init              # Create default config file
  mediamatch config show              # Display current configuration
  mediamatch config path              # Show config file path`,
	}

	cmd.AddCommand(newConfigInitCmd())
	cmd.AddCommand(newConfigShowCmd())
	cmd.AddCommand(newConfigPathCmd())

	return cmd
}

func configFilePath() (string, error) {
	if cfgFile != "" {
		return cfgFile, nil
	}
	return paths.ConfigPath()
}

func newConfigInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create default configuration file",
		Long: `Create a new configuration file with default values.

Edit this file to set the catalog source, watch directories and API keys.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := configFilePath()
			if err != nil {
				return fmt.Errorf("unable to get config path: %w", err)
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("config already exists at %s (use --force to overwrite)", path)
			}

			if err := config.DefaultConfig().SaveTo(path); err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "✓ Created config file: %s\n", path)
			fmt.Fprintln(out, "\nNext steps:")
			fmt.Fprintln(out, "  1. Import a catalog with 'mediamatch catalog import <snapshot.json>'")
			fmt.Fprintln(out, "  2. Edit the config file to enable Radarr, ffprobe or watch directories")
			fmt.Fprintln(out, "  3. Run 'mediamatch arr ping' to verify connections")
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite existing config file")

	return cmd
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Display current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if cfg.Radarr.APIKey != "" {
				cfg.Radarr.APIKey = "********"
			}
			if cfg.Sonarr.APIKey != "" {
				cfg.Sonarr.APIKey = "********"
			}
			if cfg.Server.APIKey != "" {
				cfg.Server.APIKey = "********"
			}
			fmt.Fprint(cmd.OutOrStdout(), cfg.ToTOML())
			return nil
		},
	}
}

func newConfigPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Show config file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := configFilePath()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
}
