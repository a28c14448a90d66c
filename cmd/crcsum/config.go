package main

import (
	"fmt"

	"github.com/jamesainslie/crcsum/pkg/crcsum/config"
	"github.com/spf13/cobra"
)

func newConfigCmd(a *app) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
		Long: `Manage crcsum configuration settings.

Configuration is loaded from:
  1. $XDG_CONFIG_HOME/crcsum/config.yaml (if set)
  2. ~/.config/crcsum/config.yaml

Environment variables can override config file settings using the CRCSUM_ prefix:
  CRCSUM_WORKERS=4
  CRCSUM_ALGORITHM=crc32c
  CRCSUM_LOGGING_LEVEL=debug`,
	}

	configCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Long:  `Display the effective configuration merged from file, environment and flags.`,
		Args:  cobra.NoArgs,
		RunE:  a.runConfigShow,
	})
	configCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		Args:  cobra.NoArgs,
		RunE:  a.runConfigPath,
	})
	configCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create default configuration file",
		Long:  `Create a default configuration file if one doesn't exist.`,
		Args:  cobra.NoArgs,
		RunE:  a.runConfigInit,
	})

	return configCmd
}

// runConfigShow displays the current configuration.
func (a *app) runConfigShow(cmd *cobra.Command, _ []string) error {
	w := cmd.OutOrStdout()

	if used := a.v.ConfigFileUsed(); used != "" {
		fmt.Fprintf(w, "# config file: %s\n", used)
	} else {
		fmt.Fprintln(w, "# config file: (using defaults, no file found)")
	}

	out, err := a.cfg.YAML()
	if err != nil {
		return err
	}
	_, err = w.Write(out)
	return err
}

// runConfigPath prints where the config file is read from.
func (a *app) runConfigPath(cmd *cobra.Command, _ []string) error {
	path := a.v.ConfigFileUsed()
	if path == "" {
		var err error
		path, err = config.ConfigPath()
		if err != nil {
			return err
		}
	}
	fmt.Fprintln(cmd.OutOrStdout(), path)
	return nil
}

// runConfigInit writes the default config file.
func (a *app) runConfigInit(cmd *cobra.Command, _ []string) error {
	path, err := config.WriteDefault()
	if err != nil {
		return err
	}
	logger.Debug("config initialized", "run", a.runID, "path", path)
	fmt.Fprintf(cmd.OutOrStdout(), "Config file: %s\n", path)
	return nil
}
