package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vanderheijden86/entropy/pkg/cliui"
	"github.com/vanderheijden86/entropy/pkg/config"
)

// skipConfig marks commands that must work even when the config file is
// broken.
const skipConfig = "entropy/skip-config"

func configCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and create the config file",
	}
	cmd.AddCommand(
		configPathCmd(a),
		configShowCmd(a),
		configInitCmd(a),
		configVariantsCmd(),
	)
	return cmd
}

func (a *app) path() string {
	if a.configPath != "" {
		return a.configPath
	}
	return config.ConfigPath()
}

func configPathCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:         "path",
		Short:       "Print the config file location",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{skipConfig: "true"},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), a.path())
		},
	}
}

func configShowCmd(a *app) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective config",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if format == "" {
				format = "yaml"
				if strings.EqualFold(filepath.Ext(a.path()), ".toml") {
					format = "toml"
				}
			}
			return config.Write(cmd.OutOrStdout(), a.cfg, format)
		},
	}
	cmd.Flags().StringVar(&format, "format", "", "yaml or toml (default from the config file extension)")
	return cmd
}

func configInitCmd(a *app) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Write a config file with the default settings",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{skipConfig: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			path := a.path()
			if path == "" {
				return errors.New("cannot determine config directory; pass --config")
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}
			if err := config.SaveTo(config.DefaultConfig(), path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "  %s wrote %s\n", cliui.StatusIcon(true), path)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing file")
	return cmd
}

func configVariantsCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "variants",
		Short:       "List the visual variants",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{skipConfig: "true"},
		Run: func(cmd *cobra.Command, args []string) {
			for _, name := range config.Variants() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
		},
	}
}
