package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/Paintersrp/uvcview/internal/config"
)

func newConfigCmd(ctx *context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Work with the uvcview configuration file",
	}
	cmd.AddCommand(newConfigInitCmd(ctx))
	cmd.AddCommand(newConfigShowCmd(ctx))
	cmd.AddCommand(newConfigLintCmd(ctx))
	return cmd
}

func (c *context) configFile() (string, error) {
	if c.configPath != "" {
		return c.configPath, nil
	}
	base, err := c.baseDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, config.DefaultFileName), nil
}

func newConfigInitCmd(ctx *context) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a configuration file with the default settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := ctx.configFile()
			if err != nil {
				return err
			}
			exists, err := afero.Exists(ctx.fs, path)
			if err != nil {
				return err
			}
			if exists && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}
			if err := config.WriteFile(ctx.fs, path, config.Default()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")
	return cmd
}

func newConfigShowCmd(ctx *context) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration after environment and flag overrides",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := ctx.loadSettings(cmd)
			if err != nil {
				return err
			}
			data, err := s.cfg.Encode()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}

func newConfigLintCmd(ctx *context) *cobra.Command {
	return &cobra.Command{
		Use:   "lint",
		Short: "Validate a configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := ctx.configFile()
			if err != nil {
				return err
			}

			if _, err := config.Load(ctx.fs, path); err != nil {
				if errors.Is(err, os.ErrNotExist) {
					err = fmt.Errorf("%s: %w", path, err)
				}
				fmt.Fprintln(cmd.ErrOrStderr(), err)
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s: OK\n", path)
			return nil
		},
	}
}
