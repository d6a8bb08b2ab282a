// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Kindred Contributors

package main

import (
	"errors"
	"io"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kindred-dev/kindred/internal/config"
	kerr "github.com/kindred-dev/kindred/pkg/errors"
)

// NewRootCmd creates the root kindred command with all subcommands registered.
func NewRootCmd() *cobra.Command {
	v := viper.New()

	root := &cobra.Command{
		Use:           "kindred",
		Short:         "Kindred: interest-based profile matching",
		Long:          "Kindred stores profiles with a fixed interest catalog and ranks opposite-category profiles by shared interests.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := initViper(cmd, v); err != nil {
				return err
			}
			setupLogging(cmd.ErrOrStderr(), v.GetBool("verbose"))
			return nil
		},
	}

	// Global flags. These map to viper keys via initViper.
	root.PersistentFlags().StringP("config", "c", "", "path to config file")
	root.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging")

	root.AddCommand(
		newStartCmd(v),
		newVersionCmd(),
		newInterestsCmd(v),
		newUsersCmd(),
	)

	return root
}

// initViper sets up v with defaults, env bindings, flag bindings, and an
// optional config file so the standard precedence (flag > env > file >
// defaults) is handled uniformly.
func initViper(cmd *cobra.Command, v *viper.Viper) error {
	config.SetDefaults(v)
	config.SetupEnv(v)

	if cfgFile, _ := cmd.Flags().GetString("config"); cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return kerr.Errorf(kerr.CodeConfigLoadReadFailure, "reading config file: %w", err)
		}
	} else {
		// SetConfigType is omitted so viper never matches the bare
		// ./kindred binary as a config file.
		v.SetConfigName("kindred")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/kindred")
		v.AddConfigPath("/etc/kindred")
		// No config file is fine. Parse or permission errors must surface.
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return kerr.Errorf(kerr.CodeConfigLoadReadFailure, "reading config: %w", err)
			}
			if cmd.Name() == "start" {
				bootstrapConfig(v)
			}
		}
	}

	if err := v.BindPFlag("verbose", cmd.Root().PersistentFlags().Lookup("verbose")); err != nil {
		return kerr.Errorf(kerr.CodeCLISetupFailure, "binding verbose flag: %w", err)
	}

	return nil
}

// bootstrapConfig writes the commented default config to
// ~/.config/kindred/ on first start and loads it.
func bootstrapConfig(v *viper.Viper) {
	path, err := config.DefaultConfigPath()
	if err != nil {
		slog.Debug("skipping config bootstrap", "error", err)
		return
	}
	if written := config.BootstrapConfig(path); written != "" {
		v.SetConfigFile(written)
		if err := v.ReadInConfig(); err != nil {
			slog.Warn("reading bootstrapped config", "path", written, "error", err)
		}
	}
}

func setupLogging(w io.Writer, verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))
}
