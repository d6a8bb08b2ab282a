// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Kindred Contributors

package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kindred-dev/kindred/internal/config"
	kerr "github.com/kindred-dev/kindred/pkg/errors"
)

func newStartCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start the kindred server",
		Long:  "Load configuration, open the store and cache, and serve the HTTP API until interrupted.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runStart(cmd, v)
		},
	}

	cmd.Flags().String("listen", "", "override listen address (host:port)")
	cmd.Flags().String("storage", "", "override storage backend (sqlite, memory)")
	cmd.Flags().String("cache", "", "override cache backend (redis, memory, none)")
	_ = v.BindPFlag("networking.listen", cmd.Flags().Lookup("listen"))
	_ = v.BindPFlag("storage.backend", cmd.Flags().Lookup("storage"))
	_ = v.BindPFlag("cache.backend", cmd.Flags().Lookup("cache"))

	return cmd
}

func runStart(cmd *cobra.Command, v *viper.Viper) error {
	cfg, err := config.FromViper(v)
	if err != nil {
		return kerr.Wrap(err, kerr.CodeCLISetupFailure, "loading config")
	}
	config.WarnInsecurePermissions(v.ConfigFileUsed())

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := WireApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = app.Close() }()

	if _, err := fmt.Fprintf(cmd.OutOrStdout(), "Starting kindred on %s\n", cfg.Networking.Listen); err != nil {
		return err
	}
	return app.Run(ctx)
}
