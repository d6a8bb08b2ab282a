// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Kindred Contributors

package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kindred-dev/kindred/internal/config"
	kerr "github.com/kindred-dev/kindred/pkg/errors"
)

type interestRow struct {
	Bit  int    `json:"bit"`
	Name string `json:"name"`
}

func newInterestsCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "interests",
		Short: "Print the configured interest catalog with bit positions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.FromViper(v)
			if err != nil {
				return kerr.Wrap(err, kerr.CodeCLISetupFailure, "loading config")
			}
			catalog, err := cfg.Catalog()
			if err != nil {
				return err
			}

			names := catalog.Names()
			rows := make([]interestRow, len(names))
			for i, name := range names {
				rows[i] = interestRow{Bit: i, Name: name}
			}

			format, _ := cmd.Flags().GetString("output")
			return render(cmd.OutOrStdout(), format, rows, func(w io.Writer) error {
				tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
				_, _ = fmt.Fprintln(tw, "BIT\tNAME")
				for _, r := range rows {
					_, _ = fmt.Fprintf(tw, "%d\t%s\n", r.Bit, r.Name)
				}
				return tw.Flush()
			})
		},
	}

	cmd.Flags().StringP("output", "o", formatTable, "output format (table, json, yaml)")

	return cmd
}
