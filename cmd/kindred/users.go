// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Kindred Contributors

package main

import (
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kindred-dev/kindred/internal/matching"
	kerr "github.com/kindred-dev/kindred/pkg/errors"
)

func newUsersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Inspect profiles on a running server",
	}

	cmd.PersistentFlags().String("address", defaultAddress, "kindred server address")
	cmd.PersistentFlags().StringP("output", "o", formatTable, "output format (table, json, yaml)")

	cmd.AddCommand(
		newUsersGetCmd(),
		newUsersListCmd(),
		newUsersMatchesCmd(),
		newUsersDeleteCmd(),
	)

	return cmd
}

func newUsersGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show a profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseUserID(args[0])
			if err != nil {
				return err
			}
			addr, format := clientFlags(cmd)
			out := cmd.OutOrStdout()

			var view matching.ProfileView
			if err := newAPIClient(addr).getJSON(cmd.Context(), "/api/v1/users/"+strconv.FormatInt(id, 10), &view); err != nil {
				if notRunning(out, addr, err) {
					return nil
				}
				return kerr.Wrap(err, kerr.CodeCLIRequestFailure, "getting profile")
			}

			return render(out, format, view, func(w io.Writer) error {
				return writeProfiles(w, []matching.ProfileView{view})
			})
		},
	}
}

func newUsersListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List profiles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			addr, format := clientFlags(cmd)
			skip, _ := cmd.Flags().GetInt("skip")
			limit, _ := cmd.Flags().GetInt("limit")
			out := cmd.OutOrStdout()

			q := url.Values{}
			q.Set("skip", strconv.Itoa(skip))
			if limit > 0 {
				q.Set("limit", strconv.Itoa(limit))
			}

			var body struct {
				Users []matching.ProfileView `json:"users"`
			}
			if err := newAPIClient(addr).getJSON(cmd.Context(), "/api/v1/users?"+q.Encode(), &body); err != nil {
				if notRunning(out, addr, err) {
					return nil
				}
				return kerr.Wrap(err, kerr.CodeCLIRequestFailure, "listing profiles")
			}

			return render(out, format, body.Users, func(w io.Writer) error {
				if len(body.Users) == 0 {
					_, err := fmt.Fprintln(w, "No profiles found")
					return err
				}
				return writeProfiles(w, body.Users)
			})
		},
	}

	cmd.Flags().Int("skip", 0, "number of profiles to skip")
	cmd.Flags().Int("limit", 0, "page size (server default when unset)")

	return cmd
}

func newUsersMatchesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "matches <id>",
		Short: "Rank matches for a profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseUserID(args[0])
			if err != nil {
				return err
			}
			addr, format := clientFlags(cmd)
			limit, _ := cmd.Flags().GetInt("limit")
			out := cmd.OutOrStdout()

			path := "/api/v1/users/" + strconv.FormatInt(id, 10) + "/matches"
			if cmd.Flags().Changed("limit") {
				path += "?limit=" + strconv.Itoa(limit)
			}

			var body struct {
				Matches []matching.Match `json:"matches"`
			}
			if err := newAPIClient(addr).getJSON(cmd.Context(), path, &body); err != nil {
				if notRunning(out, addr, err) {
					return nil
				}
				return kerr.Wrap(err, kerr.CodeCLIRequestFailure, "getting matches")
			}

			return render(out, format, body.Matches, func(w io.Writer) error {
				if len(body.Matches) == 0 {
					_, err := fmt.Fprintln(w, "No matches found")
					return err
				}
				tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
				_, _ = fmt.Fprintln(tw, "SCORE\tID\tNAME\tCITY\tINTERESTS")
				for _, m := range body.Matches {
					c := m.Candidate
					_, _ = fmt.Fprintf(tw, "%d\t%d\t%s\t%s\t%s\n",
						m.Score, c.ID, c.Name, c.City, strings.Join(c.Interests, ", "))
				}
				return tw.Flush()
			})
		},
	}

	cmd.Flags().Int("limit", 0, "maximum number of matches (server default when unset)")

	return cmd
}

func newUsersDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseUserID(args[0])
			if err != nil {
				return err
			}
			addr, _ := clientFlags(cmd)
			out := cmd.OutOrStdout()

			var body struct {
				Message string `json:"message"`
			}
			if err := newAPIClient(addr).deleteJSON(cmd.Context(), "/api/v1/users/"+strconv.FormatInt(id, 10), &body); err != nil {
				if notRunning(out, addr, err) {
					return nil
				}
				return kerr.Wrap(err, kerr.CodeCLIRequestFailure, "deleting profile")
			}
			_, err = fmt.Fprintln(out, body.Message)
			return err
		},
	}
}

func clientFlags(cmd *cobra.Command) (addr, format string) {
	addr, _ = cmd.Flags().GetString("address")
	format, _ = cmd.Flags().GetString("output")
	return addr, format
}

func parseUserID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, kerr.Errorf(kerr.CodeCLIInputInvalid, "invalid user id %q", raw)
	}
	return id, nil
}

func writeProfiles(w io.Writer, views []matching.ProfileView) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ID\tNAME\tEMAIL\tCATEGORY\tCITY\tINTERESTS")
	for _, v := range views {
		_, _ = fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n",
			v.ID, v.Name, v.Email, v.Category, v.City, strings.Join(v.Interests, ", "))
	}
	return tw.Flush()
}
