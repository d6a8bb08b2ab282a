// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Kindred Contributors

package main

import (
	"io"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	kerr "github.com/kindred-dev/kindred/pkg/errors"
)

const (
	formatTable = "table"
	formatJSON  = "json"
	formatYAML  = "yaml"
)

// render writes v in the requested format. table is used for the default
// human-readable form.
func render(w io.Writer, format string, v any, table func(io.Writer) error) error {
	switch format {
	case "", formatTable:
		return table(w)
	case formatJSON:
		out, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return kerr.Errorf(kerr.CodeCLIRequestFailure, "encoding json: %w", err)
		}
		_, err = w.Write(append(out, '\n'))
		return err
	case formatYAML:
		// Round-trip through JSON so YAML keys match the API field names.
		raw, err := json.Marshal(v)
		if err != nil {
			return kerr.Errorf(kerr.CodeCLIRequestFailure, "encoding yaml: %w", err)
		}
		var generic any
		if err := json.Unmarshal(raw, &generic); err != nil {
			return kerr.Errorf(kerr.CodeCLIRequestFailure, "encoding yaml: %w", err)
		}
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(generic); err != nil {
			return kerr.Errorf(kerr.CodeCLIRequestFailure, "encoding yaml: %w", err)
		}
		return enc.Close()
	default:
		return kerr.Errorf(kerr.CodeCLIInputInvalid, "unknown output format %q (want table, json or yaml)", format)
	}
}
