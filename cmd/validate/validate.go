/*
Copyright © 2026 Benny Powers <web@bennypowers.com>

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with this program. If not, see <http://www.gnu.org/licenses/>.
*/

// Package validate provides the validate command for rechunk.
package validate

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"bennypowers.dev/rechunk/fs"
	"bennypowers.dev/rechunk/internal/output"
	"bennypowers.dev/rechunk/internal/pipeline"
	"bennypowers.dev/rechunk/report"
)

// Cmd is the validate command.
var Cmd = &cobra.Command{
	Use:   "validate",
	Short: "Check a bucket config and print its buckets in priority order",
	Long: `Load the bucket config, validate every bucket, and print the buckets in the
order they are matched. Exits non-zero on the first invalid bucket.`,
	Example: `  # Validate rechunk.yaml in the current directory
  rechunk validate

  # Validate a specific file and print JSON
  rechunk validate -c build/rechunk.jsonc --format json`,
	Args: cobra.NoArgs,
	RunE: run,
}

func init() {
	Cmd.Flags().StringP("format", "f", "table", "Output format (table, json)")
}

type bucketInfo struct {
	Name    string   `json:"name"`
	Pattern string   `json:"pattern"`
	Only    []string `json:"only,omitempty"`
	Except  []string `json:"except,omitempty"`
}

func run(cmd *cobra.Command, args []string) error {
	osfs := fs.NewOSFileSystem()

	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("error reading format flag: %w", err)
	}
	if format != "table" && format != "json" {
		return fmt.Errorf("invalid format %q: must be one of table, json", format)
	}

	cwd, err := filepath.Abs(".")
	if err != nil {
		return fmt.Errorf("resolving working directory: %w", err)
	}
	reg, err := pipeline.LoadRegistry(osfs, viper.GetString("config"), cwd)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	switch format {
	case "json":
		infos := make([]bucketInfo, 0, reg.Len())
		for _, b := range reg.Buckets() {
			infos = append(infos, bucketInfo{
				Name:    b.Name(),
				Pattern: b.Pattern(),
				Only:    b.Only(),
				Except:  b.Except(),
			})
		}
		out, err := json.MarshalIndent(infos, "", "  ")
		if err != nil {
			return fmt.Errorf("error marshaling buckets: %w", err)
		}
		buf.Write(out)
		buf.WriteByte('\n')
	default:
		report.Buckets(&buf, reg)
	}

	return output.Write(osfs, buf.Bytes())
}
