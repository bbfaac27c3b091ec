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

// Package scan provides the scan command for rechunk.
package scan

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"bennypowers.dev/rechunk/fs"
	"bennypowers.dev/rechunk/internal/output"
	"bennypowers.dev/rechunk/report"
	"bennypowers.dev/rechunk/scan"
)

// Cmd is the scan cobra command that reads a directory of esbuild output
// files and prints the chunk graph it describes, before any rechunking.
var Cmd = &cobra.Command{
	Use:   "scan DIR",
	Short: "Read esbuild output files and print their chunk graph",
	Long: `Parse the JavaScript output files under DIR and print the chunk graph they
describe. Each output file is a chunk. Its modules come from the input path
comments esbuild writes before each bundled module, and its parents and
entrypoints come from its import statements.

Use --format metafile to write an esbuild-style metafile that "rechunk run"
accepts.`,
	Example: `  # Print the scanned graph as stats JSON
  rechunk scan dist

  # Only consider top-level files, with explicit entries
  rechunk scan dist --glob "*.js" --entries app.js,admin.js --format table

  # Save a metafile for later runs
  rechunk scan dist --format metafile -o meta.json`,
	Args: cobra.ExactArgs(1),
	RunE: run,
}

func init() {
	Cmd.Flags().StringP("format", "f", "json", "Output format (json, metafile, table)")
	Cmd.Flags().String("glob", scan.DefaultGlob, "Output files to scan, relative to DIR")
	Cmd.Flags().StringSlice("entries", nil, "Entry output files (default: outputs nothing imports)")
}

func run(cmd *cobra.Command, args []string) error {
	osfs := fs.NewOSFileSystem()

	format, _ := cmd.Flags().GetString("format")
	switch format {
	case "json", "metafile", "table":
		// valid
	default:
		return fmt.Errorf("invalid format %q: must be one of json, metafile, table", format)
	}

	globPattern, _ := cmd.Flags().GetString("glob")
	entries, _ := cmd.Flags().GetStringSlice("entries")
	opts := scan.Options{Glob: globPattern, Entries: entries}

	meta, err := scan.Metafile(osfs, args[0], opts)
	if err != nil {
		return fmt.Errorf("failed to scan: %w", err)
	}

	var buf bytes.Buffer
	if format == "metafile" {
		out, err := json.MarshalIndent(meta, "", "  ")
		if err != nil {
			return fmt.Errorf("error marshaling metafile: %w", err)
		}
		buf.Write(out)
		buf.WriteByte('\n')
		return output.Write(osfs, buf.Bytes())
	}

	g, err := meta.Graph()
	if err != nil {
		return fmt.Errorf("failed to build graph: %w", err)
	}
	if format == "table" {
		report.Table(&buf, g)
	} else {
		out, err := report.JSON(g)
		if err != nil {
			return err
		}
		buf.Write(out)
		buf.WriteByte('\n')
	}
	return output.Write(osfs, buf.Bytes())
}
