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

// Package run provides the run command for rechunk.
package run

import (
	"bytes"
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"bennypowers.dev/rechunk/fs"
	"bennypowers.dev/rechunk/internal/output"
	"bennypowers.dev/rechunk/internal/pipeline"
	"bennypowers.dev/rechunk/report"
	"bennypowers.dev/rechunk/scan"
)

// Cmd is the run command.
var Cmd = &cobra.Command{
	Use:   "run GRAPH",
	Short: "Rechunk a build's chunk graph",
	Long: `Load a chunk graph, move the modules of its initial chunks that match the
configured buckets into one shared chunk per bucket, and print the result.

GRAPH is a stats file, an esbuild metafile, or a directory of esbuild output
files.`,
	Example: `  # Print the rechunked graph as stats JSON
  rechunk run stats.json

  # Show what the pass changed
  rechunk run meta.json --format diff

  # Scan an esbuild output directory and print a chunk table
  rechunk run dist --format table

  # Print script tags for the app entrypoint
  rechunk run stats.json --format html --entry app --template "/assets/{chunk}.js"`,
	Args: cobra.ExactArgs(1),
	RunE: run,
}

func init() {
	Cmd.Flags().StringP("format", "f", "json", "Output format (json, table, diff, html)")
	Cmd.Flags().String("input-format", "auto", "Graph format (auto, stats, metafile, dir)")
	Cmd.Flags().String("entry", "", "Entrypoint for --format html")
	Cmd.Flags().String("template", report.DefaultTemplate, "Script URL template for --format html")
	Cmd.Flags().String("scan-glob", scan.DefaultGlob, "Output files to scan for directory input")
	Cmd.Flags().StringSlice("entries", nil, "Entry output files for directory input (default: outputs nothing imports)")

	_ = viper.BindPFlag("run.format", Cmd.Flags().Lookup("format"))
}

func run(cmd *cobra.Command, args []string) error {
	osfs := fs.NewOSFileSystem()

	format := viper.GetString("run.format")
	switch format {
	case "json", "table", "diff", "html":
		// valid
	default:
		return fmt.Errorf("invalid format %q: must be one of json, table, diff, html", format)
	}
	entry, _ := cmd.Flags().GetString("entry")
	if format == "html" && entry == "" {
		return fmt.Errorf("--entry is required for --format html")
	}

	opts, err := Options(cmd, args[0])
	if err != nil {
		return err
	}

	result, err := pipeline.Run(osfs, opts, log.Logger)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	switch format {
	case "json":
		data, err := report.JSON(result.Graph)
		if err != nil {
			return err
		}
		buf.Write(data)
		buf.WriteByte('\n')
	case "table":
		report.Table(&buf, result.Graph)
	case "diff":
		diff, err := report.Diff(result.Before, result.Graph.Stats())
		if err != nil {
			return err
		}
		buf.WriteString(diff)
	case "html":
		template, _ := cmd.Flags().GetString("template")
		if err := report.HTML(&buf, result.Graph, entry, template, ""); err != nil {
			return err
		}
	}

	return output.Write(osfs, buf.Bytes())
}

// Options builds pipeline options from the shared graph and config flags.
// It is used by every command that rechunks a graph.
func Options(cmd *cobra.Command, graph string) (pipeline.Options, error) {
	cwd, err := filepath.Abs(".")
	if err != nil {
		return pipeline.Options{}, fmt.Errorf("resolving working directory: %w", err)
	}
	opts := pipeline.Options{
		Graph:     graph,
		Config:    viper.GetString("config"),
		ConfigDir: cwd,
	}
	if f := cmd.Flags().Lookup("input-format"); f != nil {
		opts.InputFormat = f.Value.String()
	}
	opts.Scan.Glob, _ = cmd.Flags().GetString("scan-glob")
	opts.Scan.Entries, _ = cmd.Flags().GetStringSlice("entries")
	return opts, nil
}
