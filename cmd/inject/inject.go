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

// Package inject provides the inject command for rechunk.
package inject

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"bennypowers.dev/rechunk/cmd/run"
	"bennypowers.dev/rechunk/fs"
	"bennypowers.dev/rechunk/inject"
	"bennypowers.dev/rechunk/internal/pipeline"
	"bennypowers.dev/rechunk/report"
	"bennypowers.dev/rechunk/scan"
)

// Cmd is the inject command.
var Cmd = &cobra.Command{
	Use:   "inject GRAPH",
	Short: "Rechunk a graph and write entrypoint script tags into HTML files",
	Long: `Rechunk GRAPH, then update the script tags of HTML files in-place.

Each file gets the chunks of one entrypoint, in load order, between
<!-- rechunk --> and <!-- /rechunk --> markers. An existing marked region is
replaced; otherwise a new one is inserted before </head>. Without --entry,
each file uses the entrypoint named after it (admin.html uses "admin").`,
	Example: `  # Inject script tags into all HTML files
  rechunk inject stats.json --glob "_site/**/*.html"

  # One entrypoint for every page, with a custom URL template
  rechunk inject stats.json --glob "_site/**/*.html" --entry app --template "/assets/{chunk}.js"

  # Dry run to see what would change
  rechunk inject dist --glob "_site/**/*.html" --dry-run`,
	Args: cobra.ExactArgs(1),
	RunE: runInject,
}

func init() {
	Cmd.Flags().String("glob", "", "Glob pattern to match HTML files (required)")
	Cmd.Flags().String("entry", "", "Entrypoint to inject (default: the HTML file's base name)")
	Cmd.Flags().String("template", report.DefaultTemplate, "Script URL template")
	Cmd.Flags().String("input-format", "auto", "Graph format (auto, stats, metafile, dir)")
	Cmd.Flags().String("scan-glob", scan.DefaultGlob, "Output files to scan for directory input")
	Cmd.Flags().StringSlice("entries", nil, "Entry output files for directory input (default: outputs nothing imports)")
	Cmd.Flags().IntP("jobs", "j", 0, "Number of parallel workers (default: number of CPUs)")
	Cmd.Flags().Bool("dry-run", false, "Show what would change without modifying files")
	Cmd.Flags().StringP("format", "f", "text", "Output format (text, json)")
}

func runInject(cmd *cobra.Command, args []string) error {
	osfs := fs.NewOSFileSystem()
	start := time.Now()

	pattern, _ := cmd.Flags().GetString("glob")
	if pattern == "" {
		return fmt.Errorf("--glob is required")
	}
	format, _ := cmd.Flags().GetString("format")
	if format != "text" && format != "json" {
		return fmt.Errorf("invalid format %q: must be one of text, json", format)
	}

	files, err := pages(pattern)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		fmt.Fprintln(os.Stderr, "Warning: no files matched the glob pattern")
		return nil
	}

	pipelineOpts, err := run.Options(cmd, args[0])
	if err != nil {
		return err
	}
	rechunked, err := pipeline.Run(osfs, pipelineOpts, log.Logger)
	if err != nil {
		return err
	}

	var opts inject.Options
	opts.Entry, _ = cmd.Flags().GetString("entry")
	opts.Template, _ = cmd.Flags().GetString("template")
	opts.Parallel, _ = cmd.Flags().GetInt("jobs")
	opts.DryRun, _ = cmd.Flags().GetBool("dry-run")

	p := printer{json: format == "json", dryRun: opts.DryRun, out: cmd.OutOrStdout(), enc: json.NewEncoder(cmd.OutOrStdout())}

	var stats inject.Stats
	for result := range inject.InjectBatch(osfs, files, rechunked.Graph, opts) {
		stats.Add(result)
		p.result(result)
	}
	stats.Duration = time.Since(start).Milliseconds()
	p.summary(stats)

	if stats.Errors == stats.Total {
		return fmt.Errorf("all %d files failed", stats.Errors)
	}
	return nil
}

// pages expands the glob into absolute paths, dropping duplicates.
func pages(pattern string) ([]string, error) {
	matches, err := doublestar.FilepathGlob(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid glob pattern: %w", err)
	}
	files := make([]string, 0, len(matches))
	for _, match := range matches {
		abs, err := filepath.Abs(match)
		if err != nil {
			return nil, fmt.Errorf("invalid file path %q: %w", match, err)
		}
		if !slices.Contains(files, abs) {
			files = append(files, abs)
		}
	}
	return files, nil
}

// printer reports batch progress as text lines or JSON records.
type printer struct {
	json   bool
	dryRun bool
	out    io.Writer
	enc    *json.Encoder
}

func (p printer) result(r inject.Result) {
	switch {
	case r.Error != "":
		if p.json {
			_ = p.enc.Encode(r)
			return
		}
		fmt.Fprintf(os.Stderr, "Error: %s: %s\n", r.File, r.Error)
	case !r.Modified:
	case p.json:
		_ = p.enc.Encode(r)
	case p.dryRun && r.Inserted:
		fmt.Fprintf(p.out, "would insert into %s\n", r.File)
	case p.dryRun:
		fmt.Fprintf(p.out, "would update %s\n", r.File)
	}
}

func (p printer) summary(s inject.Stats) {
	if p.json {
		_ = p.enc.Encode(s)
		return
	}
	verb := "Injected: %d files modified"
	if p.dryRun {
		verb = "\nDry run: %d files would be modified"
	}
	fmt.Fprintf(p.out, verb+" (%d updated, %d new), %d unchanged, %d errors\n",
		s.Modified(), s.Updated, s.Inserted, s.Skipped, s.Errors)
}
