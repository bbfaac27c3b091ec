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

// Package pipeline loads a chunk graph and a bucket configuration and runs
// the extraction pass over them, as the rechunk commands do.
package pipeline

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"bennypowers.dev/rechunk/bucket"
	"bennypowers.dev/rechunk/chunkgraph"
	"bennypowers.dev/rechunk/config"
	"bennypowers.dev/rechunk/extract"
	"bennypowers.dev/rechunk/fs"
	"bennypowers.dev/rechunk/scan"
)

// FormatDir reads a directory of built output files instead of a graph file.
const FormatDir = "dir"

// Options selects the inputs of a run.
type Options struct {
	// Graph is a stats or metafile path, or an output directory.
	Graph string
	// InputFormat is auto, stats, metafile, or dir. With auto, a directory
	// is scanned and a file is detected by content.
	InputFormat string
	// Config is the bucket config path. When empty, it is found in ConfigDir.
	Config    string
	ConfigDir string
	// Scan configures directory input.
	Scan scan.Options
}

// Result holds a graph before and after the pass.
type Result struct {
	Before   *chunkgraph.Stats
	Graph    *chunkgraph.Graph
	Registry *bucket.Registry
}

// LoadRegistry loads the bucket config and validates it.
func LoadRegistry(fsys fs.FileSystem, path, dir string) (*bucket.Registry, error) {
	if path == "" {
		found, err := config.Find(fsys, dir)
		if err != nil {
			return nil, err
		}
		path = found
	}
	cfg, err := config.Load(fsys, path)
	if err != nil {
		return nil, err
	}
	reg, err := cfg.Registry()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return reg, nil
}

// LoadGraph reads the input graph.
func LoadGraph(fsys fs.FileSystem, opts Options) (*chunkgraph.Graph, error) {
	format := opts.InputFormat
	if format == "" {
		format = chunkgraph.FormatAuto
	}
	if format == chunkgraph.FormatAuto && fs.IsDir(fsys, opts.Graph) {
		format = FormatDir
	}
	if format == FormatDir {
		g, err := scan.Graph(fsys, opts.Graph, opts.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning %s: %w", opts.Graph, err)
		}
		return g, nil
	}
	return chunkgraph.ReadFile(fsys, opts.Graph, format)
}

// Run loads the inputs and applies the extraction pass through a compiler.
func Run(fsys fs.FileSystem, opts Options, logger zerolog.Logger) (*Result, error) {
	if opts.Graph == "" {
		return nil, errors.New("a chunk graph path is required")
	}

	reg, err := LoadRegistry(fsys, opts.Config, opts.ConfigDir)
	if err != nil {
		return nil, err
	}

	g, err := LoadGraph(fsys, opts)
	if err != nil {
		return nil, err
	}
	before := g.Stats()

	compiler := chunkgraph.NewCompiler()
	extract.New(reg).WithLogger(logger).Apply(compiler)
	if _, err := compiler.Compile(g); err != nil {
		return nil, fmt.Errorf("rechunking %s: %w", opts.Graph, err)
	}

	logger.Debug().
		Int("buckets", reg.Len()).
		Int("chunks", len(g.Chunks())).
		Msg("rechunked graph")

	return &Result{Before: before, Graph: g, Registry: reg}, nil
}
