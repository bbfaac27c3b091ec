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
package chunkgraph

import (
	"encoding/json"
	"fmt"

	"bennypowers.dev/rechunk/fs"
)

// Input formats accepted by Read and ReadFile.
const (
	FormatAuto     = "auto"
	FormatStats    = "stats"
	FormatMetafile = "metafile"
)

// Read builds a graph from data in the given format. FormatAuto treats a
// document with a top-level "outputs" key as an esbuild metafile and anything
// else as stats.
func Read(data []byte, format string) (*Graph, error) {
	switch format {
	case FormatStats:
		return Load(data)
	case FormatMetafile:
		return LoadMetafile(data)
	case FormatAuto, "":
		var probe map[string]json.RawMessage
		if err := json.Unmarshal(data, &probe); err != nil {
			return nil, fmt.Errorf("parsing chunk graph: %w", err)
		}
		if _, ok := probe["outputs"]; ok {
			return LoadMetafile(data)
		}
		return Load(data)
	default:
		return nil, fmt.Errorf("unknown graph format %q: must be one of auto, stats, metafile", format)
	}
}

// ReadFile reads and builds a graph from a file.
func ReadFile(fsys fs.FileSystem, path, format string) (*Graph, error) {
	data, err := fsys.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	g, err := Read(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return g, nil
}
