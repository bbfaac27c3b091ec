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

package scan

import (
	"encoding/json"
	"fmt"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"bennypowers.dev/rechunk/chunkgraph"
	"bennypowers.dev/rechunk/fs"
)

// DefaultGlob selects the output files of a directory scan.
const DefaultGlob = "**/*.{js,mjs}"

// Options configures a directory scan.
type Options struct {
	// Glob selects output files, relative to the root. Defaults to DefaultGlob.
	Glob string
	// Entries lists entry outputs, relative to the root. When empty, every
	// output that no other output imports is an entry.
	Entries []string
}

// Metafile scans the output files under root and describes them the way an
// esbuild metafile would. Output keys are slash-separated paths relative to
// root. An output without module comments is its own single module.
func Metafile(fsys fs.FileSystem, root string, opts Options) (*chunkgraph.Metafile, error) {
	pattern := opts.Glob
	if pattern == "" {
		pattern = DefaultGlob
	}
	files, err := fs.Glob(fsys, root, pattern, "node_modules")
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no output files in %s match %s", root, pattern)
	}

	meta := &chunkgraph.Metafile{Outputs: make(map[string]chunkgraph.MetafileOutput, len(files))}
	imported := make(map[string]bool)

	for _, rel := range files {
		content, err := fsys.ReadFile(filepath.Join(root, filepath.FromSlash(rel)))
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", rel, err)
		}

		modules, err := ExtractModules(content)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", rel, err)
		}
		if len(modules) == 0 {
			modules = []string{rel}
		}
		inputs := make(map[string]json.RawMessage, len(modules))
		for _, m := range modules {
			inputs[m] = json.RawMessage("{}")
		}

		specs, err := ExtractImports(content)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", rel, err)
		}
		imports := make([]chunkgraph.MetafileImport, 0, len(specs))
		for _, spec := range specs {
			imp := chunkgraph.MetafileImport{Path: spec.Specifier, Kind: "import-statement"}
			if spec.IsDynamic {
				imp.Kind = "dynamic-import"
			}
			if target, ok := resolve(rel, spec.Specifier, files); ok {
				imp.Path = target
				imported[target] = true
			} else {
				imp.External = true
			}
			imports = append(imports, imp)
		}

		meta.Outputs[rel] = chunkgraph.MetafileOutput{Inputs: inputs, Imports: imports}
	}

	entries := opts.Entries
	if len(entries) == 0 {
		for _, rel := range files {
			if !imported[rel] {
				entries = append(entries, rel)
			}
		}
	}
	for _, entry := range entries {
		entry = filepath.ToSlash(entry)
		out, ok := meta.Outputs[entry]
		if !ok {
			return nil, fmt.Errorf("entry %s: not an output file under %s", entry, root)
		}
		out.EntryPoint = entry
		meta.Outputs[entry] = out
	}

	return meta, nil
}

// Graph scans the output files under root into a chunk graph.
func Graph(fsys fs.FileSystem, root string, opts Options) (*chunkgraph.Graph, error) {
	meta, err := Metafile(fsys, root, opts)
	if err != nil {
		return nil, err
	}
	return meta.Graph()
}

// resolve maps a relative specifier in output from to another output.
func resolve(from, specifier string, outputs []string) (string, bool) {
	if !strings.HasPrefix(specifier, "./") && !strings.HasPrefix(specifier, "../") {
		return "", false
	}
	target := path.Clean(path.Join(path.Dir(from), specifier))
	if !slices.Contains(outputs, target) {
		return "", false
	}
	return target, true
}
