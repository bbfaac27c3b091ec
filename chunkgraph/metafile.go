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
	"path"
	"sort"
	"strings"
)

// Metafile is the subset of an esbuild metafile needed to build a graph.
type Metafile struct {
	Outputs map[string]MetafileOutput `json:"outputs"`
}

// MetafileOutput is one output file of an esbuild build.
type MetafileOutput struct {
	Inputs     map[string]json.RawMessage `json:"inputs"`
	Imports    []MetafileImport           `json:"imports"`
	EntryPoint string                     `json:"entryPoint,omitempty"`
}

// MetafileImport is an import between outputs, or of an external path.
type MetafileImport struct {
	Path     string `json:"path"`
	Kind     string `json:"kind"`
	External bool   `json:"external,omitempty"`
}

// LoadMetafile builds a graph from esbuild metafile JSON.
//
// Outputs with an entry point become initial chunks named after the entry
// file's base name, each with an entrypoint listing its statically imported
// outputs ahead of itself. Other outputs become anonymous chunks. A static
// import makes the imported output a parent of the importer; a dynamic
// import makes the importer a parent of the imported output. Source map
// outputs are skipped.
func LoadMetafile(data []byte) (*Graph, error) {
	var meta Metafile
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("parsing metafile: %w", err)
	}
	return meta.Graph()
}

// Graph builds a graph from the metafile. See LoadMetafile.
func (meta *Metafile) Graph() (*Graph, error) {
	outputs := make([]string, 0, len(meta.Outputs))
	for key := range meta.Outputs {
		if strings.HasSuffix(key, ".map") {
			continue
		}
		outputs = append(outputs, key)
	}
	sort.Strings(outputs)

	entryNames := meta.entryNames(outputs)

	g := New()
	chunks := make(map[string]*Chunk, len(outputs))
	for _, key := range outputs {
		out := meta.Outputs[key]
		c, err := g.AddChunk(entryNames[key])
		if err != nil {
			return nil, fmt.Errorf("output %s: %w", key, err)
		}
		chunks[key] = c

		inputs := make([]string, 0, len(out.Inputs))
		for input := range out.Inputs {
			inputs = append(inputs, input)
		}
		sort.Strings(inputs)
		for _, input := range inputs {
			c.AddModule(g.AddModule(input))
		}
	}

	for _, key := range outputs {
		c := chunks[key]
		for _, imp := range meta.Outputs[key].Imports {
			dep, ok := chunks[imp.Path]
			if imp.External || !ok {
				continue
			}
			switch imp.Kind {
			case "import-statement":
				c.AddParent(dep)
			case "dynamic-import":
				dep.AddParent(c)
			}
		}
	}

	for _, key := range outputs {
		out := meta.Outputs[key]
		if out.EntryPoint == "" {
			continue
		}
		var order []*Chunk
		visited := make(map[string]bool)
		var visit func(string)
		visit = func(k string) {
			if visited[k] {
				return
			}
			visited[k] = true
			for _, imp := range meta.Outputs[k].Imports {
				if _, ok := chunks[imp.Path]; ok && !imp.External && imp.Kind == "import-statement" {
					visit(imp.Path)
				}
			}
			order = append(order, chunks[k])
		}
		visit(key)

		if _, err := g.AddEntrypoint(chunks[key].Name(), order...); err != nil {
			return nil, err
		}
	}

	return g, nil
}

// entryNames names the chunk of each entry output after the entry file's base
// name without extension. Entries whose base names collide are named after
// their output path without extension instead, e.g. "out/pages/home/index".
func (meta *Metafile) entryNames(outputs []string) map[string]string {
	names := make(map[string]string)
	count := make(map[string]int)
	for _, key := range outputs {
		entry := meta.Outputs[key].EntryPoint
		if entry == "" {
			continue
		}
		names[key] = trimExt(path.Base(entry))
		count[names[key]]++
	}
	for key, name := range names {
		if count[name] > 1 {
			names[key] = trimExt(key)
		}
	}
	return names
}

func trimExt(p string) string {
	return strings.TrimSuffix(p, path.Ext(p))
}
