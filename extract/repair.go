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
package extract

import (
	"fmt"
	"slices"

	"bennypowers.dev/rechunk/chunkgraph"
)

// repair wires a new chunk into the graph once all modules have moved.
//
// The chunk gets its own entrypoint, so it reports its own name, and is then
// attached to the manifest entrypoint of the first chunk it drew modules
// from, so requires resolve through the same runtime. Its parents become the
// parents shared by every source chunk.
func (ps *pass) repair(dst *chunkgraph.Chunk) error {
	sources := ps.sources[dst.Name()]
	if len(sources) == 0 {
		return fmt.Errorf("chunk %s has no source chunks", dst)
	}

	self := chunkgraph.NewEntrypoint(dst.Name())
	self.PushChunk(dst)
	dst.UnshiftEntrypoint(self)

	manifest, err := sources[0].ManifestEntrypoint()
	if err != nil {
		return fmt.Errorf("wiring %s into the runtime: %w", dst, err)
	}
	dst.UnshiftEntrypoint(manifest)
	manifest.PushChunk(dst)

	parents := commonParents(sources)
	dst.SetParents(parents)

	ps.log.Info().
		Str("chunk", dst.Name()).
		Int("modules", len(dst.Modules())).
		Int("sources", len(sources)).
		Str("manifest", manifest.Name()).
		Int("parents", len(parents)).
		Msg("created chunk")

	return nil
}

// commonParents returns the parents shared by every source, in the order they
// appear among the first source's parents. A single source keeps all of its
// parents.
func commonParents(sources []*chunkgraph.Chunk) []*chunkgraph.Chunk {
	if len(sources) == 0 {
		return nil
	}

	var common []*chunkgraph.Chunk
	for _, p := range sources[0].Parents() {
		if !slices.Contains(common, p) {
			common = append(common, p)
		}
	}
	for _, src := range sources[1:] {
		parents := src.Parents()
		common = slices.DeleteFunc(common, func(p *chunkgraph.Chunk) bool {
			return !slices.Contains(parents, p)
		})
	}
	return common
}
