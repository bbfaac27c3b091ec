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
	"slices"
)

// Stats is the serialized form of a graph. Chunks reference each other by
// key: the chunk's ID if set, otherwise its name.
type Stats struct {
	Chunks      []ChunkStats      `json:"chunks"`
	Entrypoints []EntrypointStats `json:"entrypoints,omitempty"`
}

// ChunkStats describes one chunk.
type ChunkStats struct {
	ID      string   `json:"id,omitempty"`
	Name    string   `json:"name,omitempty"`
	Modules []string `json:"modules"`
	Parents []string `json:"parents,omitempty"`
	// Entrypoints orders the chunk's entrypoints by name. Membership itself
	// comes from the top-level entrypoint list.
	Entrypoints []string `json:"entrypoints,omitempty"`
}

// EntrypointStats describes one entrypoint and its chunks in load order.
type EntrypointStats struct {
	Name   string   `json:"name"`
	Chunks []string `json:"chunks"`
}

func (c ChunkStats) key(i int) string {
	switch {
	case c.ID != "":
		return c.ID
	case c.Name != "":
		return c.Name
	default:
		return fmt.Sprintf("#%d", i)
	}
}

// Parse decodes stats JSON.
func Parse(data []byte) (*Stats, error) {
	var s Stats
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing chunk graph: %w", err)
	}
	return &s, nil
}

// Load decodes stats JSON into a new graph.
func Load(data []byte) (*Graph, error) {
	s, err := Parse(data)
	if err != nil {
		return nil, err
	}
	return s.Graph()
}

// Graph builds a new graph from the stats. Modules sharing a resource across
// chunks become a single module.
func (s *Stats) Graph() (*Graph, error) {
	g := New()
	byKey := make(map[string]*Chunk, len(s.Chunks))

	for i, cs := range s.Chunks {
		key := cs.key(i)
		if _, ok := byKey[key]; ok {
			return nil, fmt.Errorf("chunk %q: %w", key, ErrDuplicateChunk)
		}
		c, err := g.AddChunk(cs.Name)
		if err != nil {
			return nil, err
		}
		byKey[key] = c
		for _, resource := range cs.Modules {
			c.AddModule(g.AddModule(resource))
		}
	}

	for i, cs := range s.Chunks {
		c := byKey[cs.key(i)]
		for _, ref := range cs.Parents {
			p, ok := byKey[ref]
			if !ok {
				return nil, fmt.Errorf("chunk %q parent %q: %w", cs.key(i), ref, ErrUnknownChunk)
			}
			c.AddParent(p)
		}
	}

	for _, es := range s.Entrypoints {
		chunks := make([]*Chunk, 0, len(es.Chunks))
		for _, ref := range es.Chunks {
			c, ok := byKey[ref]
			if !ok {
				return nil, fmt.Errorf("entrypoint %q chunk %q: %w", es.Name, ref, ErrUnknownChunk)
			}
			chunks = append(chunks, c)
		}
		if _, err := g.AddEntrypoint(es.Name, chunks...); err != nil {
			return nil, err
		}
	}

	for i, cs := range s.Chunks {
		if len(cs.Entrypoints) > 0 {
			byKey[cs.key(i)].orderEntrypoints(cs.Entrypoints)
		}
	}

	return g, nil
}

// orderEntrypoints sorts the chunk's entrypoints to follow order. Entrypoints
// not named in order keep their relative position after the named ones.
func (c *Chunk) orderEntrypoints(order []string) {
	rank := func(e *Entrypoint) int {
		if i := slices.Index(order, e.name); i >= 0 {
			return i
		}
		return len(order)
	}
	slices.SortStableFunc(c.entrypoints, func(a, b *Entrypoint) int {
		return rank(a) - rank(b)
	})
}

// Stats serializes the graph. Entrypoints created outside the graph, such as
// those attached to chunks by a pass, are listed after the registered ones in
// the order they are first reached from the chunk list.
func (g *Graph) Stats() *Stats {
	s := &Stats{Chunks: make([]ChunkStats, 0, len(g.chunks))}

	for _, c := range g.chunks {
		cs := ChunkStats{
			Name:    c.name,
			Modules: make([]string, 0, len(c.modules)),
		}
		if c.name == "" {
			cs.ID = chunkKey(c)
		}
		for _, m := range c.modules {
			cs.Modules = append(cs.Modules, m.resource)
		}
		for _, p := range c.parents {
			cs.Parents = append(cs.Parents, chunkKey(p))
		}
		for _, e := range c.entrypoints {
			cs.Entrypoints = append(cs.Entrypoints, e.name)
		}
		s.Chunks = append(s.Chunks, cs)
	}

	seen := make(map[*Entrypoint]bool)
	add := func(e *Entrypoint) {
		if seen[e] {
			return
		}
		seen[e] = true
		es := EntrypointStats{Name: e.name, Chunks: make([]string, 0, len(e.chunks))}
		for _, c := range e.chunks {
			es.Chunks = append(es.Chunks, chunkKey(c))
		}
		s.Entrypoints = append(s.Entrypoints, es)
	}
	for _, e := range g.entrypoints {
		add(e)
	}
	for _, c := range g.chunks {
		for _, e := range c.entrypoints {
			add(e)
		}
	}

	return s
}

// chunkKey is the reference used for c in serialized stats.
func chunkKey(c *Chunk) string {
	return c.String()
}

// MarshalIndent returns the stats as indented JSON.
func (s *Stats) MarshalIndent() ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}
