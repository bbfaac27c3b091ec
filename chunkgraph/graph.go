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

// Package chunkgraph models the module/chunk/entrypoint graph of a build.
//
// A Graph owns every module, chunk, and registered entrypoint it creates and
// hands out stable pointers to them. All collections keep insertion order so
// that passes over the graph are deterministic.
//
// By convention the first entrypoint of a chunk is its manifest entrypoint:
// the entrypoint carrying the runtime bootstrap for the entry the chunk
// belongs to. ManifestEntrypoint enforces that the entrypoint exists.
package chunkgraph

import (
	"errors"
	"fmt"
	"slices"
)

var (
	ErrDuplicateChunk = errors.New("chunk name already in use")
	ErrNoEntrypoint   = errors.New("chunk has no entrypoint")
	ErrNotInChunk     = errors.New("module is not in chunk")
	ErrUnknownChunk   = errors.New("unknown chunk")
)

// Graph is the arena holding a build's modules, chunks, and entrypoints.
type Graph struct {
	modules     []*Module
	chunks      []*Chunk
	entrypoints []*Entrypoint

	byResource map[string]*Module
	byName     map[string]*Chunk
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		byResource: make(map[string]*Module),
		byName:     make(map[string]*Chunk),
	}
}

// Module is a unit of code identified by its resource path.
type Module struct {
	id       int
	resource string
	chunks   []*Chunk
}

// ID returns the module's stable identifier within its graph.
func (m *Module) ID() int { return m.id }

// Resource returns the path used to match the module against buckets.
func (m *Module) Resource() string { return m.resource }

// Chunks returns the chunks the module currently belongs to.
func (m *Module) Chunks() []*Chunk { return slices.Clone(m.chunks) }

func (m *Module) String() string { return m.resource }

// Chunk is an output bundle: an ordered set of modules plus its position in
// the load graph.
type Chunk struct {
	id          int
	name        string
	modules     []*Module
	parents     []*Chunk
	entrypoints []*Entrypoint
}

// ID returns the chunk's stable identifier within its graph.
func (c *Chunk) ID() int { return c.id }

// Name returns the chunk name, which is empty for anonymous chunks.
func (c *Chunk) Name() string { return c.name }

func (c *Chunk) String() string {
	if c.name != "" {
		return c.name
	}
	return fmt.Sprintf("#%d", c.id)
}

// Modules returns a snapshot of the chunk's modules in order.
func (c *Chunk) Modules() []*Module { return slices.Clone(c.modules) }

// HasModule reports whether m is in the chunk.
func (c *Chunk) HasModule(m *Module) bool { return slices.Contains(c.modules, m) }

// AddModule appends m to the chunk. It returns false if m was already present.
func (c *Chunk) AddModule(m *Module) bool {
	if c.HasModule(m) {
		return false
	}
	c.modules = append(c.modules, m)
	m.chunks = append(m.chunks, c)
	return true
}

// RemoveModule removes m from the chunk. It returns false if m was absent.
func (c *Chunk) RemoveModule(m *Module) bool {
	i := slices.Index(c.modules, m)
	if i < 0 {
		return false
	}
	c.modules = slices.Delete(c.modules, i, i+1)
	if j := slices.Index(m.chunks, c); j >= 0 {
		m.chunks = slices.Delete(m.chunks, j, j+1)
	}
	return true
}

// MoveModule moves m from c into dst. If dst already holds m, the module
// simply leaves c.
func (c *Chunk) MoveModule(m *Module, dst *Chunk) error {
	if !c.RemoveModule(m) {
		return fmt.Errorf("moving %s out of %s: %w", m, c, ErrNotInChunk)
	}
	dst.AddModule(m)
	return nil
}

// Parents returns the chunks that must load before this one.
func (c *Chunk) Parents() []*Chunk { return slices.Clone(c.parents) }

// AddParent appends p to the parent list unless it is already there.
func (c *Chunk) AddParent(p *Chunk) bool {
	if slices.Contains(c.parents, p) {
		return false
	}
	c.parents = append(c.parents, p)
	return true
}

// SetParents replaces the parent list.
func (c *Chunk) SetParents(parents []*Chunk) {
	c.parents = slices.Clone(parents)
}

// Entrypoints returns the entrypoints the chunk belongs to, in order.
func (c *Chunk) Entrypoints() []*Entrypoint { return slices.Clone(c.entrypoints) }

// UnshiftEntrypoint inserts e as the chunk's first entrypoint.
func (c *Chunk) UnshiftEntrypoint(e *Entrypoint) {
	c.entrypoints = slices.Insert(c.entrypoints, 0, e)
}

// ManifestEntrypoint returns the chunk's first entrypoint.
func (c *Chunk) ManifestEntrypoint() (*Entrypoint, error) {
	if len(c.entrypoints) == 0 {
		return nil, fmt.Errorf("%s: %w", c, ErrNoEntrypoint)
	}
	return c.entrypoints[0], nil
}

// IsInitial reports whether the chunk is loaded as part of an entrypoint,
// as opposed to on demand.
func (c *Chunk) IsInitial() bool { return len(c.entrypoints) > 0 }

// Entrypoint is a named, ordered list of chunks forming one loadable unit.
type Entrypoint struct {
	name   string
	chunks []*Chunk
}

// NewEntrypoint creates an entrypoint that is not registered with any graph.
func NewEntrypoint(name string) *Entrypoint {
	return &Entrypoint{name: name}
}

// Name returns the entrypoint name.
func (e *Entrypoint) Name() string { return e.name }

// Chunks returns the entrypoint's chunks in load order.
func (e *Entrypoint) Chunks() []*Chunk { return slices.Clone(e.chunks) }

// PushChunk appends c to the entrypoint.
func (e *Entrypoint) PushChunk(c *Chunk) { e.chunks = append(e.chunks, c) }

// UnshiftChunk inserts c at the front of the entrypoint.
func (e *Entrypoint) UnshiftChunk(c *Chunk) { e.chunks = slices.Insert(e.chunks, 0, c) }

func (e *Entrypoint) String() string { return e.name }

// AddModule returns the module for resource, creating it on first use.
func (g *Graph) AddModule(resource string) *Module {
	if m, ok := g.byResource[resource]; ok {
		return m
	}
	m := &Module{id: len(g.modules), resource: resource}
	g.modules = append(g.modules, m)
	g.byResource[resource] = m
	return m
}

// Module returns the module for resource, or nil.
func (g *Graph) Module(resource string) *Module {
	return g.byResource[resource]
}

// Modules returns all modules in creation order.
func (g *Graph) Modules() []*Module { return slices.Clone(g.modules) }

// AddChunk creates and registers a chunk. An empty name creates an anonymous
// chunk; a name already in use fails with ErrDuplicateChunk.
func (g *Graph) AddChunk(name string) (*Chunk, error) {
	if name != "" {
		if _, ok := g.byName[name]; ok {
			return nil, fmt.Errorf("adding chunk %q: %w", name, ErrDuplicateChunk)
		}
	}
	c := &Chunk{id: len(g.chunks), name: name}
	g.chunks = append(g.chunks, c)
	if name != "" {
		g.byName[name] = c
	}
	return c, nil
}

// Chunk returns the chunk with the given name, or nil.
func (g *Graph) Chunk(name string) *Chunk {
	return g.byName[name]
}

// Chunks returns all chunks in creation order.
func (g *Graph) Chunks() []*Chunk { return slices.Clone(g.chunks) }

// AddEntrypoint registers a build entrypoint spanning chunks in load order.
// Each chunk gets the entrypoint appended to its own entrypoint list, so the
// first entrypoint registered for a chunk becomes its manifest entrypoint.
// A chunk listed more than once keeps its first position.
func (g *Graph) AddEntrypoint(name string, chunks ...*Chunk) (*Entrypoint, error) {
	e := NewEntrypoint(name)
	for _, c := range chunks {
		if c == nil || c.id >= len(g.chunks) || g.chunks[c.id] != c {
			return nil, fmt.Errorf("entrypoint %q: %w", name, ErrUnknownChunk)
		}
		if slices.Contains(e.chunks, c) {
			continue
		}
		e.PushChunk(c)
		c.entrypoints = append(c.entrypoints, e)
	}
	g.entrypoints = append(g.entrypoints, e)
	return e, nil
}

// Entrypoints returns the registered build entrypoints.
func (g *Graph) Entrypoints() []*Entrypoint { return slices.Clone(g.entrypoints) }
