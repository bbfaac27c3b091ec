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

import "fmt"

// OptimizeChunksFunc runs during the chunk optimization phase of a
// compilation with the chunk list as it stands. Returning an error aborts the
// compilation.
type OptimizeChunksFunc func(c *Compilation, chunks []*Chunk) error

// Compiler fires compilation hooks for each graph it compiles.
type Compiler struct {
	onCompilation []func(*Compilation)
}

// NewCompiler creates a compiler with no hooks registered.
func NewCompiler() *Compiler {
	return &Compiler{}
}

// OnCompilation registers fn to run once at the start of every compilation,
// before chunk optimization.
func (c *Compiler) OnCompilation(fn func(*Compilation)) {
	c.onCompilation = append(c.onCompilation, fn)
}

// Compile runs one compilation over g: compilation hooks first, then each
// optimize-chunks hook in registration order. Hooks mutate g in place.
func (c *Compiler) Compile(g *Graph) (*Compilation, error) {
	comp := &Compilation{graph: g}
	for _, fn := range c.onCompilation {
		fn(comp)
	}
	for i, fn := range comp.onOptimizeChunks {
		if err := fn(comp, g.Chunks()); err != nil {
			return comp, fmt.Errorf("optimize-chunks hook %d: %w", i, err)
		}
	}
	return comp, nil
}

// Compilation is a single run of the compiler over a graph.
type Compilation struct {
	graph            *Graph
	onOptimizeChunks []OptimizeChunksFunc
}

// Graph returns the graph being compiled.
func (c *Compilation) Graph() *Graph {
	return c.graph
}

// OnOptimizeChunks registers fn to run during chunk optimization.
func (c *Compilation) OnOptimizeChunks(fn OptimizeChunksFunc) {
	c.onOptimizeChunks = append(c.onOptimizeChunks, fn)
}

// AddChunk creates a chunk in the compilation's graph.
func (c *Compilation) AddChunk(name string) (*Chunk, error) {
	return c.graph.AddChunk(name)
}
