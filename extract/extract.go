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

// Package extract moves modules matching configured buckets out of initial
// chunks into one shared chunk per bucket, then repairs entrypoints and
// parents so the new chunks load with the entries they came from.
package extract

import (
	"fmt"

	"github.com/rs/zerolog"

	"bennypowers.dev/rechunk/bucket"
	"bennypowers.dev/rechunk/chunkgraph"
)

// ChunkAdder creates and registers a named chunk in the host graph.
type ChunkAdder interface {
	AddChunk(name string) (*chunkgraph.Chunk, error)
}

// Plugin runs the extraction pass once per compilation.
type Plugin struct {
	registry *bucket.Registry
	logger   zerolog.Logger
}

// New creates a plugin for the given registry.
func New(registry *bucket.Registry) *Plugin {
	return &Plugin{
		registry: registry,
		logger:   zerolog.Nop(),
	}
}

// WithLogger returns a new Plugin that logs to l.
func (p *Plugin) WithLogger(l zerolog.Logger) *Plugin {
	return &Plugin{
		registry: p.registry,
		logger:   l,
	}
}

// Apply hooks the plugin into every compilation run by c.
func (p *Plugin) Apply(c *chunkgraph.Compiler) {
	c.OnCompilation(func(comp *chunkgraph.Compilation) {
		comp.OnOptimizeChunks(func(comp *chunkgraph.Compilation, chunks []*chunkgraph.Chunk) error {
			return p.OptimizeChunks(comp, chunks)
		})
	})
}

// OptimizeChunks runs the pass over chunks, creating new chunks through host.
// It must run at most once per graph: it rewrites the module lists it reads.
// On error, mutations already applied are left in place.
func (p *Plugin) OptimizeChunks(host ChunkAdder, chunks []*chunkgraph.Chunk) error {
	ps := &pass{
		host:         host,
		registry:     p.registry,
		log:          p.logger,
		destinations: make(map[string]*chunkgraph.Chunk),
		sources:      make(map[string][]*chunkgraph.Chunk),
	}

	// New chunks are appended to the host's list as we go; they must not be
	// scanned, so the initial set is fixed up front.
	var initial []*chunkgraph.Chunk
	for _, c := range chunks {
		if c.IsInitial() && c.Name() != "" {
			initial = append(initial, c)
		}
	}

	for _, c := range initial {
		if err := ps.extract(c); err != nil {
			return err
		}
	}

	for _, b := range p.registry.Buckets() {
		dst, ok := ps.destinations[b.Name()]
		if !ok {
			continue
		}
		if err := ps.repair(dst); err != nil {
			return err
		}
	}

	return nil
}

// pass holds the state of a single run. Nothing survives between runs.
type pass struct {
	host     ChunkAdder
	registry *bucket.Registry
	log      zerolog.Logger

	// destinations maps bucket name to the chunk created for it.
	destinations map[string]*chunkgraph.Chunk
	// sources maps new chunk name to the distinct initial chunks that gave
	// it modules, in first-seen order.
	sources map[string][]*chunkgraph.Chunk
}

// extract routes the modules of one initial chunk to their buckets.
func (ps *pass) extract(src *chunkgraph.Chunk) error {
	for _, m := range src.Modules() {
		b := ps.registry.Lookup(m.Resource(), src.Name())
		if b == nil {
			continue
		}

		dst, err := ps.destination(b)
		if err != nil {
			return err
		}
		if err := src.MoveModule(m, dst); err != nil {
			return err
		}
		ps.addSource(dst, src)

		ps.log.Debug().
			Str("module", m.Resource()).
			Str("from", src.Name()).
			Str("to", dst.Name()).
			Msg("moved module")
	}
	return nil
}

// destination returns the chunk for b, creating it on first use.
func (ps *pass) destination(b *bucket.Bucket) (*chunkgraph.Chunk, error) {
	if dst, ok := ps.destinations[b.Name()]; ok {
		return dst, nil
	}
	dst, err := ps.host.AddChunk(b.Name())
	if err != nil {
		return nil, fmt.Errorf("creating chunk for bucket %q: %w", b.Name(), err)
	}
	ps.destinations[b.Name()] = dst
	return dst, nil
}

func (ps *pass) addSource(dst, src *chunkgraph.Chunk) {
	for _, c := range ps.sources[dst.Name()] {
		if c == src {
			return
		}
	}
	ps.sources[dst.Name()] = append(ps.sources[dst.Name()], src)
}
