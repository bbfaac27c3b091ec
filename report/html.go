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

package report

import (
	"errors"
	"fmt"
	"io"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"bennypowers.dev/rechunk/chunkgraph"
)

// DefaultTemplate maps a chunk to the URL of its output file.
const DefaultTemplate = "/{chunk}.js"

// ErrUnknownEntrypoint is returned when no entrypoint has the requested name.
var ErrUnknownEntrypoint = errors.New("unknown entrypoint")

// FindEntrypoint returns the named entrypoint. Entrypoints registered with
// the graph are searched before those attached only to chunks.
func FindEntrypoint(g *chunkgraph.Graph, name string) (*chunkgraph.Entrypoint, error) {
	for _, e := range g.Entrypoints() {
		if e.Name() == name {
			return e, nil
		}
	}
	for _, c := range g.Chunks() {
		for _, e := range c.Entrypoints() {
			if e.Name() == name {
				return e, nil
			}
		}
	}
	return nil, fmt.Errorf("%w %q", ErrUnknownEntrypoint, name)
}

// ScriptNodes returns one deferred script element per chunk of the named
// entrypoint, in load order.
func ScriptNodes(g *chunkgraph.Graph, entry, template string) ([]*html.Node, error) {
	tmpl, err := ParseTemplate(template)
	if err != nil {
		return nil, err
	}
	ep, err := FindEntrypoint(g, entry)
	if err != nil {
		return nil, err
	}
	nodes := make([]*html.Node, 0, len(ep.Chunks()))
	for _, c := range ep.Chunks() {
		nodes = append(nodes, &html.Node{
			Type:     html.ElementNode,
			Data:     "script",
			DataAtom: atom.Script,
			Attr: []html.Attribute{
				{Key: "src", Val: tmpl.Expand(c)},
				{Key: "defer"},
			},
		})
	}
	return nodes, nil
}

// HTML writes the script tags for an entrypoint, one per line, each line
// prefixed with indent.
func HTML(w io.Writer, g *chunkgraph.Graph, entry, template, indent string) error {
	nodes, err := ScriptNodes(g, entry, template)
	if err != nil {
		return err
	}
	for _, n := range nodes {
		if _, err := io.WriteString(w, indent); err != nil {
			return err
		}
		if err := html.Render(w, n); err != nil {
			return fmt.Errorf("rendering script tag: %w", err)
		}
		if _, err := io.WriteString(w, "\n"); err != nil {
			return err
		}
	}
	return nil
}
