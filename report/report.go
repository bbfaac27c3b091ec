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

// Package report renders chunk graphs for people and for other tools.
package report

import (
	"fmt"
	"strings"

	"bennypowers.dev/rechunk/chunkgraph"
)

// Formats lists the output formats of rechunk run.
var Formats = []string{"json", "table", "diff", "html"}

// JSON returns the graph as indented stats JSON.
func JSON(g *chunkgraph.Graph) ([]byte, error) {
	data, err := g.Stats().MarshalIndent()
	if err != nil {
		return nil, fmt.Errorf("encoding stats: %w", err)
	}
	return data, nil
}

// Listing renders stats as stable, line-oriented text: one block per chunk,
// then one line per entrypoint.
func Listing(s *chunkgraph.Stats) string {
	var b strings.Builder
	for _, c := range s.Chunks {
		label := c.Name
		if label == "" {
			label = c.ID
		}
		fmt.Fprintf(&b, "chunk %s\n", label)
		if len(c.Parents) > 0 {
			fmt.Fprintf(&b, "  parents: %s\n", strings.Join(c.Parents, " "))
		}
		if len(c.Entrypoints) > 0 {
			fmt.Fprintf(&b, "  entrypoints: %s\n", strings.Join(c.Entrypoints, " "))
		}
		for _, m := range c.Modules {
			fmt.Fprintf(&b, "  module %s\n", m)
		}
	}
	for _, e := range s.Entrypoints {
		fmt.Fprintf(&b, "entrypoint %s: %s\n", e.Name, strings.Join(e.Chunks, " "))
	}
	return b.String()
}
