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
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"bennypowers.dev/rechunk/chunkgraph"
)

// Template is a script URL template with chunk placeholders:
//   - {chunk} - Chunk name, or its ID for anonymous chunks
//   - {name} - Chunk name (empty for anonymous chunks)
//   - {id} - Chunk ID
type Template struct {
	pattern   string
	variables []string
}

var variablePattern = regexp.MustCompile(`\{(\w+)\}`)

// ParseTemplate parses a URL template pattern. An empty pattern yields
// DefaultTemplate.
func ParseTemplate(pattern string) (*Template, error) {
	if pattern == "" {
		pattern = DefaultTemplate
	}

	var variables []string
	for _, match := range variablePattern.FindAllStringSubmatch(pattern, -1) {
		switch match[1] {
		case "chunk", "name", "id":
			variables = append(variables, match[1])
		default:
			return nil, fmt.Errorf("unknown template variable: {%s}", match[1])
		}
	}

	return &Template{pattern: pattern, variables: variables}, nil
}

// Expand substitutes the chunk's values into the template.
func (t *Template) Expand(c *chunkgraph.Chunk) string {
	id := strconv.Itoa(c.ID())
	chunk := c.Name()
	if chunk == "" {
		chunk = id
	}
	return strings.NewReplacer(
		"{chunk}", chunk,
		"{name}", c.Name(),
		"{id}", id,
	).Replace(t.pattern)
}

// Pattern returns the original template pattern.
func (t *Template) Pattern() string {
	return t.pattern
}

// Variables returns the variables used in the template, in order.
func (t *Template) Variables() []string {
	return t.variables
}
