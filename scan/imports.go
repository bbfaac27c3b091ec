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

// Package scan reads built JavaScript output files with tree-sitter and
// describes them as a chunk graph. Each output file is a chunk. Its modules
// come from the input path comments esbuild writes ahead of every bundled
// module, and its relations come from the output's import statements.
package scan

import (
	"fmt"
	"path"
	"strings"

	ts "github.com/tree-sitter/go-tree-sitter"
)

// Import is an import specifier found in an output file.
type Import struct {
	Specifier string // e.g. "./chunk-AB12.js"
	IsDynamic bool   // import() rather than a static import or re-export
	Line      int
}

// parse runs fn over the matches of the named query in content.
func parse(content []byte, queryName string, fn func(name string, node *ts.Node)) error {
	q, err := getQueries()
	if err != nil {
		return err
	}

	parser := getParser()
	defer putParser(parser)

	tree := parser.Parse(content, nil)
	if tree == nil {
		return fmt.Errorf("failed to parse content")
	}
	defer tree.Close()

	query, err := q.get(queryName)
	if err != nil {
		return err
	}

	cursor := ts.NewQueryCursor()
	defer cursor.Close()

	matches := cursor.Matches(query, tree.RootNode(), content)
	captureNames := query.CaptureNames()
	for {
		match := matches.Next()
		if match == nil {
			break
		}
		for _, capture := range match.Captures {
			fn(captureNames[capture.Index], &capture.Node)
		}
	}
	return nil
}

// ExtractImports returns the import specifiers of a JavaScript file in
// source order.
func ExtractImports(content []byte) ([]Import, error) {
	var imports []Import
	err := parse(content, "imports", func(name string, node *ts.Node) {
		imp := Import{
			Specifier: node.Utf8Text(content),
			Line:      int(node.StartPosition().Row) + 1,
		}
		switch name {
		case "import.spec", "reexport.spec":
		case "dynamicImport.spec":
			imp.IsDynamic = true
		default:
			return
		}
		imports = append(imports, imp)
	})
	if err != nil {
		return nil, err
	}
	return imports, nil
}

// ExtractModules returns the input paths named by top-level module
// comments, in source order and without duplicates.
func ExtractModules(content []byte) ([]string, error) {
	var modules []string
	seen := make(map[string]bool)
	err := parse(content, "modules", func(name string, node *ts.Node) {
		if name != "module.comment" {
			return
		}
		resource, ok := moduleComment(node.Utf8Text(content))
		if ok && !seen[resource] {
			seen[resource] = true
			modules = append(modules, resource)
		}
	})
	if err != nil {
		return nil, err
	}
	return modules, nil
}

// moduleComment reports whether a comment is an esbuild input path marker
// and returns the path.
func moduleComment(text string) (string, bool) {
	if !strings.HasPrefix(text, "//") {
		return "", false
	}
	resource := strings.TrimSpace(strings.TrimPrefix(text, "//"))
	if resource == "" || strings.ContainsAny(resource, " \t") {
		return "", false
	}
	if path.Ext(resource) == "" {
		return "", false
	}
	return resource, true
}
