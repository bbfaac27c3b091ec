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

package scan

import (
	"embed"
	"fmt"
	"path"
	"sync"

	ts "github.com/tree-sitter/go-tree-sitter"
	tsTypescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

//go:embed queries/*/*.scm
var queryFiles embed.FS

var typescript = ts.NewLanguage(tsTypescript.LanguageTypescript())

var parserPool = sync.Pool{
	New: func() any {
		parser := ts.NewParser()
		if err := parser.SetLanguage(typescript); err != nil {
			panic("failed to set TypeScript language: " + err.Error())
		}
		return parser
	},
}

func getParser() *ts.Parser {
	return parserPool.Get().(*ts.Parser)
}

func putParser(p *ts.Parser) {
	p.Reset()
	parserPool.Put(p)
}

// queries holds the compiled TypeScript queries, keyed by file name.
type queries struct {
	mu     sync.Mutex
	closed bool
	byName map[string]*ts.Query
}

func newQueries(names ...string) (*queries, error) {
	q := &queries{byName: make(map[string]*ts.Query, len(names))}
	for _, name := range names {
		if err := q.load(name); err != nil {
			q.Close()
			return nil, err
		}
	}
	return q, nil
}

func (q *queries) load(name string) error {
	queryPath := path.Join("queries", "typescript", name+".scm")
	data, err := queryFiles.ReadFile(queryPath)
	if err != nil {
		return fmt.Errorf("failed to read query %s: %w", queryPath, err)
	}
	query, qerr := ts.NewQuery(typescript, string(data))
	if qerr != nil {
		return fmt.Errorf("failed to parse query %s: %w", name, qerr)
	}
	q.byName[name] = query
	return nil
}

// Close releases the compiled queries. Safe to call more than once.
func (q *queries) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	byName := q.byName
	q.byName = nil
	q.mu.Unlock()

	for _, query := range byName {
		query.Close()
	}
}

func (q *queries) get(name string) (*ts.Query, error) {
	query, ok := q.byName[name]
	if !ok {
		return nil, fmt.Errorf("query not found: typescript/%s", name)
	}
	return query, nil
}

var (
	globalQueries     *queries
	globalQueriesOnce sync.Once
	globalQueriesErr  error
)

func getQueries() (*queries, error) {
	globalQueriesOnce.Do(func() {
		globalQueries, globalQueriesErr = newQueries("imports", "modules")
	})
	return globalQueries, globalQueriesErr
}
