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

// Package inject provides script tag injection for HTML files.
// It writes the chunks of an entrypoint, in load order, between
// <!-- rechunk --> and <!-- /rechunk --> markers, updating the marked region
// when present or inserting a new one before </head>.
package inject

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"golang.org/x/net/html"

	"bennypowers.dev/rechunk/chunkgraph"
	"bennypowers.dev/rechunk/fs"
	"bennypowers.dev/rechunk/report"
)

const (
	startMarker = "rechunk"
	endMarker   = "/rechunk"
)

// Options configures the inject command.
type Options struct {
	// Entry names the entrypoint to inject. When empty, each file uses the
	// entrypoint named after its base name, e.g. admin.html uses "admin".
	Entry string
	// Template is the URL template for script src values.
	Template string
	// Parallel is the number of parallel workers for batch mode.
	Parallel int
	// DryRun prevents writing files when true.
	DryRun bool
}

// Result holds the result of injecting into a single file.
type Result struct {
	File     string `json:"file"`
	Entry    string `json:"entry,omitempty"`
	Modified bool   `json:"modified"`
	Inserted bool   `json:"inserted,omitempty"` // true if a new marked region, false if replaced
	Error    string `json:"error,omitempty"`
}

// Stats tallies the results of a batch.
type Stats struct {
	Total    int   `json:"total"`
	Updated  int   `json:"updated"`
	Inserted int   `json:"inserted"`
	Skipped  int   `json:"skipped"`
	Errors   int   `json:"errors"`
	Duration int64 `json:"duration_ms"`
}

// Add counts one result.
func (s *Stats) Add(r Result) {
	s.Total++
	switch {
	case r.Error != "":
		s.Errors++
	case r.Inserted:
		s.Inserted++
	case r.Modified:
		s.Updated++
	default:
		s.Skipped++
	}
}

// Modified returns the number of files changed, or that would change.
func (s *Stats) Modified() int {
	return s.Updated + s.Inserted
}

// InjectBatch injects script tags into multiple HTML files in parallel.
// The graph is only read.
func InjectBatch(fsys fs.FileSystem, files []string, g *chunkgraph.Graph, opts Options) <-chan Result {
	results := make(chan Result, len(files))

	go func() {
		defer close(results)

		parallel := opts.Parallel
		if parallel <= 0 {
			parallel = runtime.NumCPU()
		}

		jobs := make(chan string, len(files))

		var wg sync.WaitGroup
		for range parallel {
			wg.Go(func() {
				for htmlFile := range jobs {
					results <- injectFile(fsys, g, htmlFile, opts)
				}
			})
		}

		for _, file := range files {
			jobs <- file
		}
		close(jobs)

		wg.Wait()
	}()

	return results
}

// injectFile processes a single HTML file.
func injectFile(fsys fs.FileSystem, g *chunkgraph.Graph, htmlFile string, opts Options) Result {
	result := Result{File: htmlFile, Entry: opts.Entry}
	if result.Entry == "" {
		base := filepath.Base(htmlFile)
		result.Entry = strings.TrimSuffix(base, filepath.Ext(base))
	}

	content, err := fsys.ReadFile(htmlFile)
	if err != nil {
		result.Error = err.Error()
		return result
	}

	newContent, inserted, err := Content(content, g, result.Entry, opts.Template)
	if err != nil {
		result.Error = err.Error()
		return result
	}

	if bytes.Equal(newContent, content) {
		return result
	}

	result.Modified = true
	result.Inserted = inserted

	if !opts.DryRun {
		if err := fsys.WriteFile(htmlFile, newContent, 0644); err != nil {
			result.Error = err.Error()
			return result
		}
	}

	return result
}

// Content returns content with the entrypoint's script tags injected, and
// whether a new marked region was inserted.
func Content(content []byte, g *chunkgraph.Graph, entry, template string) ([]byte, bool, error) {
	loc, err := FindRegion(content)
	if err != nil {
		return nil, false, err
	}

	if loc.Found {
		var tags strings.Builder
		if err := report.HTML(&tags, g, entry, template, loc.Indent); err != nil {
			return nil, false, err
		}
		var newContent []byte
		newContent = append(newContent, content[:loc.ContentStart]...)
		newContent = append(newContent, '\n')
		newContent = append(newContent, tags.String()...)
		newContent = append(newContent, loc.Indent...)
		newContent = append(newContent, content[loc.ContentEnd:]...)
		return newContent, false, nil
	}

	if loc.HeadEnd < 0 {
		return nil, false, fmt.Errorf("could not find insertion point (no </head> tag)")
	}

	inner := loc.Indent + "  "
	var tags strings.Builder
	if err := report.HTML(&tags, g, entry, template, inner); err != nil {
		return nil, false, err
	}

	var block strings.Builder
	block.WriteString("  <!-- " + startMarker + " -->\n")
	block.WriteString(tags.String())
	block.WriteString(inner + "<!-- " + endMarker + " -->\n")
	block.WriteString(loc.Indent)

	var newContent []byte
	newContent = append(newContent, content[:loc.HeadEnd]...)
	newContent = append(newContent, block.String()...)
	newContent = append(newContent, content[loc.HeadEnd:]...)
	return newContent, true, nil
}

// Region locates the marked script region, or the </head> tag, in an HTML
// document. Offsets are byte offsets into the document.
type Region struct {
	Found        bool
	ContentStart int    // just after the start marker
	ContentEnd   int    // at the end marker
	HeadEnd      int    // at </head>, or -1
	Indent       string // indentation of the start marker line, or of </head>
}

// FindRegion tokenizes content and locates the injection region.
func FindRegion(content []byte) (Region, error) {
	loc := Region{ContentStart: -1, ContentEnd: -1, HeadEnd: -1}
	z := html.NewTokenizer(bytes.NewReader(content))
	offset := 0

	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			if errors.Is(z.Err(), io.EOF) {
				break
			}
			return loc, fmt.Errorf("tokenizing HTML: %w", z.Err())
		}
		start := offset
		offset += len(z.Raw())

		switch tt {
		case html.CommentToken:
			switch strings.TrimSpace(string(z.Text())) {
			case startMarker:
				if loc.ContentStart < 0 {
					loc.ContentStart = offset
					loc.Indent = indentAt(content, start)
				}
			case endMarker:
				if loc.ContentStart >= 0 && loc.ContentEnd < 0 {
					loc.ContentEnd = start
				}
			}
		case html.EndTagToken:
			if name, _ := z.TagName(); string(name) == "head" && loc.HeadEnd < 0 {
				loc.HeadEnd = start
				if loc.ContentStart < 0 {
					loc.Indent = indentAt(content, start)
				}
			}
		}
	}

	if loc.ContentStart >= 0 && loc.ContentEnd < 0 {
		return loc, fmt.Errorf("unterminated <!-- %s --> region", startMarker)
	}
	loc.Found = loc.ContentStart >= 0
	return loc, nil
}

// indentAt returns the whitespace between the start of the line holding pos
// and pos.
func indentAt(content []byte, pos int) string {
	lineStart := bytes.LastIndexByte(content[:pos], '\n') + 1
	prefix := content[lineStart:pos]
	if len(bytes.TrimLeft(prefix, " \t")) != 0 {
		return ""
	}
	return string(prefix)
}
