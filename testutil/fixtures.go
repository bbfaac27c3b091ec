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

// Package testutil loads test fixtures from the repository's testdata/
// directory. Because go test runs in each package's directory, a fixture path
// is looked up relative to the package, its parent, and its grandparent.
package testutil

import (
	"flag"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"testing"

	"bennypowers.dev/rechunk/internal/mapfs"
)

var update = flag.Bool("update", false, "update golden files with actual output")

// locate returns the testdata path of rel, trying the package directory and
// up to two parents. When nothing exists, it returns the deepest candidate
// whose directory exists, for golden files that are about to be written.
func locate(rel string) (string, bool) {
	var fallback string
	for _, up := range []string{".", "..", filepath.Join("..", "..")} {
		p := filepath.Join(up, "testdata", filepath.FromSlash(rel))
		if _, err := os.Stat(p); err == nil {
			return p, true
		}
		if _, err := os.Stat(filepath.Dir(p)); err == nil && fallback == "" {
			fallback = p
		}
	}
	return fallback, false
}

// NewFixtureFS copies a testdata directory into an in-memory filesystem
// mounted at rootPath.
func NewFixtureFS(t *testing.T, fixtureDir string, rootPath string) *mapfs.MapFileSystem {
	t.Helper()

	dir, ok := locate(fixtureDir)
	if !ok {
		t.Fatalf("Could not find fixtures at testdata/%s", fixtureDir)
	}

	mfs := mapfs.New()
	src := os.DirFS(dir)
	err := fs.WalkDir(src, ".", func(name string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		content, err := fs.ReadFile(src, name)
		if err != nil {
			return err
		}
		mfs.AddFile(path.Join(filepath.ToSlash(rootPath), name), string(content), 0644)
		return nil
	})
	if err != nil {
		t.Fatalf("Failed to load fixtures from %s: %v", fixtureDir, err)
	}
	return mfs
}

// LoadFixtureFile reads a single file relative to testdata/.
func LoadFixtureFile(t *testing.T, fixturePath string) []byte {
	t.Helper()

	p, ok := locate(fixturePath)
	if !ok {
		t.Fatalf("Could not find fixture testdata/%s", fixturePath)
	}
	content, err := os.ReadFile(p)
	if err != nil {
		t.Fatalf("Failed to read fixture %s: %v", fixturePath, err)
	}
	return content
}

// Golden returns the expected output stored at goldenPath, relative to
// testdata/. With -update, it first writes actual there and returns it.
func Golden(t *testing.T, goldenPath string, actual []byte) []byte {
	t.Helper()
	if !*update {
		return LoadFixtureFile(t, goldenPath)
	}

	p, _ := locate(goldenPath)
	if p == "" {
		t.Fatalf("No testdata directory for golden file %s", goldenPath)
	}
	if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
		t.Fatalf("Failed to create directory for golden file %s: %v", goldenPath, err)
	}
	if err := os.WriteFile(p, actual, 0644); err != nil {
		t.Fatalf("Failed to write golden file %s: %v", goldenPath, err)
	}
	t.Logf("Updated golden file: %s", p)
	return actual
}
