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

package fs

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// IsDir reports whether name exists and is a directory.
func IsDir(fsys FileSystem, name string) bool {
	info, err := fsys.Stat(name)
	return err == nil && info.IsDir()
}

// FindFile returns the first of names that exists in dir.
func FindFile(fsys FileSystem, dir string, names ...string) (string, bool) {
	for _, name := range names {
		p := filepath.Join(dir, name)
		if fsys.Exists(p) {
			return p, true
		}
	}
	return "", false
}

// Sub returns an io/fs view of the tree below root. Names are slash paths
// relative to root.
func Sub(fsys FileSystem, root string) fs.FS {
	return subFS{fsys: fsys, root: root}
}

type subFS struct {
	fsys FileSystem
	root string
}

func (s subFS) path(op, name string) (string, error) {
	if !fs.ValidPath(name) {
		return "", &fs.PathError{Op: op, Path: name, Err: fs.ErrInvalid}
	}
	return filepath.Join(s.root, filepath.FromSlash(name)), nil
}

func (s subFS) Open(name string) (fs.File, error) {
	p, err := s.path("open", name)
	if err != nil {
		return nil, err
	}
	return s.fsys.Open(p)
}

func (s subFS) ReadDir(name string) ([]fs.DirEntry, error) {
	p, err := s.path("readdir", name)
	if err != nil {
		return nil, err
	}
	return s.fsys.ReadDir(p)
}

func (s subFS) Stat(name string) (fs.FileInfo, error) {
	p, err := s.path("stat", name)
	if err != nil {
		return nil, err
	}
	return s.fsys.Stat(p)
}

// Glob returns the files below root matching a doublestar pattern, as sorted
// slash paths relative to root. Files inside a directory named in skip are
// left out.
func Glob(fsys FileSystem, root, pattern string, skip ...string) ([]string, error) {
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid glob pattern %q", pattern)
	}
	if !IsDir(fsys, root) {
		return nil, fmt.Errorf("listing %s: %w", root, fs.ErrNotExist)
	}

	var files []string
	err := doublestar.GlobWalk(Sub(fsys, root), pattern, func(p string, d fs.DirEntry) error {
		if !skipped(p, skip) {
			files = append(files, p)
		}
		return nil
	}, doublestar.WithFilesOnly(), doublestar.WithFailOnIOErrors())
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", root, err)
	}
	slices.Sort(files)
	return files, nil
}

// skipped reports whether any directory of p is named in skip.
func skipped(p string, skip []string) bool {
	dirs := strings.Split(p, "/")
	for _, dir := range dirs[:len(dirs)-1] {
		if slices.Contains(skip, dir) {
			return true
		}
	}
	return false
}
