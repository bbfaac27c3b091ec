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

// Package mapfs is an in-memory fs.FileSystem for tests, backed by
// fstest.MapFS. Paths are slash paths; a leading slash is optional, so
// "/test/a.js" and "test/a.js" name the same file. Directories implied by a
// file path exist without being created.
package mapfs

import (
	"errors"
	"io/fs"
	"path"
	"strings"
	"sync"
	"testing/fstest"
	"time"

	rfs "bennypowers.dev/rechunk/fs"
)

// modTime is the fixed modification time of every entry.
var modTime = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

var errNotDir = errors.New("not a directory")

// MapFileSystem is safe for concurrent use.
type MapFileSystem struct {
	mu    sync.RWMutex
	files fstest.MapFS
}

var _ rfs.FileSystem = (*MapFileSystem)(nil)

// New returns an empty filesystem.
func New() *MapFileSystem {
	return &MapFileSystem{files: make(fstest.MapFS)}
}

// AddFile creates or replaces a file.
func (mfs *MapFileSystem) AddFile(name, content string, mode fs.FileMode) {
	mfs.mu.Lock()
	defer mfs.mu.Unlock()
	mfs.put(key(name), []byte(content), mode)
}

// Files returns a snapshot of every regular file, keyed by its slash path
// with the leading slash.
func (mfs *MapFileSystem) Files() map[string]string {
	mfs.mu.RLock()
	defer mfs.mu.RUnlock()
	out := make(map[string]string, len(mfs.files))
	for k, f := range mfs.files {
		if !f.Mode.IsDir() {
			out["/"+k] = string(f.Data)
		}
	}
	return out
}

func (mfs *MapFileSystem) Open(name string) (fs.File, error) {
	mfs.mu.RLock()
	defer mfs.mu.RUnlock()
	return mfs.files.Open(key(name))
}

func (mfs *MapFileSystem) ReadFile(name string) ([]byte, error) {
	mfs.mu.RLock()
	defer mfs.mu.RUnlock()
	return fs.ReadFile(mfs.files, key(name))
}

// WriteFile copies data. It fails when a parent path is a file.
func (mfs *MapFileSystem) WriteFile(name string, data []byte, perm fs.FileMode) error {
	mfs.mu.Lock()
	defer mfs.mu.Unlock()
	k := key(name)
	if err := mfs.checkParents(k); err != nil {
		return &fs.PathError{Op: "open", Path: name, Err: err}
	}
	mfs.put(k, append([]byte(nil), data...), perm)
	return nil
}

// MkdirAll records an explicit directory so that an empty one can be listed.
func (mfs *MapFileSystem) MkdirAll(name string, perm fs.FileMode) error {
	mfs.mu.Lock()
	defer mfs.mu.Unlock()
	k := key(name)
	if k == "." {
		return nil
	}
	if f, ok := mfs.files[k]; ok && !f.Mode.IsDir() {
		return &fs.PathError{Op: "mkdir", Path: name, Err: errNotDir}
	}
	if err := mfs.checkParents(k); err != nil {
		return &fs.PathError{Op: "mkdir", Path: name, Err: err}
	}
	mfs.put(k, nil, fs.ModeDir|perm.Perm())
	return nil
}

func (mfs *MapFileSystem) ReadDir(name string) ([]fs.DirEntry, error) {
	mfs.mu.RLock()
	defer mfs.mu.RUnlock()
	return fs.ReadDir(mfs.files, key(name))
}

func (mfs *MapFileSystem) Stat(name string) (fs.FileInfo, error) {
	mfs.mu.RLock()
	defer mfs.mu.RUnlock()
	return fs.Stat(mfs.files, key(name))
}

func (mfs *MapFileSystem) Exists(name string) bool {
	_, err := mfs.Stat(name)
	return err == nil
}

func (mfs *MapFileSystem) put(k string, data []byte, mode fs.FileMode) {
	mfs.files[k] = &fstest.MapFile{Data: data, Mode: mode, ModTime: modTime}
}

// checkParents fails when any ancestor of k is a regular file.
func (mfs *MapFileSystem) checkParents(k string) error {
	for dir := path.Dir(k); dir != "."; dir = path.Dir(dir) {
		if f, ok := mfs.files[dir]; ok && !f.Mode.IsDir() {
			return errNotDir
		}
	}
	return nil
}

// key maps a path to its fstest.MapFS name. The root is ".".
func key(name string) string {
	k := strings.TrimPrefix(path.Clean("/"+name), "/")
	if k == "" {
		return "."
	}
	return k
}
