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

package fs_test

import (
	iofs "io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bennypowers.dev/rechunk/fs"
	"bennypowers.dev/rechunk/internal/mapfs"
)

func newTree() *mapfs.MapFileSystem {
	mfs := mapfs.New()
	mfs.AddFile("/dist/app.js", "", 0644)
	mfs.AddFile("/dist/app.js.map", "", 0644)
	mfs.AddFile("/dist/chunks/chunk-A.mjs", "", 0644)
	mfs.AddFile("/dist/node_modules/lit/index.js", "", 0644)
	mfs.AddFile("/dist/rechunk.yml", "", 0644)
	return mfs
}

func TestGlob(t *testing.T) {
	files, err := fs.Glob(newTree(), "/dist", "**/*.{js,mjs}", "node_modules")
	require.NoError(t, err)
	assert.Equal(t, []string{"app.js", "chunks/chunk-A.mjs"}, files)
}

func TestGlob_NoSkip(t *testing.T) {
	files, err := fs.Glob(newTree(), "/dist", "**/index.js")
	require.NoError(t, err)
	assert.Equal(t, []string{"node_modules/lit/index.js"}, files)
}

func TestGlob_InvalidPattern(t *testing.T) {
	_, err := fs.Glob(newTree(), "/dist", "[")
	assert.Error(t, err)
}

func TestGlob_MissingRoot(t *testing.T) {
	_, err := fs.Glob(newTree(), "/nope", "*.js")
	assert.Error(t, err)
}

func TestFindFile(t *testing.T) {
	p, ok := fs.FindFile(newTree(), "/dist", "rechunk.yaml", "rechunk.yml")
	assert.True(t, ok)
	assert.Equal(t, "/dist/rechunk.yml", p)

	_, ok = fs.FindFile(newTree(), "/dist", "rechunk.toml")
	assert.False(t, ok)
}

func TestIsDir(t *testing.T) {
	mfs := newTree()
	assert.True(t, fs.IsDir(mfs, "/dist/chunks"))
	assert.False(t, fs.IsDir(mfs, "/dist/app.js"))
	assert.False(t, fs.IsDir(mfs, "/missing"))
}

func TestSub(t *testing.T) {
	sub := fs.Sub(newTree(), "/dist")

	data, err := iofs.ReadFile(sub, "chunks/chunk-A.mjs")
	require.NoError(t, err)
	assert.Empty(t, data)

	entries, err := iofs.ReadDir(sub, ".")
	require.NoError(t, err)
	assert.Len(t, entries, 5)

	_, err = sub.Open("../etc/passwd")
	assert.ErrorIs(t, err, iofs.ErrInvalid)
}
