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

package mapfs

import (
	"errors"
	"io/fs"
	"testing"
)

func TestMapFileSystem_ReadWrite(t *testing.T) {
	mfs := New()
	mfs.AddFile("/project/rechunk.yaml", "buckets: []", 0644)

	data, err := mfs.ReadFile("project/rechunk.yaml")
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(data) != "buckets: []" {
		t.Errorf("Expected file content, got %q", data)
	}

	out := []byte("{}")
	if err := mfs.WriteFile("/project/out.json", out, 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	out[0] = 'x'
	data, _ = mfs.ReadFile("/project/out.json")
	if string(data) != "{}" {
		t.Errorf("Expected WriteFile to copy data, got %q", data)
	}

	if _, err := mfs.ReadFile("/project/missing"); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("Expected ErrNotExist, got %v", err)
	}
}

func TestMapFileSystem_Dirs(t *testing.T) {
	mfs := New()
	mfs.AddFile("/dist/app.js", "", 0644)
	mfs.AddFile("/dist/chunks/a.js", "", 0644)
	if err := mfs.MkdirAll("/dist/empty", 0755); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}

	entries, err := mfs.ReadDir("/dist")
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	want := []string{"app.js", "chunks", "empty"}
	if len(names) != len(want) {
		t.Fatalf("Expected %v, got %v", want, names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("Entry %d: expected %q, got %q", i, want[i], names[i])
		}
	}

	info, err := mfs.Stat("/dist/chunks")
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	if !info.IsDir() {
		t.Error("Expected an implied directory")
	}
	if root, err := mfs.Stat("/"); err != nil || !root.IsDir() {
		t.Errorf("Expected the root to be a directory, got %v, %v", root, err)
	}

	if !mfs.Exists("/dist") || !mfs.Exists("/dist/empty") || mfs.Exists("/src") {
		t.Error("Exists reported the wrong result")
	}

	if err := mfs.WriteFile("/dist/app.js/nested", nil, 0644); err == nil {
		t.Error("Expected writing below a file to fail")
	}
}

func TestMapFileSystem_WriteUnderFile(t *testing.T) {
	mfs := New()
	mfs.AddFile("/out/graph.json", "{}", 0644)

	if err := mfs.WriteFile("/out/graph.json/nested.json", nil, 0644); err == nil {
		t.Error("Expected WriteFile below a file to fail")
	}
	if err := mfs.MkdirAll("/out/graph.json", 0755); err == nil {
		t.Error("Expected MkdirAll over a file to fail")
	}
}

func TestMapFileSystem_Files(t *testing.T) {
	mfs := New()
	mfs.AddFile("a.js", "a", 0644)
	if err := mfs.MkdirAll("/dist", 0755); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}
	if err := mfs.WriteFile("/dist/b.js", []byte("b"), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	files := mfs.Files()
	if len(files) != 2 || files["/a.js"] != "a" || files["/dist/b.js"] != "b" {
		t.Errorf("Expected two files, got %v", files)
	}
}
