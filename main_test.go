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

package main

import (
	"bytes"
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"
	"testing"
)

func TestMain(m *testing.M) {
	// Build the binary before running tests
	wd := mustGetwd()
	cmd := exec.Command("go", "build", "-o", "rechunk_test", ".")
	cmd.Dir = wd
	if out, err := cmd.CombinedOutput(); err != nil {
		panic("failed to build test binary: " + err.Error() + "\n" + string(out))
	}
	code := m.Run()
	_ = os.Remove(filepath.Join(wd, "rechunk_test"))
	os.Exit(code)
}

func mustGetwd() string {
	wd, err := os.Getwd()
	if err != nil {
		panic(err)
	}
	return wd
}

func runCLI(t *testing.T, args ...string) (stdout, stderr string, exitCode int) {
	t.Helper()
	binary := filepath.Join(mustGetwd(), "rechunk_test")
	cmd := exec.Command(binary, args...)

	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf

	err := cmd.Run()
	stdout = stdoutBuf.String()
	stderr = stderrBuf.String()

	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		} else {
			t.Fatalf("Failed to run CLI: %v", err)
		}
	}

	return stdout, stderr, exitCode
}

var (
	statsFixture  = filepath.Join("testdata", "cli", "stats.json")
	configFixture = filepath.Join("testdata", "cli", "rechunk.yaml")
)

type chunkJSON struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Modules     []string `json:"modules"`
	Parents     []string `json:"parents"`
	Entrypoints []string `json:"entrypoints"`
}

type statsJSON struct {
	Chunks      []chunkJSON `json:"chunks"`
	Entrypoints []struct {
		Name   string   `json:"name"`
		Chunks []string `json:"chunks"`
	} `json:"entrypoints"`
}

func parseStats(t *testing.T, data string) statsJSON {
	t.Helper()
	var stats statsJSON
	if err := json.Unmarshal([]byte(data), &stats); err != nil {
		t.Fatalf("Failed to parse JSON output: %v\nstdout: %s", err, data)
	}
	return stats
}

func findChunk(stats statsJSON, name string) *chunkJSON {
	for i := range stats.Chunks {
		if stats.Chunks[i].Name == name {
			return &stats.Chunks[i]
		}
	}
	return nil
}

func TestRunJSON(t *testing.T) {
	stdout, stderr, code := runCLI(t, "run", statsFixture, "-c", configFixture)
	if code != 0 {
		t.Fatalf("Expected exit code 0, got %d\nstderr: %s", code, stderr)
	}

	stats := parseStats(t, stdout)
	vendor := findChunk(stats, "vendor")
	if vendor == nil {
		t.Fatalf("Expected a vendor chunk, got %+v", stats.Chunks)
	}
	if !slices.Equal(vendor.Modules, []string{"node_modules/lit/index.js"}) {
		t.Errorf("Expected vendor to hold lit, got %v", vendor.Modules)
	}
	if !slices.Equal(vendor.Parents, []string{"runtime"}) {
		t.Errorf("Expected vendor parents [runtime], got %v", vendor.Parents)
	}
	if !slices.Equal(vendor.Entrypoints, []string{"app", "vendor"}) {
		t.Errorf("Expected vendor entrypoints [app vendor], got %v", vendor.Entrypoints)
	}
	if app := findChunk(stats, "app"); app == nil || slices.Contains(app.Modules, "node_modules/lit/index.js") {
		t.Errorf("Expected lit to leave the app chunk, got %+v", app)
	}
}

func TestRunDiff(t *testing.T) {
	stdout, stderr, code := runCLI(t, "run", statsFixture, "-c", configFixture, "--format", "diff")
	if code != 0 {
		t.Fatalf("Expected exit code 0, got %d\nstderr: %s", code, stderr)
	}
	for _, want := range []string{"--- before", "+++ after", "+chunk vendor", "+entrypoint app: runtime app vendor"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("Expected diff to contain %q, got:\n%s", want, stdout)
		}
	}
}

func TestRunTable(t *testing.T) {
	stdout, stderr, code := runCLI(t, "run", statsFixture, "-c", configFixture, "--format", "table")
	if code != 0 {
		t.Fatalf("Expected exit code 0, got %d\nstderr: %s", code, stderr)
	}
	if !strings.Contains(stdout, "CHUNK") || !strings.Contains(stdout, "vendor") {
		t.Errorf("Expected a chunk table, got:\n%s", stdout)
	}
}

func TestRunHTML(t *testing.T) {
	stdout, stderr, code := runCLI(t, "run", statsFixture, "-c", configFixture,
		"--format", "html", "--entry", "app", "--template", "/js/{chunk}.js")
	if code != 0 {
		t.Fatalf("Expected exit code 0, got %d\nstderr: %s", code, stderr)
	}
	want := `<script src="/js/runtime.js" defer=""></script>
<script src="/js/app.js" defer=""></script>
<script src="/js/vendor.js" defer=""></script>
`
	if stdout != want {
		t.Errorf("Expected:\n%s\nGot:\n%s", want, stdout)
	}
}

func TestRunHTMLRequiresEntry(t *testing.T) {
	_, stderr, code := runCLI(t, "run", statsFixture, "-c", configFixture, "--format", "html")
	if code == 0 {
		t.Fatal("Expected non-zero exit code")
	}
	if !strings.Contains(stderr, "--entry is required") {
		t.Errorf("Expected entry error, got: %s", stderr)
	}
}

func TestRunInvalidFormat(t *testing.T) {
	_, stderr, code := runCLI(t, "run", statsFixture, "-c", configFixture, "--format", "yaml")
	if code == 0 {
		t.Fatal("Expected non-zero exit code")
	}
	if !strings.Contains(stderr, "invalid format") {
		t.Errorf("Expected format error, got: %s", stderr)
	}
}

func TestRunDirectory(t *testing.T) {
	dir := filepath.Join("testdata", "scan", "esbuild-out")

	stdout, stderr, code := runCLI(t, "run", dir, "-c", configFixture)
	if code != 0 {
		t.Fatalf("Expected exit code 0, got %d\nstderr: %s", code, stderr)
	}

	vendor := findChunk(parseStats(t, stdout), "vendor")
	if vendor == nil || !slices.Equal(vendor.Modules, []string{"node_modules/chart.js/dist/chart.js"}) {
		t.Errorf("Expected vendor to hold chart.js, got %+v", vendor)
	}
}

func TestRunOutputFile(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "rechunked.json")

	stdout, stderr, code := runCLI(t, "run", statsFixture, "-c", configFixture, "--output", tmpFile)
	if code != 0 {
		t.Fatalf("Expected exit code 0, got %d\nstderr: %s", code, stderr)
	}
	if stdout != "" {
		t.Errorf("Expected no stdout when writing to file, got: %s", stdout)
	}

	content, err := os.ReadFile(tmpFile)
	if err != nil {
		t.Fatalf("Failed to read output file: %v", err)
	}
	if findChunk(parseStats(t, string(content)), "vendor") == nil {
		t.Error("Expected the output file to contain the vendor chunk")
	}
}

func TestRunLogging(t *testing.T) {
	_, stderr, code := runCLI(t, "run", statsFixture, "-c", configFixture, "--log-level", "info")
	if code != 0 {
		t.Fatalf("Expected exit code 0, got %d\nstderr: %s", code, stderr)
	}
	if !strings.Contains(stderr, "created chunk") {
		t.Errorf("Expected a created chunk log line, got: %s", stderr)
	}
}

func TestRunInvalidConfig(t *testing.T) {
	badConfig := filepath.Join("testdata", "config", "invalid-bucket", "rechunk.yml")

	_, stderr, code := runCLI(t, "run", statsFixture, "-c", badConfig)
	if code == 0 {
		t.Fatal("Expected non-zero exit code")
	}
	if !strings.Contains(stderr, "invalid rechunk configuration") || !strings.Contains(stderr, `bucket #0 ("vendor")`) {
		t.Errorf("Expected configuration error, got: %s", stderr)
	}
}

func TestRunMissingGraph(t *testing.T) {
	_, stderr, code := runCLI(t, "run", filepath.Join(t.TempDir(), "missing.json"), "-c", configFixture)
	if code == 0 {
		t.Fatal("Expected non-zero exit code")
	}
	if !strings.Contains(stderr, "missing.json") {
		t.Errorf("Expected error naming the graph file, got: %s", stderr)
	}
}

func TestValidate(t *testing.T) {
	stdout, stderr, code := runCLI(t, "validate", "-c", configFixture)
	if code != 0 {
		t.Fatalf("Expected exit code 0, got %d\nstderr: %s", code, stderr)
	}
	if !strings.Contains(stdout, "vendor") || !strings.Contains(stdout, "test: node_modules/") {
		t.Errorf("Expected bucket table, got:\n%s", stdout)
	}
}

func TestValidateJSON(t *testing.T) {
	stdout, stderr, code := runCLI(t, "validate", "-c", configFixture, "--format", "json")
	if code != 0 {
		t.Fatalf("Expected exit code 0, got %d\nstderr: %s", code, stderr)
	}

	var buckets []struct {
		Name    string   `json:"name"`
		Pattern string   `json:"pattern"`
		Only    []string `json:"only"`
		Except  []string `json:"except"`
	}
	if err := json.Unmarshal([]byte(stdout), &buckets); err != nil {
		t.Fatalf("Failed to parse JSON output: %v\nstdout: %s", err, stdout)
	}
	if len(buckets) != 1 || buckets[0].Name != "vendor" {
		t.Fatalf("Expected one vendor bucket, got %+v", buckets)
	}
	if !slices.Equal(buckets[0].Except, []string{"legacy"}) {
		t.Errorf("Expected single except value to become a list, got %v", buckets[0].Except)
	}
	if buckets[0].Only != nil {
		t.Errorf("Expected no allowlist, got %v", buckets[0].Only)
	}
}

func TestValidateUnrecognizedShape(t *testing.T) {
	badConfig := filepath.Join("testdata", "config", "unknown-key", "rechunk.yaml")

	_, stderr, code := runCLI(t, "validate", "-c", badConfig)
	if code == 0 {
		t.Fatal("Expected non-zero exit code")
	}
	if !strings.Contains(stderr, "invalid rechunk configuration") {
		t.Errorf("Expected configuration error, got: %s", stderr)
	}
}

func TestInject(t *testing.T) {
	siteDir := t.TempDir()
	for _, name := range []string{"app.html", "admin.html"} {
		content, err := os.ReadFile(filepath.Join("testdata", "inject", "site", name))
		if err != nil {
			t.Fatalf("Failed to read fixture: %v", err)
		}
		if err := os.WriteFile(filepath.Join(siteDir, name), content, 0644); err != nil {
			t.Fatalf("Failed to write fixture: %v", err)
		}
	}

	stdout, stderr, code := runCLI(t, "inject", statsFixture, "-c", configFixture,
		"--glob", filepath.Join(siteDir, "*.html"), "--template", "/js/{chunk}.js")
	if code != 0 {
		t.Fatalf("Expected exit code 0, got %d\nstderr: %s", code, stderr)
	}
	if !strings.Contains(stdout, "Injected: 2 files modified (1 updated, 1 new)") {
		t.Errorf("Expected summary line, got: %s", stdout)
	}

	for _, name := range []string{"app.html", "admin.html"} {
		got, err := os.ReadFile(filepath.Join(siteDir, name))
		if err != nil {
			t.Fatalf("Failed to read %s: %v", name, err)
		}
		want, err := os.ReadFile(filepath.Join("testdata", "inject", "expected", name))
		if err != nil {
			t.Fatalf("Failed to read expected %s: %v", name, err)
		}
		if string(got) != string(want) {
			t.Errorf("%s mismatch.\nExpected:\n%s\nGot:\n%s", name, want, got)
		}
	}
}

func TestInjectRequiresGlob(t *testing.T) {
	_, stderr, code := runCLI(t, "inject", statsFixture, "-c", configFixture)
	if code == 0 {
		t.Fatal("Expected non-zero exit code")
	}
	if !strings.Contains(stderr, "--glob is required") {
		t.Errorf("Expected glob error, got: %s", stderr)
	}
}

func TestScanMetafile(t *testing.T) {
	dir := filepath.Join("testdata", "scan", "esbuild-out")

	stdout, stderr, code := runCLI(t, "scan", dir, "--format", "metafile")
	if code != 0 {
		t.Fatalf("Expected exit code 0, got %d\nstderr: %s", code, stderr)
	}

	var meta struct {
		Outputs map[string]struct {
			EntryPoint string `json:"entryPoint"`
		} `json:"outputs"`
	}
	if err := json.Unmarshal([]byte(stdout), &meta); err != nil {
		t.Fatalf("Failed to parse metafile: %v\nstdout: %s", err, stdout)
	}
	if len(meta.Outputs) != 4 {
		t.Errorf("Expected 4 outputs, got %d", len(meta.Outputs))
	}
	if meta.Outputs["admin.js"].EntryPoint != "admin.js" {
		t.Errorf("Expected admin.js to be an entry, got %+v", meta.Outputs["admin.js"])
	}
}

func TestVersion(t *testing.T) {
	stdout, stderr, code := runCLI(t, "version")
	if code != 0 {
		t.Fatalf("Expected exit code 0, got %d\nstderr: %s", code, stderr)
	}
	if !strings.HasPrefix(stdout, "rechunk ") {
		t.Errorf("Expected version line, got: %s", stdout)
	}
}

func TestVersionJSON(t *testing.T) {
	stdout, stderr, code := runCLI(t, "version", "--format", "json")
	if code != 0 {
		t.Fatalf("Expected exit code 0, got %d\nstderr: %s", code, stderr)
	}
	var info map[string]string
	if err := json.Unmarshal([]byte(stdout), &info); err != nil {
		t.Fatalf("Failed to parse JSON output: %v\nstdout: %s", err, stdout)
	}
	if info["version"] == "" {
		t.Error("Expected a version field")
	}
}

func TestVersionShort(t *testing.T) {
	stdout, stderr, code := runCLI(t, "version", "--short")
	if code != 0 {
		t.Fatalf("Expected exit code 0, got %d\nstderr: %s", code, stderr)
	}
	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	if len(lines) != 1 || strings.HasPrefix(lines[0], "rechunk") || lines[0] == "" {
		t.Errorf("Expected a bare version, got: %q", stdout)
	}
}
