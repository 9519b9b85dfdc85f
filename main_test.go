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
	"strings"
	"testing"
)

func TestMain(m *testing.M) {
	// Build the binary before running tests
	wd := mustGetwd()
	cmd := exec.Command("go", "build", "-o", "lega_test", ".")
	cmd.Dir = wd
	if out, err := cmd.CombinedOutput(); err != nil {
		panic("failed to build test binary: " + err.Error() + "\n" + string(out))
	}
	code := m.Run()
	_ = os.Remove(filepath.Join(wd, "lega_test"))
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
	binary := filepath.Join(mustGetwd(), "lega_test")
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

// writeWorkspace lays out a small monorepo where apps/web imports
// @acme/ui but its manifest still lists the removed @acme/old.
func writeWorkspace(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	files := map[string]string{
		"lega.yaml":                "apps:\n  - apps/*\npackages:\n  - packages/*\n",
		"apps/web/package.json":    "{\n  \"name\": \"@acme/web\",\n  \"version\": \"1.0.0\",\n  \"dependencies\": {\n    \"@acme/old\": \"workspace:*\",\n    \"react\": \"^18.2.0\"\n  }\n}\n",
		"apps/web/tsconfig.json":   "{\n  \"compilerOptions\": {\n    \"strict\": true\n  }\n}\n",
		"apps/web/src/main.ts":     "import { Button } from \"@acme/ui\";\n",
		"packages/ui/package.json": "{\n  \"name\": \"@acme/ui\",\n  \"version\": \"1.0.0\"\n}\n",
		"packages/ui/src/index.ts": "export const Button = 1;\n",
	}
	for name, content := range files {
		target := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
			t.Fatalf("MkdirAll failed: %v", err)
		}
		if err := os.WriteFile(target, []byte(content), 0644); err != nil {
			t.Fatalf("WriteFile failed: %v", err)
		}
	}
	return root
}

// writeCyclicWorkspace lays out two packages that import each other.
func writeCyclicWorkspace(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	files := map[string]string{
		"lega.yaml":               "packages:\n  - packages/*\n",
		"packages/a/package.json": "{\n  \"name\": \"@acme/a\"\n}\n",
		"packages/a/src/index.ts": "import \"@acme/b\";\n",
		"packages/b/package.json": "{\n  \"name\": \"@acme/b\"\n}\n",
		"packages/b/src/index.ts": "import \"@acme/a\";\n",
	}
	for name, content := range files {
		target := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
			t.Fatalf("MkdirAll failed: %v", err)
		}
		if err := os.WriteFile(target, []byte(content), 0644); err != nil {
			t.Fatalf("WriteFile failed: %v", err)
		}
	}
	return root
}

func readJSONFile(t *testing.T, path string) map[string]any {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read %s: %v", path, err)
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("Failed to parse %s: %v", path, err)
	}
	return doc
}

func TestSyncWritesManifests(t *testing.T) {
	root := writeWorkspace(t)

	stdout, stderr, code := runCLI(t, "sync", root)
	if code != 0 {
		t.Fatalf("Expected exit code 0, got %d\nstderr: %s", code, stderr)
	}
	if !strings.Contains(stdout, "wrote") {
		t.Errorf("Expected write summary, got: %s", stdout)
	}

	manifest := readJSONFile(t, filepath.Join(root, "apps", "web", "package.json"))
	deps, ok := manifest["dependencies"].(map[string]any)
	if !ok {
		t.Fatalf("Expected dependencies object, got %T", manifest["dependencies"])
	}
	if deps["@acme/ui"] != "workspace:*" {
		t.Errorf("Expected @acme/ui workspace dep, got %v", deps["@acme/ui"])
	}
	if deps["react"] != "^18.2.0" {
		t.Errorf("Expected react version preserved, got %v", deps["react"])
	}
	if _, stale := deps["@acme/old"]; stale {
		t.Error("Expected stale @acme/old dependency removed")
	}

	tsconfig := readJSONFile(t, filepath.Join(root, "apps", "web", "tsconfig.json"))
	refs, ok := tsconfig["references"].([]any)
	if !ok || len(refs) != 1 {
		t.Fatalf("Expected 1 project reference, got %v", tsconfig["references"])
	}
	ref, _ := refs[0].(map[string]any)
	if ref["path"] != "../../packages/ui" {
		t.Errorf("Expected reference to ../../packages/ui, got %v", ref["path"])
	}
}

func TestSyncIdempotent(t *testing.T) {
	root := writeWorkspace(t)

	_, stderr, code := runCLI(t, "sync", root)
	if code != 0 {
		t.Fatalf("First sync failed with %d\nstderr: %s", code, stderr)
	}

	stdout, stderr, code := runCLI(t, "sync", root)
	if code != 0 {
		t.Fatalf("Second sync failed with %d\nstderr: %s", code, stderr)
	}
	if !strings.Contains(stdout, "everything in sync") {
		t.Errorf("Expected no-op summary, got: %s", stdout)
	}
}

func TestSyncDryRun(t *testing.T) {
	root := writeWorkspace(t)
	manifestPath := filepath.Join(root, "apps", "web", "package.json")
	before, err := os.ReadFile(manifestPath)
	if err != nil {
		t.Fatalf("Failed to read manifest: %v", err)
	}

	stdout, stderr, code := runCLI(t, "sync", root, "--dry-run")
	if code != 0 {
		t.Fatalf("Expected exit code 0, got %d\nstderr: %s", code, stderr)
	}
	if !strings.Contains(stdout, "would update") {
		t.Errorf("Expected dry-run summary, got: %s", stdout)
	}
	if !strings.Contains(stdout, "-    \"@acme/old\"") {
		t.Errorf("Expected removal diff line for @acme/old, got: %s", stdout)
	}
	if !strings.Contains(stdout, "+    \"@acme/ui\"") {
		t.Errorf("Expected addition diff line for @acme/ui, got: %s", stdout)
	}

	after, err := os.ReadFile(manifestPath)
	if err != nil {
		t.Fatalf("Failed to re-read manifest: %v", err)
	}
	if !bytes.Equal(before, after) {
		t.Error("Expected manifest untouched in dry-run mode")
	}
}

func TestSyncFailsOnCycles(t *testing.T) {
	root := writeCyclicWorkspace(t)

	_, stderr, code := runCLI(t, "sync", root)
	if code == 0 {
		t.Fatal("Expected non-zero exit code for cyclic graph")
	}
	if !strings.Contains(stderr, "--allow-cycles") {
		t.Errorf("Expected cycle hint in error, got: %s", stderr)
	}

	_, stderr, code = runCLI(t, "sync", root, "--allow-cycles")
	if code != 0 {
		t.Fatalf("Expected --allow-cycles to succeed, got %d\nstderr: %s", code, stderr)
	}
}

func TestCheck(t *testing.T) {
	root := writeWorkspace(t)

	_, stderr, code := runCLI(t, "check", root)
	if code == 0 {
		t.Fatal("Expected non-zero exit code for out-of-sync workspace")
	}
	if !strings.Contains(stderr, "out of sync") {
		t.Errorf("Expected out-of-sync error, got: %s", stderr)
	}

	if _, stderr, code := runCLI(t, "sync", root); code != 0 {
		t.Fatalf("Sync failed with %d\nstderr: %s", code, stderr)
	}

	if stdout, stderr, code := runCLI(t, "check", root); code != 0 {
		t.Fatalf("Expected clean check after sync, got %d\nstdout: %s\nstderr: %s", code, stdout, stderr)
	}
}

func TestGraphJSON(t *testing.T) {
	root := writeWorkspace(t)

	stdout, stderr, code := runCLI(t, "graph", root)
	if code != 0 {
		t.Fatalf("Expected exit code 0, got %d\nstderr: %s", code, stderr)
	}

	var result struct {
		Root     string `json:"root"`
		Projects []struct {
			Name         string `json:"name"`
			Version      string `json:"version"`
			Category     string `json:"category"`
			Dependencies []struct {
				Name       string `json:"name"`
				EntryPoint string `json:"entryPoint"`
				Reason     string `json:"reason"`
			} `json:"dependencies"`
		} `json:"projects"`
	}
	if err := json.Unmarshal([]byte(stdout), &result); err != nil {
		t.Fatalf("Failed to parse JSON output: %v\nstdout: %s", err, stdout)
	}

	if result.Root != root {
		t.Errorf("root = %q, expected %q", result.Root, root)
	}
	if len(result.Projects) != 2 {
		t.Fatalf("Expected 2 projects, got %d", len(result.Projects))
	}
	web := result.Projects[1]
	if web.Name != "@acme/web" || web.Category != "app" {
		t.Fatalf("Expected @acme/web app last, got %+v", web)
	}
	if web.Version != "1.0.0" {
		t.Errorf("version = %q, expected the manifest version", web.Version)
	}
	if len(web.Dependencies) != 1 || web.Dependencies[0].Name != "@acme/ui" {
		t.Fatalf("Expected @acme/ui edge, got %+v", web.Dependencies)
	}
	if web.Dependencies[0].EntryPoint != "src/index.ts" {
		t.Errorf("EntryPoint = %q, expected src/index.ts", web.Dependencies[0].EntryPoint)
	}
}

func TestGraphDOT(t *testing.T) {
	root := writeWorkspace(t)

	stdout, stderr, code := runCLI(t, "graph", root, "--format", "dot")
	if code != 0 {
		t.Fatalf("Expected exit code 0, got %d\nstderr: %s", code, stderr)
	}
	if !strings.HasPrefix(stdout, "digraph workspace {") {
		t.Errorf("Expected DOT output, got: %s", stdout)
	}
	if !strings.Contains(stdout, "\"@acme/web\" -> \"@acme/ui\";") {
		t.Errorf("Expected web -> ui edge in DOT output, got: %s", stdout)
	}
}

func TestGraphInvalidFormat(t *testing.T) {
	root := writeWorkspace(t)

	_, stderr, code := runCLI(t, "graph", root, "--format", "yaml")
	if code == 0 {
		t.Error("Expected non-zero exit code for invalid format")
	}
	if !strings.Contains(stderr, "invalid format") {
		t.Errorf("Expected format error, got: %s", stderr)
	}
}

func TestHelp(t *testing.T) {
	stdout, _, code := runCLI(t, "--help")
	if code != 0 {
		t.Fatalf("Expected exit code 0 for help, got %d", code)
	}

	expectedStrings := []string{
		"lega",
		"sync",
		"check",
		"graph",
		"--verbose",
	}

	for _, s := range expectedStrings {
		if !strings.Contains(stdout, s) {
			t.Errorf("Expected %q in help output", s)
		}
	}
}

func TestSyncHelp(t *testing.T) {
	stdout, _, code := runCLI(t, "sync", "--help")
	if code != 0 {
		t.Fatalf("Expected exit code 0 for help, got %d", code)
	}

	expectedStrings := []string{
		"--dry-run",
		"--allow-cycles",
		"--jobs",
	}

	for _, s := range expectedStrings {
		if !strings.Contains(stdout, s) {
			t.Errorf("Expected %q in sync help output", s)
		}
	}
}

func TestUnknownCommand(t *testing.T) {
	_, stderr, code := runCLI(t, "unknown")
	if code == 0 {
		t.Error("Expected non-zero exit code for unknown command")
	}

	if !strings.Contains(stderr, "unknown command") {
		t.Errorf("Expected 'unknown command' error, got: %s", stderr)
	}
}

func TestVersion(t *testing.T) {
	stdout, _, code := runCLI(t, "version")
	if code != 0 {
		t.Fatalf("Expected exit code 0, got %d", code)
	}
	if !strings.HasPrefix(stdout, "lega ") {
		t.Errorf("Expected version line, got: %s", stdout)
	}
}

func TestVersionJSON(t *testing.T) {
	stdout, _, code := runCLI(t, "version", "-f", "json")
	if code != 0 {
		t.Fatalf("Expected exit code 0, got %d", code)
	}

	var info map[string]string
	if err := json.Unmarshal([]byte(stdout), &info); err != nil {
		t.Fatalf("Failed to parse JSON output: %v\nstdout: %s", err, stdout)
	}
	if info["version"] == "" {
		t.Error("Expected version field in JSON output")
	}
}
