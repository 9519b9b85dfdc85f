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
package resolve

import (
	"path"
	"strings"
	"sync"

	"bennypowers.dev/lega/fs"
	"bennypowers.dev/lega/workspace"
)

// EntryPoint describes the file importers of a package should be
// pointed at. Path is relative to the package root. Exists is false
// when no candidate was found on disk and the conventional source
// entry was synthesized instead.
type EntryPoint struct {
	Path          string
	Exists        bool
	IsDeclaration bool
}

// conventionalEntries are checked before any manifest field.
var conventionalEntries = []string{"src/index.ts", "src/index.tsx"}

// fallbackEntries are checked after every manifest field has failed.
var fallbackEntries = []string{
	"index.ts",
	"index.tsx",
	"index.js",
	"lib/index.ts",
	"dist/index.js",
	"dist/index.d.ts",
}

// EntryPointResolver resolves package entry points, memoizing one
// result per package. Resolution is read-only, so concurrent use is
// safe; the once-per-entry cache keeps filesystem probing bounded
// however many edges target the same package.
type EntryPointResolver struct {
	fsys  fs.FileSystem
	cache sync.Map // package name -> *entryPointEntry
}

type entryPointEntry struct {
	once  sync.Once
	entry EntryPoint
}

// NewEntryPointResolver creates a resolver over the given filesystem.
func NewEntryPointResolver(fsys fs.FileSystem) *EntryPointResolver {
	return &EntryPointResolver{fsys: fsys}
}

// Resolve returns the entry point for a package, computing it at most
// once per package.
func (r *EntryPointResolver) Resolve(project *workspace.Project) EntryPoint {
	value, _ := r.cache.LoadOrStore(project.Name, &entryPointEntry{})
	entry := value.(*entryPointEntry)
	entry.once.Do(func() {
		entry.entry = r.resolve(project)
	})
	return entry.entry
}

// resolve walks the candidate cascade, first existing file wins:
// conventional source entries, manifest types then typings, the
// exports field, module then main, then the fallback list. When
// nothing exists the conventional source entry is returned with
// Exists false so callers still have a path to reference.
func (r *EntryPointResolver) resolve(project *workspace.Project) EntryPoint {
	for _, candidate := range conventionalEntries {
		if r.exists(project, candidate) {
			return newEntryPoint(candidate, true)
		}
	}

	if m := project.Manifest; m != nil {
		for _, field := range []string{m.Types, m.Typings} {
			if candidate := trimDotSlash(field); candidate != "" && r.exists(project, candidate) {
				return newEntryPoint(candidate, true)
			}
		}
		if target, err := m.ExportTarget(nil); err == nil {
			if candidate := trimDotSlash(target); candidate != "" && r.exists(project, candidate) {
				return newEntryPoint(candidate, true)
			}
		}
		for _, field := range []string{m.Module, m.Main} {
			if candidate := trimDotSlash(field); candidate != "" && r.exists(project, candidate) {
				return newEntryPoint(candidate, true)
			}
		}
	}

	for _, candidate := range fallbackEntries {
		if r.exists(project, candidate) {
			return newEntryPoint(candidate, true)
		}
	}

	return newEntryPoint(conventionalEntries[0], false)
}

func (r *EntryPointResolver) exists(project *workspace.Project, candidate string) bool {
	return r.fsys.Exists(path.Join(project.Root, candidate))
}

func newEntryPoint(p string, exists bool) EntryPoint {
	return EntryPoint{Path: p, Exists: exists, IsDeclaration: isDeclarationFile(p)}
}

// isDeclarationFile reports whether a path names a pure type
// declaration file.
func isDeclarationFile(p string) bool {
	return strings.HasSuffix(p, ".d.ts") ||
		strings.HasSuffix(p, ".d.mts") ||
		strings.HasSuffix(p, ".d.cts")
}

func trimDotSlash(p string) string {
	return strings.TrimPrefix(p, "./")
}
