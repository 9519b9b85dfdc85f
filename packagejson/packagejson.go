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
// Package packagejson provides parsing and entry resolution for package.json files.
package packagejson

import (
	"errors"
	"fmt"
	"strings"

	"bennypowers.dev/lega/fs"
	"bennypowers.dev/lega/jsondoc"
)

// ErrNotExported is returned when the exports field does not resolve
// to an entry file.
var ErrNotExported = errors.New("not exported by package.json")

// workspaceProtocol prefixes dependency versions that link to another
// package in the same workspace (e.g. "workspace:*", "workspace:^").
const workspaceProtocol = "workspace:"

// WorkspaceMarker is the version written for workspace-linked
// dependencies.
const WorkspaceMarker = "workspace:*"

// IsWorkspaceVersion reports whether a dependency version string uses
// the workspace link protocol.
func IsWorkspaceVersion(version string) bool {
	return strings.HasPrefix(version, workspaceProtocol)
}

// EntryConditions is the condition priority used to pick an entry
// file from a conditional exports field. "." covers the root subpath
// form ({".": ...}); the rest are standard conditions.
var EntryConditions = []string{"types", "default", ".", "import", "require"}

// PackageJSON is a typed view over a package manifest. Known fields
// are decoded for convenience; the full document (including fields
// this tool does not manage) is retained so rewrites preserve it.
type PackageJSON struct {
	Name    string
	Version string
	Main    string
	Module  string
	Types   string
	Typings string
	Private bool

	doc *jsondoc.Value
}

// Parse parses package.json data.
func Parse(data []byte) (*PackageJSON, error) {
	doc, err := jsondoc.Parse(data)
	if err != nil {
		return nil, err
	}
	if doc.Kind() != jsondoc.Object {
		return nil, fmt.Errorf("package.json must be a JSON object, got %s", doc.Kind())
	}
	return &PackageJSON{
		Name:    doc.Get("name").Str(),
		Version: doc.Get("version").Str(),
		Main:    doc.Get("main").Str(),
		Module:  doc.Get("module").Str(),
		Types:   doc.Get("types").Str(),
		Typings: doc.Get("typings").Str(),
		Private: doc.Get("private").Bool(),
		doc:     doc,
	}, nil
}

// ParseFile parses a package.json file.
func ParseFile(fsys fs.FileSystem, path string) (*PackageJSON, error) {
	data, err := fsys.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Doc returns the underlying document. Callers that rewrite the
// manifest clone it first; the view itself is treated as read-only.
func (pkg *PackageJSON) Doc() *jsondoc.Value {
	return pkg.doc
}

// Dependencies returns the dependencies field as a map. Non-string
// values are skipped.
func (pkg *PackageJSON) Dependencies() map[string]string {
	deps := pkg.doc.Get("dependencies")
	if deps.Kind() != jsondoc.Object {
		return nil
	}
	out := make(map[string]string, deps.Len())
	for _, key := range deps.Keys() {
		if val := deps.Get(key); val.Kind() == jsondoc.String {
			out[key] = val.Str()
		}
	}
	return out
}

// WorkspacePatterns returns the workspace glob patterns from the
// workspaces field. Handles both the array format ["packages/*"] and
// the object format {"packages": ["libs/*"]} used by yarn classic.
func (pkg *PackageJSON) WorkspacePatterns() []string {
	workspaces := pkg.doc.Get("workspaces")
	switch workspaces.Kind() {
	case jsondoc.Array:
		return stringItems(workspaces)
	case jsondoc.Object:
		return stringItems(workspaces.Get("packages"))
	}
	return nil
}

// HasWorkspaces returns true if the package has workspace patterns defined.
func (pkg *PackageJSON) HasWorkspaces() bool {
	return len(pkg.WorkspacePatterns()) > 0
}

// ExportTarget resolves the exports field to a single entry path,
// trimming any leading "./". A string-valued exports field resolves
// directly; an object is searched in EntryConditions order with one
// level of nested condition objects supported. Pass nil to use
// EntryConditions.
func (pkg *PackageJSON) ExportTarget(conditions []string) (string, error) {
	if conditions == nil {
		conditions = EntryConditions
	}
	exports := pkg.doc.Get("exports")
	switch exports.Kind() {
	case jsondoc.String:
		return trimDotSlash(exports.Str()), nil
	case jsondoc.Object:
		return resolveConditions(exports, conditions, 0)
	}
	return "", ErrNotExported
}

// resolveConditions resolves a conditional export object to a path.
// Tries each condition in order, descending at most one level into
// nested condition objects.
func resolveConditions(conditions *jsondoc.Value, order []string, depth int) (string, error) {
	for _, cond := range order {
		value := conditions.Get(cond)
		if value == nil {
			continue
		}
		switch value.Kind() {
		case jsondoc.String:
			return trimDotSlash(value.Str()), nil
		case jsondoc.Object:
			if depth == 0 {
				if result, err := resolveConditions(value, order, depth+1); err == nil {
					return result, nil
				}
			}
		}
	}
	return "", ErrNotExported
}

func stringItems(v *jsondoc.Value) []string {
	items := v.Items()
	if len(items) == 0 {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item.Kind() == jsondoc.String {
			out = append(out, item.Str())
		}
	}
	return out
}

// trimDotSlash removes a leading "./" from a path.
func trimDotSlash(path string) string {
	return strings.TrimPrefix(path, "./")
}
