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
// Package tsconfig provides parsing for project reference configs (tsconfig.json).
package tsconfig

import (
	"fmt"
	"strings"

	"bennypowers.dev/lega/jsondoc"
)

// FileName is the conventional reference config file name.
const FileName = "tsconfig.json"

// TSConfig is a read view over a tsconfig.json document. Only the
// path mappings and project references are interpreted; everything
// else rides along in the document untouched.
type TSConfig struct {
	doc *jsondoc.Value
}

// Parse parses tsconfig.json data.
func Parse(data []byte) (*TSConfig, error) {
	doc, err := jsondoc.Parse(data)
	if err != nil {
		return nil, err
	}
	if doc.Kind() != jsondoc.Object {
		return nil, fmt.Errorf("tsconfig.json must be a JSON object, got %s", doc.Kind())
	}
	return &TSConfig{doc: doc}, nil
}

// Doc returns the underlying document.
func (tc *TSConfig) Doc() *jsondoc.Value {
	return tc.doc
}

// Paths returns the compilerOptions.paths object, or nil when absent.
func (tc *TSConfig) Paths() *jsondoc.Value {
	paths := tc.doc.Get("compilerOptions").Get("paths")
	if paths.Kind() != jsondoc.Object {
		return nil
	}
	return paths
}

// PathKeys returns the path mapping keys in document order.
func (tc *TSConfig) PathKeys() []string {
	return tc.Paths().Keys()
}

// References returns the path of each project reference, in document
// order. Entries without a string path are skipped.
func (tc *TSConfig) References() []string {
	refs := tc.doc.Get("references")
	if refs.Kind() != jsondoc.Array {
		return nil
	}
	out := make([]string, 0, refs.Len())
	for _, ref := range refs.Items() {
		if path := ref.Get("path"); path.Kind() == jsondoc.String {
			out = append(out, path.Str())
		}
	}
	return out
}

// PathBase returns the package id a path mapping key addresses,
// trimming the wildcard suffix: "@scope/lib/*" and "@scope/lib" both
// map to "@scope/lib".
func PathBase(key string) string {
	return strings.TrimSuffix(key, "/*")
}
