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
package reconcile

import (
	"slices"
	"strings"

	"bennypowers.dev/lega/jsondoc"
	"bennypowers.dev/lega/packagejson"
	"bennypowers.dev/lega/resolve"
	"bennypowers.dev/lega/workspace"
)

// staleManifestDeps returns the dependency keys that use the
// workspace link protocol but are not resolved edges, sorted.
// Registry-versioned entries are never stale; they are not ours.
func staleManifestDeps(pkg *packagejson.PackageJSON, node *resolve.Node) []string {
	var stale []string
	for key, version := range pkg.Dependencies() {
		if !packagejson.IsWorkspaceVersion(version) {
			continue
		}
		if _, ok := node.Dependencies[key]; !ok {
			stale = append(stale, key)
		}
	}
	slices.Sort(stale)
	return stale
}

// synthesizeManifest produces the target manifest document: the
// workspace-type template merged over the current content, then the
// dependencies section regenerated from the resolved edges.
func (r *Reconciler) synthesizeManifest(pkg *packagejson.PackageJSON, node *resolve.Node, result *Result) *jsondoc.Value {
	project := node.Project
	target := pkg.Doc().Clone()
	tmpl, err := project.Type.ManifestTemplate()
	if err != nil {
		r.warn(result, "Invalid packageJson template for %s: %v", project.Name, err)
	} else if tmpl != nil {
		target = jsondoc.Merge(target, substituteProjectDir(tmpl, project))
	}
	rewriteDependencies(target, node)
	return target
}

// substituteProjectDir replaces the {{projectDir}} placeholder in
// every template string with the project directory's final segment.
func substituteProjectDir(tmpl *jsondoc.Value, project *workspace.Project) *jsondoc.Value {
	return tmpl.MapStrings(func(s string) string {
		return strings.ReplaceAll(s, "{{projectDir}}", project.Dir())
	})
}

// rewriteDependencies regenerates the dependencies section. Resolved
// edges become workspace links, existing workspace links that are no
// longer edges are dropped, registry-versioned entries survive
// verbatim, and the keys end up sorted.
func rewriteDependencies(target *jsondoc.Value, node *resolve.Node) {
	deps := target.Get("dependencies")
	out := jsondoc.NewObject()
	for _, key := range deps.Keys() {
		val := deps.Get(key)
		if val.Kind() == jsondoc.String && packagejson.IsWorkspaceVersion(val.Str()) {
			continue
		}
		if _, ok := node.Dependencies[key]; ok {
			continue
		}
		out.Set(key, val.Clone())
	}
	for _, id := range node.DependencyNames() {
		out.Set(id, jsondoc.NewString(packagejson.WorkspaceMarker))
	}
	out.SortKeys()
	if out.Len() == 0 && deps == nil {
		return
	}
	target.Set("dependencies", out)
}
