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
	"path"
	"slices"
	"strings"

	"bennypowers.dev/lega/jsondoc"
	"bennypowers.dev/lega/resolve"
	"bennypowers.dev/lega/tsconfig"
	"bennypowers.dev/lega/workspace"
)

// staleConfigPaths returns the path mapping keys whose base id names
// a workspace package that is not a resolved edge, sorted. Mappings
// for ids outside the workspace are preserved, never stale.
func staleConfigPaths(tc *tsconfig.TSConfig, inv *workspace.Inventory, node *resolve.Node) []string {
	var stale []string
	for _, key := range tc.PathKeys() {
		base := tsconfig.PathBase(key)
		if _, known := inv.Get(base); !known {
			continue
		}
		if _, ok := node.Dependencies[base]; !ok {
			stale = append(stale, key)
		}
	}
	slices.Sort(stale)
	return stale
}

// staleConfigRefs returns the reference paths that match no resolved
// dependency's relative root, in either the bare or ./-prefixed
// spelling, sorted.
func staleConfigRefs(tc *tsconfig.TSConfig, node *resolve.Node) []string {
	refs := tc.References()
	if len(refs) == 0 {
		return nil
	}
	configDir := path.Dir(node.Project.TSConfigPath)
	live := make(map[string]bool)
	for _, dep := range node.Dependencies {
		rel := relativePath(configDir, dep.Project.Root)
		live[rel] = true
		live["./"+rel] = true
	}
	var stale []string
	for _, ref := range refs {
		if !live[ref] {
			stale = append(stale, ref)
		}
	}
	slices.Sort(stale)
	return slices.Compact(stale)
}

// synthesizeReferences produces the target reference config: the
// workspace-type template merged over the current content, then the
// path mappings and project references regenerated from the resolved
// edges.
func (r *Reconciler) synthesizeReferences(tc *tsconfig.TSConfig, inv *workspace.Inventory, node *resolve.Node, result *Result) *jsondoc.Value {
	project := node.Project
	target := tc.Doc().Clone()
	tmpl, err := project.Type.ReferenceTemplate()
	if err != nil {
		r.warn(result, "Invalid tsconfig template for %s: %v", project.Name, err)
	} else if tmpl != nil {
		target = jsondoc.Merge(target, substituteProjectDir(tmpl, project))
	}
	configDir := path.Dir(project.TSConfigPath)
	rewritePaths(target, inv, node, configDir)
	rewriteReferences(target, node, configDir)
	return target
}

// rewritePaths rebuilds compilerOptions.paths. Mappings naming ids
// outside the workspace keep their original order; then each resolved
// dependency contributes a base mapping to its entry point followed
// by a wildcard mapping to its source root, sorted by id.
func rewritePaths(target *jsondoc.Value, inv *workspace.Inventory, node *resolve.Node, configDir string) {
	existing := target.Get("compilerOptions").Get("paths")
	out := jsondoc.NewObject()
	for _, key := range existing.Keys() {
		if _, known := inv.Get(tsconfig.PathBase(key)); known {
			continue
		}
		out.Set(key, existing.Get(key).Clone())
	}
	for _, id := range node.DependencyNames() {
		dep := node.Dependencies[id]
		entry := relativePath(configDir, path.Join(dep.Project.Root, dep.EntryPoint.Path))
		out.Set(id, jsondoc.NewArray(jsondoc.NewString(entry)))
		wildcardRoot := dep.Project.Root
		if strings.HasPrefix(dep.EntryPoint.Path, "src/") {
			wildcardRoot = path.Join(dep.Project.Root, "src")
		}
		wildcard := relativePath(configDir, wildcardRoot) + "/*"
		out.Set(id+"/*", jsondoc.NewArray(jsondoc.NewString(wildcard)))
	}

	options := target.Get("compilerOptions")
	if options.Kind() != jsondoc.Object {
		if out.Len() == 0 {
			return
		}
		options = jsondoc.NewObject()
		target.Set("compilerOptions", options)
	}
	if out.Len() == 0 && !options.Has("paths") {
		return
	}
	options.Set("paths", out)
}

// rewriteReferences regenerates the project references, one per
// resolved dependency, sorted by relative path.
func rewriteReferences(target *jsondoc.Value, node *resolve.Node, configDir string) {
	rels := make([]string, 0, len(node.Dependencies))
	for _, dep := range node.Dependencies {
		rels = append(rels, relativePath(configDir, dep.Project.Root))
	}
	slices.Sort(rels)

	refs := jsondoc.NewArray()
	for _, rel := range rels {
		ref := jsondoc.NewObject()
		ref.Set("path", jsondoc.NewString(rel))
		refs.Append(ref)
	}
	if refs.Len() == 0 && !target.Has("references") {
		return
	}
	target.Set("references", refs)
}

// relativePath computes the slash-separated relative path from one
// absolute directory to another absolute path. Both sides come from
// the filesystem port, so the separator is always "/".
func relativePath(from, to string) string {
	fromParts := strings.Split(path.Clean(from), "/")
	toParts := strings.Split(path.Clean(to), "/")
	common := 0
	for common < len(fromParts) && common < len(toParts) && fromParts[common] == toParts[common] {
		common++
	}
	parts := make([]string, 0, len(fromParts)-common+len(toParts)-common)
	for range fromParts[common:] {
		parts = append(parts, "..")
	}
	parts = append(parts, toParts[common:]...)
	if len(parts) == 0 {
		return "."
	}
	return strings.Join(parts, "/")
}
