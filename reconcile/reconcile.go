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

// Package reconcile compares the resolved dependency graph against
// each project's manifest and reference config, removes stale
// workspace links, applies workspace-type templates, and rewrites
// both files deterministically. In dry-run mode it produces unified
// diffs instead of writing.
package reconcile

import (
	"bytes"
	"fmt"
	"maps"
	"slices"

	"github.com/pmezard/go-difflib/difflib"

	"bennypowers.dev/lega/config"
	"bennypowers.dev/lega/fs"
	"bennypowers.dev/lega/jsondoc"
	"bennypowers.dev/lega/packagejson"
	"bennypowers.dev/lega/resolve"
	"bennypowers.dev/lega/tsconfig"
	"bennypowers.dev/lega/workspace"
)

// StaleSet lists manifest and reference-config entries that name
// workspace packages the project no longer depends on.
type StaleSet struct {
	PackageJSONDeps []string
	TSConfigPaths   []string
	TSConfigRefs    []string
}

// Empty reports whether the set holds no stale entries.
func (s StaleSet) Empty() bool {
	return len(s.PackageJSONDeps) == 0 && len(s.TSConfigPaths) == 0 && len(s.TSConfigRefs) == 0
}

// Result summarizes one reconciliation run.
type Result struct {
	// FilesWritten counts files actually written. Always zero in
	// dry-run mode.
	FilesWritten int
	// Updated lists the ids of projects with at least one changed
	// file, sorted.
	Updated []string
	// Stale maps project ids to their stale entries. Projects with
	// nothing stale are absent.
	Stale map[string]StaleSet
	// Diffs maps file paths to unified diffs. Only populated in
	// dry-run mode.
	Diffs map[string]string
	// Warnings collects non-fatal problems: unreadable or invalid
	// manifests and reference configs.
	Warnings []string
}

// Reconciler rewrites project manifests and reference configs to
// match the resolved graph.
type Reconciler struct {
	fsys   fs.FileSystem
	cfg    *config.Config
	logger workspace.Logger
	dryRun bool
}

// New creates a Reconciler that writes through the given filesystem.
func New(fsys fs.FileSystem, cfg *config.Config, logger workspace.Logger) *Reconciler {
	return &Reconciler{fsys: fsys, cfg: cfg, logger: logger}
}

// WithDryRun returns a copy that computes diffs instead of writing.
func (r *Reconciler) WithDryRun(dryRun bool) *Reconciler {
	out := *r
	out.dryRun = dryRun
	return &out
}

// Reconcile processes every graph node in sorted id order. Unreadable
// files degrade to warnings; a failed write aborts the run.
func (r *Reconciler) Reconcile(inv *workspace.Inventory, graph *resolve.Graph) (*Result, error) {
	result := &Result{
		Stale: make(map[string]StaleSet),
		Diffs: make(map[string]string),
	}
	updated := make(map[string]bool)

	for _, name := range graph.Names() {
		node := graph.Nodes[name]
		stale, changed, err := r.reconcileProject(inv, node, result)
		if err != nil {
			return result, err
		}
		if !stale.Empty() {
			result.Stale[name] = stale
		}
		if changed {
			updated[name] = true
		}
	}

	result.Updated = slices.Sorted(maps.Keys(updated))
	return result, nil
}

// reconcileProject handles one project's manifest and, when present,
// its reference config. A manifest read failure skips the whole
// project; a reference config failure skips only that half.
func (r *Reconciler) reconcileProject(inv *workspace.Inventory, node *resolve.Node, result *Result) (StaleSet, bool, error) {
	var stale StaleSet
	project := node.Project

	manifestPath := project.ManifestPath()
	pkg, raw, ok := r.readManifest(manifestPath, result)
	if !ok {
		return stale, false, nil
	}
	stale.PackageJSONDeps = staleManifestDeps(pkg, node)

	target := r.synthesizeManifest(pkg, node, result)
	changed, err := r.emit(manifestPath, raw, pkg.Doc(), target, result)
	if err != nil {
		return stale, false, err
	}

	if project.TSConfigPath == "" {
		return stale, changed, nil
	}
	tc, raw, ok := r.readConfig(project.TSConfigPath, result)
	if !ok {
		return stale, changed, nil
	}
	stale.TSConfigPaths = staleConfigPaths(tc, inv, node)
	stale.TSConfigRefs = staleConfigRefs(tc, node)

	target = r.synthesizeReferences(tc, inv, node, result)
	refChanged, err := r.emit(project.TSConfigPath, raw, tc.Doc(), target, result)
	if err != nil {
		return stale, changed, err
	}
	return stale, changed || refChanged, nil
}

// readManifest reads and parses one package.json. Failures become
// warnings and ok=false.
func (r *Reconciler) readManifest(path string, result *Result) (*packagejson.PackageJSON, []byte, bool) {
	raw, ok := r.readRaw(path, result)
	if !ok {
		return nil, nil, false
	}
	pkg, err := packagejson.Parse(raw)
	if err != nil {
		r.warn(result, "Failed to parse %s: %v", path, err)
		return nil, nil, false
	}
	return pkg, raw, true
}

// readConfig reads and parses one tsconfig.json. Failures become
// warnings and ok=false.
func (r *Reconciler) readConfig(path string, result *Result) (*tsconfig.TSConfig, []byte, bool) {
	raw, ok := r.readRaw(path, result)
	if !ok {
		return nil, nil, false
	}
	tc, err := tsconfig.Parse(raw)
	if err != nil {
		r.warn(result, "Failed to parse %s: %v", path, err)
		return nil, nil, false
	}
	return tc, raw, true
}

func (r *Reconciler) readRaw(path string, result *Result) ([]byte, bool) {
	raw, err := r.fsys.ReadFile(path)
	if err != nil {
		r.warn(result, "Failed to read %s: %v", path, err)
		return nil, false
	}
	return raw, true
}

// emit compares the synthesized document against the current one and
// either writes it or records a diff. A change is real only when the
// canonical serializations differ, so cosmetic whitespace in the
// source file never triggers a rewrite by itself.
func (r *Reconciler) emit(path string, raw []byte, current, target *jsondoc.Value, result *Result) (bool, error) {
	targetBytes := serialize(target)
	if bytes.Equal(serialize(current), targetBytes) {
		return false, nil
	}
	if r.dryRun {
		result.Diffs[path] = unifiedDiff(path, raw, targetBytes)
		return true, nil
	}
	if err := r.fsys.WriteFile(path, targetBytes, 0644); err != nil {
		return false, fmt.Errorf("writing %s: %w", path, err)
	}
	result.FilesWritten++
	if r.logger != nil {
		r.logger.Debug("wrote %s", path)
	}
	return true, nil
}

func (r *Reconciler) warn(result *Result, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	result.Warnings = append(result.Warnings, msg)
	if r.logger != nil {
		r.logger.Warning("%s", msg)
	}
}

// serialize renders a document in the canonical on-disk form.
func serialize(doc *jsondoc.Value) []byte {
	return append(doc.Marshal(), '\n')
}

func unifiedDiff(path string, current, target []byte) string {
	text, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(current)),
		B:        difflib.SplitLines(string(target)),
		FromFile: path,
		ToFile:   path,
		Context:  3,
	})
	if err != nil {
		return ""
	}
	return text
}
