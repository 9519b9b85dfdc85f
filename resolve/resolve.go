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
// Package resolve builds the workspace dependency graph: per-project
// edges annotated with entry points and provenance, plus cycle and
// diamond analysis over those edges.
package resolve

import (
	"fmt"
	"maps"
	"slices"

	"bennypowers.dev/lega/config"
	"bennypowers.dev/lega/fs"
	"bennypowers.dev/lega/scan"
	"bennypowers.dev/lega/workspace"
)

// Reason records why a dependency edge exists.
type Reason string

const (
	// ReasonImport marks an edge backed by at least one source import.
	ReasonImport Reason = "import"
	// ReasonDefault marks an edge created by configured default
	// dependencies, with no source provenance.
	ReasonDefault Reason = "default"
)

// ResolvedDependency is one edge of the graph.
type ResolvedDependency struct {
	Project     *workspace.Project // the dependency target
	EntryPoint  EntryPoint
	Reason      Reason
	SourceFiles []string // consumer-root-relative files behind the edge
}

// Node is a project together with its resolved dependency edges.
type Node struct {
	Project      *workspace.Project
	Dependencies map[string]*ResolvedDependency
}

// DependencyNames returns the node's dependency ids in sorted order.
func (n *Node) DependencyNames() []string {
	return slices.Sorted(maps.Keys(n.Dependencies))
}

// Graph is the fully resolved workspace dependency graph.
type Graph struct {
	Nodes    map[string]*Node
	Cycles   []Cycle
	Diamonds []Diamond
	Warnings []string
}

// Names returns the graph's node names in sorted order.
func (g *Graph) Names() []string {
	return slices.Sorted(maps.Keys(g.Nodes))
}

// Builder combines the inventory and usage records into a Graph.
type Builder struct {
	fsys   fs.FileSystem
	cfg    *config.Config
	logger workspace.Logger
}

// NewBuilder creates a Builder. The logger may be nil.
func NewBuilder(fsys fs.FileSystem, cfg *config.Config, logger workspace.Logger) *Builder {
	return &Builder{fsys: fsys, cfg: cfg, logger: logger}
}

// Build resolves every project's usage record into dependency edges,
// then runs cycle and diamond analysis. Projects on the ignore list
// are left out of the graph; unknown dependency ids degrade to
// warnings. A shared package depending on an app is flagged as an
// architectural violation warning.
func (b *Builder) Build(inv *workspace.Inventory, usage *scan.ProjectUsage) *Graph {
	graph := &Graph{Nodes: make(map[string]*Node)}
	warn := func(format string, args ...any) {
		msg := fmt.Sprintf(format, args...)
		graph.Warnings = append(graph.Warnings, msg)
		if b.logger != nil {
			b.logger.Warning("%s", msg)
		}
	}

	entries := NewEntryPointResolver(b.fsys)

	for _, name := range inv.Names() {
		if b.cfg.IgnoresProject(name) {
			if b.logger != nil {
				b.logger.Debug("Skipping ignored project %s", name)
			}
			continue
		}
		project := inv.Projects[name]
		node := &Node{
			Project:      project,
			Dependencies: make(map[string]*ResolvedDependency),
		}

		record := usage.Usage[name]
		if record == nil {
			record = &scan.UsageRecord{}
		}
		for _, id := range record.All() {
			target, ok := inv.Get(id)
			if !ok {
				warn("Unknown dependency %s referenced by %s", id, name)
				continue
			}
			if project.Category == workspace.CategoryShared && target.Category == workspace.CategoryApp {
				warn("Architectural violation: shared package %s depends on app %s", name, id)
			}
			files := record.SourceFilesFor(id)
			reason := ReasonImport
			if len(files) == 0 {
				reason = ReasonDefault
			}
			node.Dependencies[id] = &ResolvedDependency{
				Project:     target,
				EntryPoint:  entries.Resolve(target),
				Reason:      reason,
				SourceFiles: files,
			}
		}
		graph.Nodes[name] = node
	}

	graph.Cycles = FindCycles(graph)
	graph.Diamonds = FindDiamonds(graph, b.cfg)
	return graph
}
