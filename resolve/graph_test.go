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
package resolve_test

import (
	"reflect"
	"strings"
	"testing"

	"bennypowers.dev/lega/config"
	"bennypowers.dev/lega/internal/mapfs"
	"bennypowers.dev/lega/resolve"
	"bennypowers.dev/lega/scan"
	"bennypowers.dev/lega/workspace"
)

func buildInventory(t *testing.T, projects ...*workspace.Project) *workspace.Inventory {
	t.Helper()
	inv := workspace.NewInventory()
	for _, p := range projects {
		if err := inv.Add(p); err != nil {
			t.Fatalf("Add failed: %v", err)
		}
	}
	return inv
}

func TestBuildGraph(t *testing.T) {
	mfs := mapfs.New()
	mfs.AddFile("/ws/packages/lib/src/index.ts", "export {};", 0644)
	mfs.AddFile("/ws/packages/types/dist/index.d.ts", "export {};", 0644)
	mfs.AddDir("/ws/apps/web", 0755)

	inv := buildInventory(t,
		&workspace.Project{Name: "@scope/web", Root: "/ws/apps/web", Rel: "apps/web", Category: workspace.CategoryApp},
		&workspace.Project{Name: "@scope/lib", Root: "/ws/packages/lib", Rel: "packages/lib", Category: workspace.CategoryShared},
		&workspace.Project{Name: "@scope/types", Root: "/ws/packages/types", Rel: "packages/types", Category: workspace.CategoryShared},
	)
	usage := &scan.ProjectUsage{Usage: map[string]*scan.UsageRecord{
		"@scope/web": {
			Dependencies:         []string{"@scope/lib"},
			TypeOnlyDependencies: []string{"@scope/types"},
			Details: []scan.Detail{
				{Dependency: "@scope/lib", SourceFile: "src/main.ts"},
				{Dependency: "@scope/types", SourceFile: "src/main.ts", TypeOnly: true},
			},
		},
	}}

	graph := resolve.NewBuilder(mfs, config.Default(), nil).Build(inv, usage)

	expectedNames := []string{"@scope/lib", "@scope/types", "@scope/web"}
	if !reflect.DeepEqual(graph.Names(), expectedNames) {
		t.Errorf("Names = %v, expected %v", graph.Names(), expectedNames)
	}
	if len(graph.Warnings) != 0 {
		t.Errorf("Expected no warnings, got %v", graph.Warnings)
	}
	if len(graph.Cycles) != 0 || len(graph.Diamonds) != 0 {
		t.Errorf("Expected no cycles or diamonds, got %d and %d", len(graph.Cycles), len(graph.Diamonds))
	}

	web := graph.Nodes["@scope/web"]
	if !reflect.DeepEqual(web.DependencyNames(), []string{"@scope/lib", "@scope/types"}) {
		t.Fatalf("web dependencies = %v", web.DependencyNames())
	}

	lib := web.Dependencies["@scope/lib"]
	if lib.Reason != resolve.ReasonImport {
		t.Errorf("lib reason = %q, expected %q", lib.Reason, resolve.ReasonImport)
	}
	if !reflect.DeepEqual(lib.SourceFiles, []string{"src/main.ts"}) {
		t.Errorf("lib source files = %v", lib.SourceFiles)
	}
	expectedEntry := resolve.EntryPoint{Path: "src/index.ts", Exists: true}
	if lib.EntryPoint != expectedEntry {
		t.Errorf("lib entry = %+v, expected %+v", lib.EntryPoint, expectedEntry)
	}
	if lib.Project != inv.Projects["@scope/lib"] {
		t.Error("lib edge should point at the inventory project")
	}

	types := web.Dependencies["@scope/types"]
	expectedEntry = resolve.EntryPoint{Path: "dist/index.d.ts", Exists: true, IsDeclaration: true}
	if types.EntryPoint != expectedEntry {
		t.Errorf("types entry = %+v, expected %+v", types.EntryPoint, expectedEntry)
	}

	if n := len(graph.Nodes["@scope/lib"].Dependencies); n != 0 {
		t.Errorf("lib should have no dependencies, got %d", n)
	}
}

func TestBuildGraphDefaultReason(t *testing.T) {
	mfs := mapfs.New()
	mfs.AddFile("/ws/packages/base/src/index.ts", "export {};", 0644)
	mfs.AddDir("/ws/apps/web", 0755)

	inv := buildInventory(t,
		&workspace.Project{Name: "@scope/web", Root: "/ws/apps/web", Rel: "apps/web", Category: workspace.CategoryApp},
		&workspace.Project{Name: "@scope/base", Root: "/ws/packages/base", Rel: "packages/base", Category: workspace.CategoryShared},
	)
	// No source provenance: the edge came from defaultDependencies.
	usage := &scan.ProjectUsage{Usage: map[string]*scan.UsageRecord{
		"@scope/web": {Dependencies: []string{"@scope/base"}},
	}}

	graph := resolve.NewBuilder(mfs, config.Default(), nil).Build(inv, usage)

	edge := graph.Nodes["@scope/web"].Dependencies["@scope/base"]
	if edge.Reason != resolve.ReasonDefault {
		t.Errorf("reason = %q, expected %q", edge.Reason, resolve.ReasonDefault)
	}
	if len(edge.SourceFiles) != 0 {
		t.Errorf("expected no source files, got %v", edge.SourceFiles)
	}
}

func TestBuildGraphUnknownDependency(t *testing.T) {
	mfs := mapfs.New()
	mfs.AddDir("/ws/apps/web", 0755)

	inv := buildInventory(t,
		&workspace.Project{Name: "@scope/web", Root: "/ws/apps/web", Rel: "apps/web", Category: workspace.CategoryApp},
	)
	usage := &scan.ProjectUsage{Usage: map[string]*scan.UsageRecord{
		"@scope/web": {
			Dependencies: []string{"@scope/ghost"},
			Details:      []scan.Detail{{Dependency: "@scope/ghost", SourceFile: "src/main.ts"}},
		},
	}}

	graph := resolve.NewBuilder(mfs, config.Default(), nil).Build(inv, usage)

	if n := len(graph.Nodes["@scope/web"].Dependencies); n != 0 {
		t.Errorf("expected no edges, got %d", n)
	}
	if len(graph.Warnings) != 1 {
		t.Fatalf("expected 1 warning, got %v", graph.Warnings)
	}
	if !strings.Contains(graph.Warnings[0], "@scope/ghost") || !strings.Contains(graph.Warnings[0], "@scope/web") {
		t.Errorf("warning should name both projects: %q", graph.Warnings[0])
	}
}

func TestBuildGraphSkipsIgnoredConsumers(t *testing.T) {
	mfs := mapfs.New()
	mfs.AddDir("/ws/apps/web", 0755)
	mfs.AddFile("/ws/packages/legacy/index.js", "module.exports = {};", 0644)

	inv := buildInventory(t,
		&workspace.Project{Name: "@scope/web", Root: "/ws/apps/web", Rel: "apps/web", Category: workspace.CategoryApp},
		&workspace.Project{Name: "@scope/legacy", Root: "/ws/packages/legacy", Rel: "packages/legacy", Category: workspace.CategoryShared},
	)
	usage := &scan.ProjectUsage{Usage: map[string]*scan.UsageRecord{
		"@scope/web": {
			Dependencies: []string{"@scope/legacy"},
			Details:      []scan.Detail{{Dependency: "@scope/legacy", SourceFile: "src/main.ts"}},
		},
		"@scope/legacy": {
			Dependencies: []string{"@scope/web"},
			Details:      []scan.Detail{{Dependency: "@scope/web", SourceFile: "index.js"}},
		},
	}}
	cfg := config.Default()
	cfg.IgnoreProjects = []string{"@scope/legacy"}

	graph := resolve.NewBuilder(mfs, cfg, nil).Build(inv, usage)

	if _, ok := graph.Nodes["@scope/legacy"]; ok {
		t.Error("ignored project should not appear as a graph node")
	}
	// Edges into the ignored project are still resolved.
	if _, ok := graph.Nodes["@scope/web"].Dependencies["@scope/legacy"]; !ok {
		t.Error("edge to ignored project should survive")
	}
	if len(graph.Warnings) != 0 {
		t.Errorf("expected no warnings, got %v", graph.Warnings)
	}
}

func TestBuildGraphArchitecturalViolation(t *testing.T) {
	mfs := mapfs.New()
	mfs.AddDir("/ws/apps/web", 0755)
	mfs.AddDir("/ws/packages/lib", 0755)

	inv := buildInventory(t,
		&workspace.Project{Name: "@scope/web", Root: "/ws/apps/web", Rel: "apps/web", Category: workspace.CategoryApp},
		&workspace.Project{Name: "@scope/lib", Root: "/ws/packages/lib", Rel: "packages/lib", Category: workspace.CategoryShared},
	)
	usage := &scan.ProjectUsage{Usage: map[string]*scan.UsageRecord{
		"@scope/lib": {
			Dependencies: []string{"@scope/web"},
			Details:      []scan.Detail{{Dependency: "@scope/web", SourceFile: "src/index.ts"}},
		},
	}}

	graph := resolve.NewBuilder(mfs, config.Default(), nil).Build(inv, usage)

	if len(graph.Warnings) != 1 {
		t.Fatalf("expected 1 warning, got %v", graph.Warnings)
	}
	if !strings.HasPrefix(graph.Warnings[0], "Architectural violation:") {
		t.Errorf("warning = %q", graph.Warnings[0])
	}
	// The edge is still recorded; the warning is advisory.
	if _, ok := graph.Nodes["@scope/lib"].Dependencies["@scope/web"]; !ok {
		t.Error("edge should survive the violation warning")
	}
}

func TestBuildGraphProjectWithoutUsage(t *testing.T) {
	mfs := mapfs.New()
	mfs.AddDir("/ws/packages/lib", 0755)

	inv := buildInventory(t,
		&workspace.Project{Name: "@scope/lib", Root: "/ws/packages/lib", Rel: "packages/lib", Category: workspace.CategoryShared},
	)

	graph := resolve.NewBuilder(mfs, config.Default(), nil).Build(inv, &scan.ProjectUsage{Usage: map[string]*scan.UsageRecord{}})

	node, ok := graph.Nodes["@scope/lib"]
	if !ok {
		t.Fatal("project without usage should still get a node")
	}
	if len(node.Dependencies) != 0 {
		t.Errorf("expected no dependencies, got %v", node.DependencyNames())
	}
}
