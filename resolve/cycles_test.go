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
	"testing"

	"bennypowers.dev/lega/resolve"
	"bennypowers.dev/lega/workspace"
)

// dependencyGraph builds a bare graph from an adjacency list. Every
// key becomes a node; edges to ids that are not keys stay dangling.
func dependencyGraph(edges map[string][]string) *resolve.Graph {
	g := &resolve.Graph{Nodes: make(map[string]*resolve.Node)}
	for name := range edges {
		g.Nodes[name] = &resolve.Node{
			Project:      &workspace.Project{Name: name},
			Dependencies: make(map[string]*resolve.ResolvedDependency),
		}
	}
	for name, deps := range edges {
		for _, dep := range deps {
			g.Nodes[name].Dependencies[dep] = &resolve.ResolvedDependency{Reason: resolve.ReasonImport}
		}
	}
	return g
}

func memberSets(cycles []resolve.Cycle) [][]string {
	sets := make([][]string, 0, len(cycles))
	for _, c := range cycles {
		sets = append(sets, c.Members())
	}
	return sets
}

func TestFindCyclesMutualImport(t *testing.T) {
	g := dependencyGraph(map[string][]string{
		"a": {"b"},
		"b": {"a"},
	})

	cycles := resolve.FindCycles(g)

	if len(cycles) != 1 {
		t.Fatalf("expected 1 cycle, got %d: %v", len(cycles), memberSets(cycles))
	}
	c := cycles[0]
	if !reflect.DeepEqual(c.Members(), []string{"a", "b"}) {
		t.Errorf("members = %v, expected [a b]", c.Members())
	}
	if len(c.Names) != 3 || c.Names[0] != c.Names[len(c.Names)-1] {
		t.Errorf("Names should be a closed walk, got %v", c.Names)
	}
	if len(c.Projects) != 2 {
		t.Fatalf("expected 2 projects, got %d", len(c.Projects))
	}
	for i, p := range c.Projects {
		if p.Name != c.Names[i] {
			t.Errorf("Projects[%d] = %s, expected %s", i, p.Name, c.Names[i])
		}
	}
}

func TestFindCyclesAcyclic(t *testing.T) {
	g := dependencyGraph(map[string][]string{
		"top":  {"mid", "base"},
		"mid":  {"base"},
		"base": {},
	})

	if cycles := resolve.FindCycles(g); len(cycles) != 0 {
		t.Errorf("expected no cycles, got %v", memberSets(cycles))
	}
}

func TestFindCyclesRotationInvariance(t *testing.T) {
	// The same three-member cycle entered at different points must
	// report the same member set exactly once.
	plain := dependencyGraph(map[string][]string{
		"x": {"y"},
		"y": {"z"},
		"z": {"x"},
	})
	entered := dependencyGraph(map[string][]string{
		"a": {"y"},
		"x": {"y"},
		"y": {"z"},
		"z": {"x"},
	})

	first := resolve.FindCycles(plain)
	second := resolve.FindCycles(entered)

	if len(first) != 1 || len(second) != 1 {
		t.Fatalf("expected 1 cycle each, got %d and %d", len(first), len(second))
	}
	if !reflect.DeepEqual(first[0].Members(), second[0].Members()) {
		t.Errorf("member sets differ: %v vs %v", first[0].Members(), second[0].Members())
	}
	if !reflect.DeepEqual(first[0].Members(), []string{"x", "y", "z"}) {
		t.Errorf("members = %v, expected [x y z]", first[0].Members())
	}
}

func TestFindCyclesDisjoint(t *testing.T) {
	g := dependencyGraph(map[string][]string{
		"a": {"b"},
		"b": {"a"},
		"c": {"d"},
		"d": {"c"},
	})

	cycles := resolve.FindCycles(g)

	expected := [][]string{{"a", "b"}, {"c", "d"}}
	if !reflect.DeepEqual(memberSets(cycles), expected) {
		t.Errorf("member sets = %v, expected %v", memberSets(cycles), expected)
	}
}

func TestFindCyclesOverlapping(t *testing.T) {
	// Two cycles sharing the a->b edge are reported separately.
	g := dependencyGraph(map[string][]string{
		"a": {"b"},
		"b": {"a", "c"},
		"c": {"a"},
	})

	cycles := resolve.FindCycles(g)

	expected := [][]string{{"a", "b"}, {"a", "b", "c"}}
	if !reflect.DeepEqual(memberSets(cycles), expected) {
		t.Errorf("member sets = %v, expected %v", memberSets(cycles), expected)
	}
}

func TestFindCyclesSharedTail(t *testing.T) {
	// core and lib form a cycle reached both directly and through ui.
	// Visited-set pruning must not suppress or duplicate it.
	g := dependencyGraph(map[string][]string{
		"app":  {"lib", "ui"},
		"lib":  {"core"},
		"ui":   {"core"},
		"core": {"lib"},
	})

	cycles := resolve.FindCycles(g)

	if len(cycles) != 1 {
		t.Fatalf("expected 1 cycle, got %v", memberSets(cycles))
	}
	if !reflect.DeepEqual(cycles[0].Members(), []string{"core", "lib"}) {
		t.Errorf("members = %v, expected [core lib]", cycles[0].Members())
	}
}

func TestFindCyclesDanglingEdge(t *testing.T) {
	g := dependencyGraph(map[string][]string{
		"a": {"gone", "b"},
		"b": {"a"},
	})

	cycles := resolve.FindCycles(g)

	if len(cycles) != 1 {
		t.Fatalf("expected 1 cycle, got %v", memberSets(cycles))
	}
	if !reflect.DeepEqual(cycles[0].Members(), []string{"a", "b"}) {
		t.Errorf("members = %v, expected [a b]", cycles[0].Members())
	}
}
