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
	"slices"
	"strings"

	"bennypowers.dev/lega/workspace"
)

// Cycle is one circular reference chain. Names is the closed walk
// with the first id repeated last; Projects holds the distinct
// members aligned with Names[:len(Names)-1].
type Cycle struct {
	Names    []string
	Projects []*workspace.Project
}

// Members returns the cycle's distinct member ids in sorted order.
// Two cycles with equal member sets are the same cycle regardless of
// rotation or direction.
func (c Cycle) Members() []string {
	members := slices.Clone(c.Names[:len(c.Names)-1])
	slices.Sort(members)
	return members
}

// FindCycles locates every distinct circular reference chain in the
// graph. The traversal is depth first with an explicit frame stack so
// arbitrarily deep graphs cannot exhaust goroutine stacks: gray nodes
// are on the current path, black nodes are fully explored and never
// re-entered. Reaching a gray node records the sub-path from its
// first occurrence. Cycles are deduplicated by member set.
func FindCycles(g *Graph) []Cycle {
	type frame struct {
		name string
		deps []string
		next int
	}

	var cycles []Cycle
	seen := make(map[string]bool)
	black := make(map[string]bool)

	record := func(names []string) {
		key := strings.Join(Cycle{Names: names}.Members(), "\x00")
		if seen[key] {
			return
		}
		seen[key] = true
		cycle := Cycle{Names: names}
		for _, name := range names[:len(names)-1] {
			cycle.Projects = append(cycle.Projects, g.Nodes[name].Project)
		}
		cycles = append(cycles, cycle)
	}

	for _, root := range g.Names() {
		if black[root] {
			continue
		}

		gray := map[string]int{root: 0}
		path := []string{root}
		stack := []frame{{name: root, deps: g.Nodes[root].DependencyNames()}}

		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			if top.next < len(top.deps) {
				dep := top.deps[top.next]
				top.next++
				if index, onPath := gray[dep]; onPath {
					walk := append(slices.Clone(path[index:]), dep)
					record(walk)
					continue
				}
				if black[dep] {
					continue
				}
				node, ok := g.Nodes[dep]
				if !ok {
					continue
				}
				gray[dep] = len(path)
				path = append(path, dep)
				stack = append(stack, frame{name: dep, deps: node.DependencyNames()})
				continue
			}

			black[top.name] = true
			delete(gray, top.name)
			path = path[:len(path)-1]
			stack = stack[:len(stack)-1]
		}
	}
	return cycles
}
