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
package graph

import (
	"bytes"
	"fmt"
	"strings"

	"bennypowers.dev/lega/resolve"
	"bennypowers.dev/lega/workspace"
)

// toDOT renders the graph as Graphviz text. Apps are filled, edges on
// a reported cycle drawn red.
func toDOT(g *resolve.Graph) string {
	var buf bytes.Buffer
	buf.WriteString("digraph workspace {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  node [shape=box, style=rounded, fontsize=12];\n")
	buf.WriteString("\n")

	cyclic := cycleEdges(g)

	for _, name := range g.Names() {
		node := g.Nodes[name]
		attrs := []string{fmt.Sprintf("label=%q", name)}
		if node.Project.Category == workspace.CategoryApp {
			attrs = append(attrs, `style="rounded,filled"`, "fillcolor=lightblue")
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", name, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, name := range g.Names() {
		for _, dep := range g.Nodes[name].DependencyNames() {
			if cyclic[edgeKey(name, dep)] {
				fmt.Fprintf(&buf, "  %q -> %q [color=red, penwidth=2];\n", name, dep)
			} else {
				fmt.Fprintf(&buf, "  %q -> %q;\n", name, dep)
			}
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func edgeKey(from, to string) string {
	return from + " -> " + to
}

// cycleEdges collects the consumer to dependency pairs that sit on a
// reported cycle walk.
func cycleEdges(g *resolve.Graph) map[string]bool {
	edges := make(map[string]bool)
	for _, cycle := range g.Cycles {
		for i := 0; i+1 < len(cycle.Names); i++ {
			edges[edgeKey(cycle.Names[i], cycle.Names[i+1])] = true
		}
	}
	return edges
}
