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
	"fmt"
	"slices"
	"strings"

	"bennypowers.dev/lega/config"
)

// DiamondKind classifies why a dependency is reached both directly
// and transitively.
type DiamondKind string

const (
	// KindExpectedSharedUtility marks allowlisted packages that are
	// legitimately reached from everywhere.
	KindExpectedSharedUtility DiamondKind = "expected-shared-utility"
	// KindIncompleteAbstraction marks the common case: an
	// intermediate uses the dependency internally without fully
	// re-exporting it, so consumers reach around it.
	KindIncompleteAbstraction DiamondKind = "incomplete-abstraction"
	// KindLayeringViolationCandidate marks a UI-looking consumer
	// reaching a data-looking dependency directly.
	KindLayeringViolationCandidate DiamondKind = "layering-violation-candidate"
)

// Diamond records one dependency reached both directly and through
// at least one intermediate from the same consumer. Diagnostic only.
type Diamond struct {
	Consumer    string
	Dependency  string
	Through     []string // direct deps of Consumer that also reach Dependency
	Kind        DiamondKind
	Explanation string
}

// FindDiamonds reports every (consumer, dependency) pair where the
// dependency is both a direct edge and reachable through another
// direct edge. Reachability closures are memoized per node and
// computed iteratively, so shared substructure and cycles are cheap
// and safe.
func FindDiamonds(g *Graph, cfg *config.Config) []Diamond {
	closures := make(map[string]map[string]bool)
	var diamonds []Diamond

	for _, consumer := range g.Names() {
		node := g.Nodes[consumer]
		direct := node.DependencyNames()
		if len(direct) < 2 {
			continue
		}
		for _, dep := range direct {
			var through []string
			for _, mid := range direct {
				if mid == dep {
					continue
				}
				if reachable(g, closures, mid)[dep] {
					through = append(through, mid)
				}
			}
			if len(through) == 0 {
				continue
			}
			slices.Sort(through)
			kind, explanation := classify(cfg, consumer, dep, through)
			diamonds = append(diamonds, Diamond{
				Consumer:    consumer,
				Dependency:  dep,
				Through:     through,
				Kind:        kind,
				Explanation: explanation,
			})
		}
	}
	return diamonds
}

// reachable returns the set of ids reachable from name through at
// least one edge, memoizing the full closure per node. Breadth-first
// with a visited set, so cycles terminate.
func reachable(g *Graph, closures map[string]map[string]bool, name string) map[string]bool {
	if closure, ok := closures[name]; ok {
		return closure
	}
	closure := make(map[string]bool)
	queue := []string{name}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		node, ok := g.Nodes[current]
		if !ok {
			continue
		}
		for _, dep := range node.DependencyNames() {
			if closure[dep] {
				continue
			}
			closure[dep] = true
			queue = append(queue, dep)
		}
	}
	closures[name] = closure
	return closure
}

func classify(cfg *config.Config, consumer, dep string, through []string) (DiamondKind, string) {
	if cfg.IsUniversalUtility(dep) {
		return KindExpectedSharedUtility,
			fmt.Sprintf("%s is an allowlisted shared utility", dep)
	}
	if nameContainsAny(consumer, cfg.UIHints) && nameContainsAny(dep, cfg.DataHints) {
		return KindLayeringViolationCandidate,
			fmt.Sprintf("%s looks like a UI layer reaching data layer %s directly", consumer, dep)
	}
	return KindIncompleteAbstraction,
		fmt.Sprintf("%s uses %s internally without fully re-exporting it", strings.Join(through, ", "), dep)
}

func nameContainsAny(name string, hints []string) bool {
	lower := strings.ToLower(name)
	for _, hint := range hints {
		if strings.Contains(lower, hint) {
			return true
		}
	}
	return false
}
