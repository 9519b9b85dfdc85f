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

// Package graph provides the graph command for lega.
package graph

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"bennypowers.dev/lega/fs"
	"bennypowers.dev/lega/internal/pipeline"
	"bennypowers.dev/lega/internal/report"
	"bennypowers.dev/lega/resolve"
	"bennypowers.dev/lega/workspace"
)

// Cmd is the graph cobra command that prints the resolved workspace
// dependency graph.
var Cmd = &cobra.Command{
	Use:   "graph [root]",
	Short: "Print the resolved workspace dependency graph",
	Long: `Scan workspace sources, resolve the dependency graph, and print it
without touching any manifest.`,
	Example: `  # JSON graph (default)
  lega graph

  # Graphviz text, cycle edges highlighted
  lega graph --format dot | dot -Tsvg -o deps.svg`,
	Args: cobra.MaximumNArgs(1),
	RunE: run,
}

func init() {
	Cmd.Flags().StringP("format", "f", "json", "Output format (json, dot)")
	Cmd.Flags().IntP("jobs", "j", 0, "Concurrent file reads per project (default: number of CPUs)")
}

func run(cmd *cobra.Command, args []string) error {
	osfs := fs.NewOSFileSystem()
	start := "."
	if len(args) > 0 {
		start = args[0]
	}
	absStart, err := filepath.Abs(start)
	if err != nil {
		return fmt.Errorf("invalid workspace root: %w", err)
	}
	root := workspace.FindRoot(osfs, absStart)

	format, _ := cmd.Flags().GetString("format")
	if format != "json" && format != "dot" {
		return fmt.Errorf("invalid format %q: must be 'json' or 'dot'", format)
	}
	jobs, _ := cmd.Flags().GetInt("jobs")
	reporter := report.New(cmd.OutOrStdout(), cmd.ErrOrStderr(), viper.GetBool("verbose"))

	pipe, err := pipeline.Load(osfs, root, jobs, reporter)
	if err != nil {
		return err
	}

	if format == "dot" {
		fmt.Fprint(cmd.OutOrStdout(), toDOT(pipe.Graph))
		return nil
	}

	data, err := json.MarshalIndent(newGraphView(root, pipe.Graph), "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}

type graphView struct {
	Root     string        `json:"root"`
	Projects []projectView `json:"projects"`
	Cycles   [][]string    `json:"cycles,omitempty"`
	Diamonds []diamondView `json:"diamonds,omitempty"`
	Warnings []string      `json:"warnings,omitempty"`
}

type projectView struct {
	Name         string     `json:"name"`
	Version      string     `json:"version,omitempty"`
	Path         string     `json:"path"`
	Category     string     `json:"category"`
	Dependencies []edgeView `json:"dependencies,omitempty"`
}

type edgeView struct {
	Name        string   `json:"name"`
	EntryPoint  string   `json:"entryPoint"`
	Declaration bool     `json:"declaration,omitempty"`
	Reason      string   `json:"reason"`
	SourceFiles []string `json:"sourceFiles,omitempty"`
}

type diamondView struct {
	Consumer    string   `json:"consumer"`
	Dependency  string   `json:"dependency"`
	Through     []string `json:"through"`
	Kind        string   `json:"kind"`
	Explanation string   `json:"explanation"`
}

// newGraphView flattens the graph into its JSON shape. Projects and
// their edges are sorted by name so output is stable.
func newGraphView(root string, g *resolve.Graph) graphView {
	view := graphView{Root: root, Projects: []projectView{}, Warnings: g.Warnings}

	for _, name := range g.Names() {
		node := g.Nodes[name]
		pv := projectView{
			Name:     name,
			Path:     node.Project.Rel,
			Category: string(node.Project.Category),
		}
		if manifest := node.Project.Manifest; manifest != nil {
			pv.Version = manifest.Version
		}
		for _, dep := range node.DependencyNames() {
			edge := node.Dependencies[dep]
			pv.Dependencies = append(pv.Dependencies, edgeView{
				Name:        dep,
				EntryPoint:  edge.EntryPoint.Path,
				Declaration: edge.EntryPoint.IsDeclaration,
				Reason:      string(edge.Reason),
				SourceFiles: edge.SourceFiles,
			})
		}
		view.Projects = append(view.Projects, pv)
	}

	for _, cycle := range g.Cycles {
		view.Cycles = append(view.Cycles, cycle.Names)
	}
	for _, diamond := range g.Diamonds {
		view.Diamonds = append(view.Diamonds, diamondView{
			Consumer:    diamond.Consumer,
			Dependency:  diamond.Dependency,
			Through:     diamond.Through,
			Kind:        string(diamond.Kind),
			Explanation: diamond.Explanation,
		})
	}
	return view
}
