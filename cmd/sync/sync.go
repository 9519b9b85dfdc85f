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

// Package sync provides the sync command for lega.
package sync

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"bennypowers.dev/lega/fs"
	"bennypowers.dev/lega/internal/pipeline"
	"bennypowers.dev/lega/internal/report"
	"bennypowers.dev/lega/reconcile"
	"bennypowers.dev/lega/workspace"
)

// Cmd is the sync cobra command that rewrites workspace manifests to
// match the resolved dependency graph.
var Cmd = &cobra.Command{
	Use:   "sync [root]",
	Short: "Synchronize workspace manifests with source imports",
	Long: `Scan workspace sources, resolve the dependency graph, and rewrite each
project's package.json dependencies and tsconfig.json paths and
references to match what the sources actually import.

Without a root argument the workspace root is located by walking up
from the current directory.`,
	Example: `  # Sync the workspace containing the current directory
  lega sync

  # Preview changes without writing
  lega sync --dry-run

  # Sync a specific workspace
  lega sync ../monorepo

  # Sync even when the graph contains dependency cycles
  lega sync --allow-cycles`,
	Args: cobra.MaximumNArgs(1),
	RunE: run,
}

func init() {
	Cmd.Flags().BoolP("dry-run", "n", false, "Show planned changes without writing files")
	Cmd.Flags().Bool("allow-cycles", false, "Do not fail when the graph contains dependency cycles")
	Cmd.Flags().IntP("jobs", "j", 0, "Concurrent file reads per project (default: number of CPUs)")

	_ = viper.BindPFlag("dry-run", Cmd.Flags().Lookup("dry-run"))
	_ = viper.BindPFlag("allow-cycles", Cmd.Flags().Lookup("allow-cycles"))
	_ = viper.BindPFlag("jobs", Cmd.Flags().Lookup("jobs"))
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

	dryRun := viper.GetBool("dry-run")
	reporter := report.New(cmd.OutOrStdout(), cmd.ErrOrStderr(), viper.GetBool("verbose"))

	pipe, err := pipeline.Load(osfs, root, viper.GetInt("jobs"), reporter)
	if err != nil {
		return err
	}

	// Refuse to rewrite manifests from a cyclic graph unless asked to.
	if cycles := len(pipe.Graph.Cycles); cycles > 0 && !viper.GetBool("allow-cycles") {
		reporter.Summary(pipe.Graph, &reconcile.Result{}, dryRun)
		return fmt.Errorf("dependency cycles found (%d); rerun with --allow-cycles to sync anyway", cycles)
	}

	result, err := reconcile.New(osfs, pipe.Config, reporter).WithDryRun(dryRun).Reconcile(pipe.Inventory, pipe.Graph)
	if err != nil {
		return err
	}

	reporter.Summary(pipe.Graph, result, dryRun)
	if dryRun {
		reporter.Diffs(result)
	}
	return nil
}
