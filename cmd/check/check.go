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

// Package check provides the check command for lega.
package check

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"bennypowers.dev/lega/fs"
	"bennypowers.dev/lega/internal/pipeline"
	"bennypowers.dev/lega/internal/report"
	"bennypowers.dev/lega/reconcile"
	"bennypowers.dev/lega/workspace"
)

// Cmd is the check cobra command. It runs the same pipeline as sync
// but never writes, and fails when the workspace is out of sync.
var Cmd = &cobra.Command{
	Use:   "check [root]",
	Short: "Verify workspace manifests match source imports",
	Long: `Run the sync pipeline without writing anything and exit non-zero when
any manifest would change, stale entries exist, or the graph contains
dependency cycles. Intended for CI.`,
	Example: `  # Check the workspace containing the current directory
  lega check

  # Check a specific workspace, tolerating cycles
  lega check ../monorepo --allow-cycles`,
	Args: cobra.MaximumNArgs(1),
	RunE: run,
}

func init() {
	Cmd.Flags().Bool("allow-cycles", false, "Do not fail when the graph contains dependency cycles")
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

	jobs, _ := cmd.Flags().GetInt("jobs")
	allowCycles, _ := cmd.Flags().GetBool("allow-cycles")
	reporter := report.New(cmd.OutOrStdout(), cmd.ErrOrStderr(), viper.GetBool("verbose"))

	pipe, err := pipeline.Load(osfs, root, jobs, reporter)
	if err != nil {
		return err
	}

	result, err := reconcile.New(osfs, pipe.Config, reporter).WithDryRun(true).Reconcile(pipe.Inventory, pipe.Graph)
	if err != nil {
		return err
	}

	reporter.Summary(pipe.Graph, result, true)
	reporter.Diffs(result)

	var problems []string
	if n := len(result.Updated); n > 0 {
		problems = append(problems, fmt.Sprintf("%d projects out of sync", n))
	}
	if n := len(result.Stale); n > 0 {
		problems = append(problems, fmt.Sprintf("stale entries in %d projects", n))
	}
	if n := len(pipe.Graph.Cycles); n > 0 && !allowCycles {
		problems = append(problems, fmt.Sprintf("%d dependency cycles", n))
	}
	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}
