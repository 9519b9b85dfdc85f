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

// Package report provides the CLI's logging and summary surface.
// Library packages log through the small workspace.Logger interface;
// this package backs it with charmbracelet/log and renders the
// post-run summary with lipgloss.
package report

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"bennypowers.dev/lega/reconcile"
	"bennypowers.dev/lega/resolve"
	"bennypowers.dev/lega/workspace"
)

var (
	colorTeal  = lipgloss.Color("36")
	colorGreen = lipgloss.Color("35")
	colorAmber = lipgloss.Color("220")
	colorWhite = lipgloss.Color("255")
	colorDim   = lipgloss.Color("240")
)

var (
	styleSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleWarning = lipgloss.NewStyle().Foreground(colorAmber)
	styleCount   = lipgloss.NewStyle().Foreground(colorTeal)
	styleValue   = lipgloss.NewStyle().Foreground(colorWhite)
	styleDim     = lipgloss.NewStyle().Foreground(colorDim)
)

const (
	iconSuccess = "✓"
	iconWarning = "!"
	iconArrow   = "→"
)

// Reporter writes the human-facing summary to out and structured log
// lines to the error stream.
type Reporter struct {
	out    io.Writer
	logger *log.Logger
}

var _ workspace.Logger = (*Reporter)(nil)

// New creates a Reporter. Verbose lowers the log level to debug;
// otherwise only warnings surface.
func New(out, errOut io.Writer, verbose bool) *Reporter {
	level := log.WarnLevel
	if verbose {
		level = log.DebugLevel
	}
	return &Reporter{
		out: out,
		logger: log.NewWithOptions(errOut, log.Options{
			ReportTimestamp: true,
			TimeFormat:      "15:04:05.00",
			Level:           level,
		}),
	}
}

// Warning implements workspace.Logger.
func (r *Reporter) Warning(format string, args ...any) {
	r.logger.Warnf(format, args...)
}

// Debug implements workspace.Logger.
func (r *Reporter) Debug(format string, args ...any) {
	r.logger.Debugf(format, args...)
}

// Summary renders the post-run report: project and edge counts, write
// activity, stale findings, and structural notices.
func (r *Reporter) Summary(graph *resolve.Graph, result *reconcile.Result, dryRun bool) {
	edges := 0
	for _, node := range graph.Nodes {
		edges += len(node.Dependencies)
	}
	fmt.Fprintln(r.out, styleSuccess.Render(iconSuccess)+" "+
		styleCount.Render(fmt.Sprintf("%d", len(graph.Nodes)))+" projects"+
		styleDim.Render(" · ")+
		styleCount.Render(fmt.Sprintf("%d", edges))+" edges")

	switch {
	case len(result.Updated) == 0:
		fmt.Fprintln(r.out, "  "+styleDim.Render("everything in sync"))
	case dryRun:
		fmt.Fprintln(r.out, "  would update "+styleValue.Render(strings.Join(result.Updated, ", ")))
	default:
		fmt.Fprintf(r.out, "  wrote %s files: %s\n",
			styleCount.Render(fmt.Sprintf("%d", result.FilesWritten)),
			styleValue.Render(strings.Join(result.Updated, ", ")))
	}

	for _, id := range slices.Sorted(maps.Keys(result.Stale)) {
		stale := result.Stale[id]
		var parts []string
		if len(stale.PackageJSONDeps) > 0 {
			parts = append(parts, "package.json: "+strings.Join(stale.PackageJSONDeps, ", "))
		}
		if len(stale.TSConfigPaths) > 0 {
			parts = append(parts, "paths: "+strings.Join(stale.TSConfigPaths, ", "))
		}
		if len(stale.TSConfigRefs) > 0 {
			parts = append(parts, "references: "+strings.Join(stale.TSConfigRefs, ", "))
		}
		fmt.Fprintln(r.out, styleWarning.Render(iconWarning)+" stale in "+
			styleValue.Render(id)+styleDim.Render(" ("+strings.Join(parts, "; ")+")"))
	}

	for _, cycle := range graph.Cycles {
		fmt.Fprintln(r.out, styleWarning.Render(iconWarning)+" dependency cycle: "+
			styleValue.Render(strings.Join(cycle.Names, " "+iconArrow+" ")))
	}
	for _, d := range graph.Diamonds {
		fmt.Fprintln(r.out, styleWarning.Render(iconWarning)+" diamond: "+
			styleValue.Render(d.Consumer+" "+iconArrow+" "+d.Dependency)+
			" through "+styleValue.Render(strings.Join(d.Through, ", "))+
			styleDim.Render(" ("+string(d.Kind)+")"))
	}

	if warnings := len(graph.Warnings) + len(result.Warnings); warnings > 0 {
		fmt.Fprintln(r.out, "  "+styleDim.Render(fmt.Sprintf("%d warnings", warnings)))
	}
}

// Diffs prints the dry-run diffs in path order.
func (r *Reporter) Diffs(result *reconcile.Result) {
	for _, path := range slices.Sorted(maps.Keys(result.Diffs)) {
		fmt.Fprint(r.out, result.Diffs[path])
	}
}
