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
// Package pipeline threads the load stages every command shares:
// configuration, project discovery, source scanning, and graph
// resolution.
package pipeline

import (
	"fmt"

	"bennypowers.dev/lega/config"
	"bennypowers.dev/lega/fs"
	"bennypowers.dev/lega/resolve"
	"bennypowers.dev/lega/scan"
	"bennypowers.dev/lega/workspace"
)

// Run holds the outputs of one pipeline pass over a workspace.
type Run struct {
	Config    *config.Config
	Inventory *workspace.Inventory
	Usage     *scan.ProjectUsage
	Graph     *resolve.Graph
}

// Load runs the full pipeline for the workspace at root. jobs bounds
// per-project scan concurrency; values <= 0 select a default. The
// logger may be nil.
func Load(fsys fs.FileSystem, root string, jobs int, logger workspace.Logger) (*Run, error) {
	cfg, err := config.Load(fsys, root)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	inv, err := workspace.Discover(fsys, root, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("discovering projects: %w", err)
	}
	usage := scan.New(fsys, cfg, logger).WithJobs(jobs).Scan(inv)
	graph := resolve.NewBuilder(fsys, cfg, logger).Build(inv, usage)

	return &Run{
		Config:    cfg,
		Inventory: inv,
		Usage:     usage,
		Graph:     graph,
	}, nil
}
