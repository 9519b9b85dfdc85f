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
// Package workspace models the projects that make up a monorepo and
// discovers them from configured glob patterns.
package workspace

import (
	"errors"
	"fmt"
	"maps"
	"path"
	"slices"

	"bennypowers.dev/lega/config"
	"bennypowers.dev/lega/packagejson"
)

// ErrDuplicateProject indicates two project directories declare the
// same manifest name. Names are the graph's node ids, so this is
// fatal at discovery time.
var ErrDuplicateProject = errors.New("duplicate project name")

// ErrNoWorkspace indicates no project patterns could be found: the
// config declares no apps or packages globs and the root manifest has
// no workspaces field.
var ErrNoWorkspace = errors.New("no workspace patterns found")

// Category classifies a project's architectural role within the
// workspace. Shared packages must never depend on apps.
type Category string

const (
	CategoryApp     Category = "app"
	CategoryShared  Category = "shared-package"
	CategoryUnknown Category = "unknown"
)

// Logger is an interface for reporting progress and problems during a
// run. A nil Logger is valid everywhere one is accepted.
type Logger interface {
	Warning(format string, args ...any)
	Debug(format string, args ...any)
}

// Project is one discovered package in the workspace.
type Project struct {
	Name         string                   // manifest name, unique across the workspace
	Root         string                   // path to the project directory
	Rel          string                   // slash-separated path relative to the workspace root
	Manifest     *packagejson.PackageJSON // parsed package.json
	TSConfigPath string                   // path to tsconfig.json, empty when absent
	Category     Category
	Type         *config.TypeConfig // matched workspace-type config, may be nil
	Private      bool
}

// ManifestPath returns the path to the project's package.json.
func (p *Project) ManifestPath() string {
	return path.Join(p.Root, "package.json")
}

// Dir returns the final segment of the project directory, the value
// substituted for {{projectDir}} placeholders in templates.
func (p *Project) Dir() string {
	return path.Base(p.Root)
}

// Inventory is the set of discovered projects, keyed by name, plus
// any warnings accumulated while discovering them.
type Inventory struct {
	Projects map[string]*Project
	Warnings []string
}

// NewInventory creates an empty inventory.
func NewInventory() *Inventory {
	return &Inventory{Projects: make(map[string]*Project)}
}

// Add registers a project. Adding a second project with an
// already-registered name returns ErrDuplicateProject.
func (inv *Inventory) Add(p *Project) error {
	if existing, ok := inv.Projects[p.Name]; ok {
		return fmt.Errorf("%w: %q declared at both %s and %s",
			ErrDuplicateProject, p.Name, existing.Rel, p.Rel)
	}
	inv.Projects[p.Name] = p
	return nil
}

// Get looks up a project by name.
func (inv *Inventory) Get(name string) (*Project, bool) {
	p, ok := inv.Projects[name]
	return p, ok
}

// Names returns all project names in sorted order. Iterating the
// inventory through Names keeps every downstream stage deterministic.
func (inv *Inventory) Names() []string {
	return slices.Sorted(maps.Keys(inv.Projects))
}

// Len returns the number of discovered projects.
func (inv *Inventory) Len() int {
	return len(inv.Projects)
}
