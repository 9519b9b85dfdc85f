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
package workspace

import (
	"fmt"
	iofs "io/fs"
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"bennypowers.dev/lega/config"
	"bennypowers.dev/lega/fs"
	"bennypowers.dev/lega/packagejson"
	"bennypowers.dev/lega/tsconfig"
)

// Discover walks the workspace rooted at root and builds the project
// inventory. Project directories are located by matching their
// root-relative paths against the config's apps globs (category app),
// then its packages globs (category shared-package), then any
// workspaces patterns from the root package.json (category unknown).
// A directory qualifies when it contains a package.json declaring a
// name. Unreadable or unnamed manifests are recorded as warnings and
// skipped; duplicate names abort discovery with ErrDuplicateProject.
func Discover(fsys fs.FileSystem, root string, cfg *config.Config, logger Logger) (*Inventory, error) {
	inv := NewInventory()
	cache := packagejson.NewCache()

	warn := func(format string, args ...any) {
		msg := fmt.Sprintf(format, args...)
		inv.Warnings = append(inv.Warnings, msg)
		if logger != nil {
			logger.Warning("%s", msg)
		}
	}

	var wsPatterns []string
	rootManifest := path.Join(root, "package.json")
	if fsys.Exists(rootManifest) {
		pkg, err := cache.GetOrLoad(rootManifest, func() (*packagejson.PackageJSON, error) {
			return packagejson.ParseFile(fsys, rootManifest)
		})
		if err != nil {
			warn("Failed to read %s: %v", rootManifest, err)
		} else {
			wsPatterns = pkg.WorkspacePatterns()
		}
	}

	if len(cfg.Apps)+len(cfg.Packages)+len(wsPatterns) == 0 {
		return nil, fmt.Errorf("%s: %w", root, ErrNoWorkspace)
	}

	err := fs.Walk(fsys, root, func(dir string, entry iofs.DirEntry) error {
		if !entry.IsDir() {
			return nil
		}
		name := entry.Name()
		if name == "node_modules" || strings.HasPrefix(name, ".") {
			return iofs.SkipDir
		}

		manifestPath := path.Join(dir, "package.json")
		if !fsys.Exists(manifestPath) {
			return nil
		}
		rel := relPath(root, dir)
		category, ok := categorize(rel, cfg.Apps, cfg.Packages, wsPatterns)
		if !ok {
			return nil
		}

		pkg, err := cache.GetOrLoad(manifestPath, func() (*packagejson.PackageJSON, error) {
			return packagejson.ParseFile(fsys, manifestPath)
		})
		if err != nil {
			warn("Failed to read %s: %v", manifestPath, err)
			return nil
		}
		if pkg.Name == "" {
			warn("Package at %s has no name", rel)
			return nil
		}

		project := &Project{
			Name:     pkg.Name,
			Root:     dir,
			Rel:      rel,
			Manifest: pkg,
			Category: category,
			Type:     cfg.TypeFor(rel),
			Private:  pkg.Private,
		}
		if configPath := path.Join(dir, tsconfig.FileName); fsys.Exists(configPath) {
			project.TSConfigPath = configPath
		}
		if err := inv.Add(project); err != nil {
			return err
		}
		if logger != nil {
			logger.Debug("discovered %s (%s) at %s", pkg.Name, category, rel)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return inv, nil
}

func categorize(rel string, apps, packages, workspaces []string) (Category, bool) {
	switch {
	case matchAny(apps, rel):
		return CategoryApp, true
	case matchAny(packages, rel):
		return CategoryShared, true
	case matchAny(workspaces, rel):
		return CategoryUnknown, true
	}
	return "", false
}

// matchAny reports whether rel matches at least one pattern. Patterns
// are doublestar globs; a trailing slash is tolerated.
func matchAny(patterns []string, rel string) bool {
	for _, pattern := range patterns {
		pattern = strings.TrimSuffix(pattern, "/")
		if pattern == rel {
			return true
		}
		if ok, err := doublestar.Match(pattern, rel); err == nil && ok {
			return true
		}
	}
	return false
}

// relPath strips the workspace root from a walked path. Walk builds
// paths with path.Join(root, ...), so plain prefix trimming is exact.
func relPath(root, target string) string {
	if root == "" || root == "." {
		return target
	}
	rel := strings.TrimPrefix(target, root)
	return strings.TrimPrefix(rel, "/")
}
