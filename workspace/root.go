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
	"path"

	"bennypowers.dev/lega/config"
	"bennypowers.dev/lega/fs"
	"bennypowers.dev/lega/packagejson"
)

// FindRoot locates the workspace root by walking up from start. A
// directory qualifies when it holds a sync config file, a package.json
// declaring workspaces, or a .git entry, checked in that order at each
// level. When no ancestor qualifies, start itself is returned.
func FindRoot(fsys fs.FileSystem, start string) string {
	dir := start
	for {
		for _, name := range config.FileNames {
			if fsys.Exists(path.Join(dir, name)) {
				return dir
			}
		}
		manifestPath := path.Join(dir, "package.json")
		if fsys.Exists(manifestPath) {
			pkg, err := packagejson.ParseFile(fsys, manifestPath)
			if err == nil && pkg.HasWorkspaces() {
				return dir
			}
		}
		if fsys.Exists(path.Join(dir, ".git")) {
			return dir
		}
		parent := path.Dir(dir)
		if parent == dir {
			return start
		}
		dir = parent
	}
}
