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
package scan

import (
	"fmt"
	iofs "io/fs"
	"path"
	"runtime"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/sync/errgroup"

	"bennypowers.dev/lega/config"
	"bennypowers.dev/lega/fs"
	"bennypowers.dev/lega/workspace"
)

// sourceExtensions are the file extensions handed to the extractor.
var sourceExtensions = map[string]bool{
	".ts":  true,
	".tsx": true,
	".js":  true,
	".jsx": true,
	".mjs": true,
	".cjs": true,
	".mts": true,
	".cts": true,
}

// Detail ties a dependency to the source file that references it.
// SourceFile is relative to the consuming project's root.
type Detail struct {
	Dependency string
	SourceFile string
	TypeOnly   bool
}

// UsageRecord captures which workspace packages one project imports.
// Dependencies and TypeOnlyDependencies are sorted and disjoint: an
// id imported both ways counts as runtime.
type UsageRecord struct {
	Dependencies         []string
	TypeOnlyDependencies []string
	Details              []Detail
}

// All returns the union of runtime and type-only dependency ids, in
// sorted order.
func (r *UsageRecord) All() []string {
	out := make([]string, 0, len(r.Dependencies)+len(r.TypeOnlyDependencies))
	out = append(out, r.Dependencies...)
	out = append(out, r.TypeOnlyDependencies...)
	slices.Sort(out)
	return out
}

// SourceFilesFor returns the files that caused a dependency edge.
// When the dependency is imported both at runtime and type-only,
// runtime provenance wins. Files keep scan order; an empty result
// means the edge came from configured default dependencies.
func (r *UsageRecord) SourceFilesFor(dep string) []string {
	var runtime, typeOnly []string
	for _, d := range r.Details {
		if d.Dependency != dep {
			continue
		}
		if d.TypeOnly {
			typeOnly = append(typeOnly, d.SourceFile)
		} else {
			runtime = append(runtime, d.SourceFile)
		}
	}
	if len(runtime) > 0 {
		return runtime
	}
	return typeOnly
}

// ProjectUsage is the per-project usage map for a whole workspace.
type ProjectUsage struct {
	Usage    map[string]*UsageRecord
	Warnings []string
}

// Scanner walks project sources and aggregates workspace imports.
type Scanner struct {
	fsys   fs.FileSystem
	cfg    *config.Config
	logger workspace.Logger
	jobs   int
}

// New creates a Scanner. The logger may be nil.
func New(fsys fs.FileSystem, cfg *config.Config, logger workspace.Logger) *Scanner {
	return &Scanner{fsys: fsys, cfg: cfg, logger: logger}
}

// WithJobs returns a Scanner that reads up to n files concurrently
// per project. Values <= 0 select runtime.NumCPU().
func (s *Scanner) WithJobs(n int) *Scanner {
	out := *s
	out.jobs = n
	return &out
}

// Scan produces a UsageRecord for every project in the inventory.
// Unreadable files and directories degrade to warnings; the scan
// itself never fails.
func (s *Scanner) Scan(inv *workspace.Inventory) *ProjectUsage {
	usage := &ProjectUsage{Usage: make(map[string]*UsageRecord, inv.Len())}
	names := inv.Names()
	excludes := s.cfg.AllExcludePatterns()

	for _, name := range names {
		project := inv.Projects[name]
		record, warnings := s.scanProject(project, names, excludes)
		usage.Usage[name] = record
		usage.Warnings = append(usage.Warnings, warnings...)
	}
	return usage
}

// fileImports pairs one scanned file with its extracted references.
type fileImports struct {
	file    string
	imports []Import
	warning string
}

func (s *Scanner) scanProject(project *workspace.Project, names, excludes []string) (*UsageRecord, []string) {
	var warnings []string
	warn := func(format string, args ...any) {
		msg := fmt.Sprintf(format, args...)
		warnings = append(warnings, msg)
		if s.logger != nil {
			s.logger.Warning("%s", msg)
		}
	}

	files := s.collectFiles(project, excludes, warn)
	results := make([]fileImports, len(files))

	jobs := s.jobs
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}
	var g errgroup.Group
	g.SetLimit(jobs)
	for i, file := range files {
		g.Go(func() error {
			fullPath := path.Join(project.Root, file)
			data, err := s.fsys.ReadFile(fullPath)
			if err != nil {
				results[i] = fileImports{file: file, warning: fmt.Sprintf("Failed to read %s: %v", fullPath, err)}
				return nil
			}
			results[i] = fileImports{file: file, imports: Extract(data)}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		warn("Failed to scan %s: %v", project.Rel, err)
	}

	record := &UsageRecord{}
	runtimeDeps := make(map[string]bool)
	typeOnlyDeps := make(map[string]bool)
	seenDetail := make(map[Detail]bool)

	for _, result := range results {
		if result.warning != "" {
			warn("%s", result.warning)
			continue
		}
		for _, imp := range result.imports {
			if !isBareSpecifier(imp.Specifier) {
				continue
			}
			if s.cfg.IgnoresImport(imp.Specifier) {
				continue
			}
			id := resolveSpecifier(imp.Specifier, names)
			if id == "" || id == project.Name {
				continue
			}
			if imp.TypeOnly {
				typeOnlyDeps[id] = true
			} else {
				runtimeDeps[id] = true
			}
			detail := Detail{Dependency: id, SourceFile: result.file, TypeOnly: imp.TypeOnly}
			if !seenDetail[detail] {
				seenDetail[detail] = true
				record.Details = append(record.Details, detail)
			}
		}
	}

	for _, id := range s.cfg.DefaultDependencies {
		if id == project.Name || runtimeDeps[id] || typeOnlyDeps[id] {
			continue
		}
		runtimeDeps[id] = true
	}

	for id := range runtimeDeps {
		record.Dependencies = append(record.Dependencies, id)
	}
	for id := range typeOnlyDeps {
		if !runtimeDeps[id] {
			record.TypeOnlyDependencies = append(record.TypeOnlyDependencies, id)
		}
	}
	slices.Sort(record.Dependencies)
	slices.Sort(record.TypeOnlyDependencies)
	return record, warnings
}

// collectFiles walks the project tree and returns root-relative
// source file paths in lexical order. Dependency caches and dot
// directories are pruned; exclude patterns filter individual files.
func (s *Scanner) collectFiles(project *workspace.Project, excludes []string, warn func(string, ...any)) []string {
	var files []string
	err := fs.Walk(s.fsys, project.Root, func(p string, entry iofs.DirEntry) error {
		name := entry.Name()
		if entry.IsDir() {
			if name == "node_modules" || strings.HasPrefix(name, ".") {
				return iofs.SkipDir
			}
			return nil
		}
		if !sourceExtensions[path.Ext(name)] {
			return nil
		}
		rel := strings.TrimPrefix(strings.TrimPrefix(p, project.Root), "/")
		if matchesAny(excludes, rel) {
			return nil
		}
		files = append(files, rel)
		return nil
	})
	if err != nil {
		warn("Failed to walk %s: %v", project.Rel, err)
	}
	return files
}

func matchesAny(patterns []string, rel string) bool {
	for _, pattern := range patterns {
		if ok, err := doublestar.Match(pattern, rel); err == nil && ok {
			return true
		}
	}
	return false
}

// isBareSpecifier reports whether the specifier names a package
// rather than a relative, absolute, or URL reference.
func isBareSpecifier(specifier string) bool {
	if specifier == "" {
		return false
	}
	if strings.HasPrefix(specifier, "./") || strings.HasPrefix(specifier, "../") {
		return false
	}
	if specifier == "." || specifier == ".." {
		return false
	}
	if strings.HasPrefix(specifier, "/") {
		return false
	}
	if strings.Contains(specifier, "://") {
		return false
	}
	return true
}

// resolveSpecifier maps a specifier to a known package id. An exact
// match wins; otherwise the longest id that is a path prefix of the
// specifier, so deep imports like "@scope/pkg/internal" resolve to
// "@scope/pkg". Returns "" when no workspace package matches.
func resolveSpecifier(specifier string, names []string) string {
	best := ""
	for _, name := range names {
		if name == specifier {
			return name
		}
		if strings.HasPrefix(specifier, name+"/") && len(name) > len(best) {
			best = name
		}
	}
	return best
}
