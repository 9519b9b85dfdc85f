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
// Package config loads and validates workspace sync configuration.
package config

import (
	"bytes"
	"fmt"
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/viper"

	"bennypowers.dev/lega/fs"
	"bennypowers.dev/lega/jsondoc"
)

// FileNames are the config files searched for at the workspace root,
// in order. Root detection looks for the same names.
var FileNames = []string{"lega.yaml", "lega.yml", "lega.json", ".lega.yaml"}

// DefaultExcludePatterns are always skipped during source scanning:
// build output, dependency caches, generated code, and test files.
var DefaultExcludePatterns = []string{
	"**/node_modules/**",
	"**/dist/**",
	"**/build/**",
	"**/out/**",
	"**/coverage/**",
	"**/.turbo/**",
	"**/.next/**",
	"**/generated/**",
	"**/__generated__/**",
	"**/__tests__/**",
	"**/__mocks__/**",
	"**/*.test.*",
	"**/*.spec.*",
	"**/*.stories.*",
}

var (
	defaultUIHints   = []string{"ui", "components", "web"}
	defaultDataHints = []string{"db", "data", "store"}
)

// Config controls discovery, scanning, graph analysis, and manifest
// synthesis for one workspace.
type Config struct {
	// Apps and Packages are glob patterns (relative to the workspace
	// root) locating application and shared-package project
	// directories.
	Apps     []string `mapstructure:"apps"`
	Packages []string `mapstructure:"packages"`

	// DefaultDependencies are package ids every project depends on
	// even without importing them (e.g. a shared tsconfig package).
	DefaultDependencies []string `mapstructure:"defaultDependencies"`

	// IgnoreProjects mutes reconciliation for the named projects.
	IgnoreProjects []string `mapstructure:"ignoreProjects"`

	// IgnoreImports skips matching specifiers during scanning: exact
	// names, names with any subpath, or *-glob patterns.
	IgnoreImports []string `mapstructure:"ignoreImports"`

	// ExcludePatterns extend DefaultExcludePatterns.
	ExcludePatterns []string `mapstructure:"excludePatterns"`

	// UniversalUtilities are package ids expected to be reached both
	// directly and transitively (loggers, assertion helpers).
	UniversalUtilities []string `mapstructure:"universalUtilities"`

	// UIHints and DataHints feed the diamond layering classification:
	// a consumer whose id contains a UI hint depending transitively on
	// a package whose id contains a data hint is flagged as a layering
	// violation candidate.
	UIHints   []string `mapstructure:"uiHints"`
	DataHints []string `mapstructure:"dataHints"`

	// Types are workspace-type templates applied during synthesis.
	Types []TypeConfig `mapstructure:"types"`
}

// TypeConfig is a workspace-type template. Projects whose relative
// path matches one of the Match globs get the templates merged into
// their manifest and reference config.
type TypeConfig struct {
	Name        string         `mapstructure:"name"`
	Match       []string       `mapstructure:"match"`
	PackageJSON map[string]any `mapstructure:"packageJson"`
	TSConfig    map[string]any `mapstructure:"tsconfig"`
}

// Default returns a config holding only the built-in defaults.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads the workspace config file from root. A missing file
// yields the defaults, not an error; an unreadable or invalid file is
// an error.
func Load(fsys fs.FileSystem, root string) (*Config, error) {
	for _, name := range FileNames {
		configPath := path.Join(root, name)
		if !fsys.Exists(configPath) {
			continue
		}
		data, err := fsys.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", configPath, err)
		}
		cfg, err := parse(data, strings.TrimPrefix(path.Ext(name), "."))
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", configPath, err)
		}
		return cfg, nil
	}
	return Default(), nil
}

func parse(data []byte, format string) (*Config, error) {
	v := viper.New()
	v.SetConfigType(format)
	if err := v.ReadConfig(bytes.NewReader(data)); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	for i := range cfg.Types {
		tc := &cfg.Types[i]
		if tc.Name == "" {
			return nil, fmt.Errorf("types[%d]: missing name", i)
		}
		if _, err := tc.ManifestTemplate(); err != nil {
			return nil, fmt.Errorf("type %q: packageJson template: %w", tc.Name, err)
		}
		if _, err := tc.ReferenceTemplate(); err != nil {
			return nil, fmt.Errorf("type %q: tsconfig template: %w", tc.Name, err)
		}
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.UIHints == nil {
		c.UIHints = defaultUIHints
	}
	if c.DataHints == nil {
		c.DataHints = defaultDataHints
	}
}

// AllExcludePatterns returns the built-in exclude patterns followed
// by the configured ones.
func (c *Config) AllExcludePatterns() []string {
	out := make([]string, 0, len(DefaultExcludePatterns)+len(c.ExcludePatterns))
	out = append(out, DefaultExcludePatterns...)
	out = append(out, c.ExcludePatterns...)
	return out
}

// IgnoresProject reports whether a project id is on the ignore list.
func (c *Config) IgnoresProject(id string) bool {
	for _, ignored := range c.IgnoreProjects {
		if ignored == id {
			return true
		}
	}
	return false
}

// IgnoresImport reports whether a specifier matches the import ignore
// list. A pattern matches its exact name, the name followed by any
// subpath, or as a *-glob.
func (c *Config) IgnoresImport(specifier string) bool {
	for _, pattern := range c.IgnoreImports {
		if pattern == specifier {
			return true
		}
		if strings.HasPrefix(specifier, pattern+"/") {
			return true
		}
		if strings.Contains(pattern, "*") {
			if ok, err := doublestar.Match(pattern, specifier); err == nil && ok {
				return true
			}
		}
	}
	return false
}

// IsUniversalUtility reports whether a package id is allowlisted for
// diamond classification.
func (c *Config) IsUniversalUtility(id string) bool {
	for _, util := range c.UniversalUtilities {
		if util == id {
			return true
		}
	}
	return false
}

// TypeFor returns the first workspace-type config whose Match globs
// cover the project's workspace-relative path, or nil.
func (c *Config) TypeFor(rel string) *TypeConfig {
	for i := range c.Types {
		for _, pattern := range c.Types[i].Match {
			if ok, err := doublestar.Match(pattern, rel); err == nil && ok {
				return &c.Types[i]
			}
		}
	}
	return nil
}

// ManifestTemplate returns the packageJson template as a document
// value, or nil when the type declares none.
func (tc *TypeConfig) ManifestTemplate() (*jsondoc.Value, error) {
	if tc == nil || tc.PackageJSON == nil {
		return nil, nil
	}
	return jsondoc.FromAny(tc.PackageJSON)
}

// ReferenceTemplate returns the tsconfig template as a document
// value, or nil when the type declares none.
func (tc *TypeConfig) ReferenceTemplate() (*jsondoc.Value, error) {
	if tc == nil || tc.TSConfig == nil {
		return nil, nil
	}
	return jsondoc.FromAny(tc.TSConfig)
}
