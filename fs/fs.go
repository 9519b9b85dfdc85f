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

// Package fs provides filesystem abstractions for lega.
package fs

import (
	"io/fs"
	"os"
	"path"
)

// FileSystem provides an abstraction over filesystem operations.
// Every component that touches disk goes through this interface so
// tests can run against an in-memory implementation.
type FileSystem interface {
	// File operations
	WriteFile(name string, data []byte, perm fs.FileMode) error
	ReadFile(name string) ([]byte, error)
	Remove(name string) error

	// Directory operations
	ReadDir(name string) ([]fs.DirEntry, error)
	Exists(path string) bool
}

// WalkFunc is called once per file during Walk. Returning
// fs.SkipDir from a directory visit skips that directory's contents.
type WalkFunc func(path string, entry fs.DirEntry) error

// Walk traverses the tree rooted at root in lexical order.
// Directories are visited before their contents. Unreadable
// directories are surfaced through the callback's error return;
// the walk itself is deterministic because ReadDir sorts entries.
func Walk(fsys FileSystem, root string, fn WalkFunc) error {
	entries, err := fsys.ReadDir(root)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		child := path.Join(root, entry.Name())
		if err := fn(child, entry); err != nil {
			if entry.IsDir() && err == fs.SkipDir {
				continue
			}
			return err
		}
		if entry.IsDir() {
			if err := Walk(fsys, child, fn); err != nil {
				return err
			}
		}
	}
	return nil
}

// OSFileSystem implements FileSystem using the standard os package.
type OSFileSystem struct{}

// NewOSFileSystem creates a new filesystem that uses the standard os package.
func NewOSFileSystem() *OSFileSystem {
	return &OSFileSystem{}
}

func (f *OSFileSystem) WriteFile(name string, data []byte, perm fs.FileMode) error {
	return os.WriteFile(name, data, perm)
}

func (f *OSFileSystem) ReadFile(name string) ([]byte, error) {
	return os.ReadFile(name)
}

func (f *OSFileSystem) Remove(name string) error {
	return os.Remove(name)
}

func (f *OSFileSystem) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func (f *OSFileSystem) ReadDir(name string) ([]fs.DirEntry, error) {
	return os.ReadDir(name)
}
