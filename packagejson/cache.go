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
package packagejson

import "sync"

// Cache deduplicates manifest parsing within a run. Discovery and
// reconciliation both read the same package.json files; sharing a
// cache keeps each file's parse to a single read.
type Cache struct {
	mu      sync.RWMutex
	cache   map[string]*PackageJSON
	loading sync.Map // map[string]*cacheEntry for in-flight loads
}

// cacheEntry holds a cached value and coordinates concurrent loading.
type cacheEntry struct {
	pkg  *PackageJSON
	err  error
	once sync.Once
}

// NewCache creates a manifest cache.
func NewCache() *Cache {
	return &Cache{
		cache: make(map[string]*PackageJSON),
	}
}

// Get retrieves a cached manifest by its file path.
func (c *Cache) Get(path string) (*PackageJSON, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	pkg, ok := c.cache[path]
	return pkg, ok
}

// Invalidate removes a cached entry and any in-flight loading state.
func (c *Cache) Invalidate(path string) {
	c.mu.Lock()
	delete(c.cache, path)
	c.mu.Unlock()
	c.loading.Delete(path)
}

// GetOrLoad atomically retrieves from cache or loads using the
// provided function. Only one goroutine executes the loader for a
// given path; others wait for its result.
func (c *Cache) GetOrLoad(path string, loader func() (*PackageJSON, error)) (*PackageJSON, error) {
	c.mu.RLock()
	if pkg, ok := c.cache[path]; ok {
		c.mu.RUnlock()
		return pkg, nil
	}
	c.mu.RUnlock()

	// All concurrent callers share one entry per path.
	actual, _ := c.loading.LoadOrStore(path, &cacheEntry{})
	entry := actual.(*cacheEntry)

	entry.once.Do(func() {
		entry.pkg, entry.err = loader()
		if entry.err == nil {
			c.mu.Lock()
			c.cache[path] = entry.pkg
			c.mu.Unlock()
		}
	})

	// Entries stay in c.loading until Invalidate: deleting here would
	// race with concurrent LoadOrStore calls, and entries are small.

	return entry.pkg, entry.err
}
