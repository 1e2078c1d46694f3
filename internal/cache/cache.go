// Package cache implements the content-addressed AST Cache: entries are
// keyed by (uri, content hash); invalidating a URI evicts every artifact
// for it. The entries live in one map mutated in place under a
// sync.RWMutex: writes take the exclusive lock and reads the shared one,
// so concurrent reads never observe a partial update.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"

	"github.com/albertocavalcante/groovy-lsp-sub001/internal/diag"
	"github.com/albertocavalcante/groovy-lsp-sub001/internal/groovy/ast"
)

// Key identifies one cached compilation artifact.
type Key struct {
	URI  string
	Hash string
}

// Entry is everything cached for one (uri, content-hash) pair.
type Entry struct {
	Module      *ast.Module
	Diagnostics []diag.Diagnostic
}

// Hash returns the content-addressing hash for content, used to build a
// Key.
func Hash(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}

// Cache is safe for concurrent reads and writes.
type Cache struct {
	mu   sync.RWMutex
	data map[Key]Entry
}

// New returns an empty Cache.
func New() *Cache {
	return &Cache{data: make(map[Key]Entry)}
}

// Get returns the cached Entry for key, or (Entry{}, false) on miss. A
// lookup with a different content hash than what was stored is a miss by
// construction, since the hash is part of the Key.
func (c *Cache) Get(key Key) (Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.data[key]
	return e, ok
}

// Put stores entry under key, replacing any existing entry for the same
// URI regardless of its hash (an old revision's artifacts are never kept
// alongside a new one).
func (c *Cache) Put(key Key, entry Entry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.data {
		if k.URI == key.URI && k != key {
			delete(c.data, k)
		}
	}
	c.data[key] = entry
}

// Invalidate evicts every artifact cached for uri.
func (c *Cache) Invalidate(uri string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.data {
		if k.URI == uri {
			delete(c.data, k)
		}
	}
}
