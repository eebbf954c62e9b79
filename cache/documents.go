package cache

import (
	"sync"
	"sync/atomic"

	"github.com/speakeasy-api/csdl/csdl"
	"github.com/speakeasy-api/csdl/references"
	"golang.org/x/sync/singleflight"
)

// Entry is a parsed document. Entries are written once and never mutated.
type Entry struct {
	ID         references.DocumentID
	References []references.Reference
	Schemas    []*csdl.Schema
}

// Namespaces returns the namespaces the document declares, in declaration order.
func (e *Entry) Namespaces() []string {
	namespaces := make([]string, 0, len(e.Schemas))
	for _, s := range e.Schemas {
		namespaces = append(namespaces, s.Namespace)
	}
	return namespaces
}

// Documents is a thread-safe cache of parsed documents keyed by DocumentID.
// Concurrent first loads of the same document share a single load.
type Documents struct {
	entries sync.Map // map[references.DocumentID]*Entry
	group   singleflight.Group
	hits    atomic.Int64
	misses  atomic.Int64
}

// Global document cache instance, used when no cache is injected.
var globalDocuments = NewDocuments()

// NewDocuments creates an empty document cache.
func NewDocuments() *Documents {
	return &Documents{}
}

// DefaultDocuments returns the process wide document cache.
func DefaultDocuments() *Documents {
	return globalDocuments
}

// Get returns the cached entry for the document.
func (d *Documents) Get(id references.DocumentID) (*Entry, bool) {
	v, ok := d.entries.Load(id)
	if !ok {
		return nil, false
	}
	return v.(*Entry), true
}

// GetOrLoad returns the cached entry for the document, calling load at most once per
// document across concurrent callers. hit reports whether the entry came from the cache.
// Failed loads are not cached.
func (d *Documents) GetOrLoad(id references.DocumentID, load func() (*Entry, error)) (entry *Entry, hit bool, err error) {
	if entry, ok := d.Get(id); ok {
		d.hits.Add(1)
		return entry, true, nil
	}

	loaded := false
	v, err, _ := d.group.Do(string(id), func() (interface{}, error) {
		if entry, ok := d.Get(id); ok {
			return entry, nil
		}

		loaded = true
		entry, err := load()
		if err != nil {
			return nil, err
		}
		d.entries.Store(id, entry)
		return entry, nil
	})
	if err != nil {
		return nil, false, err
	}

	if loaded {
		d.misses.Add(1)
	} else {
		d.hits.Add(1)
	}

	return v.(*Entry), !loaded, nil
}

// Clear removes every entry and resets the counters.
func (d *Documents) Clear() {
	d.entries.Range(func(key, value interface{}) bool {
		d.entries.Delete(key)
		return true
	})
	d.hits.Store(0)
	d.misses.Store(0)
}

// DocumentCacheStats holds statistics about a document cache.
type DocumentCacheStats struct {
	Hits   int64 `yaml:"hits"`
	Misses int64 `yaml:"misses"`
	Size   int64 `yaml:"size"`
}

// GetStats returns statistics about the cache.
func (d *Documents) GetStats() DocumentCacheStats {
	var size int64
	d.entries.Range(func(key, value interface{}) bool {
		size++
		return true
	})
	return DocumentCacheStats{
		Hits:   d.hits.Load(),
		Misses: d.misses.Load(),
		Size:   size,
	}
}
