package references

import (
	"sync"
)

// RefCacheKey represents a unique key for caching canonicalization results
type RefCacheKey struct {
	Raw  string
	Base DocumentID
}

// RefCache provides a thread-safe cache for canonicalization results
type RefCache struct {
	cache sync.Map // map[RefCacheKey]DocumentID
}

// Global reference canonicalization cache instance
var globalRefCache = &RefCache{}

// Resolve canonicalizes a raw reference using the cache. If the (raw, base) pair has been
// resolved before the cached DocumentID is returned.
func (c *RefCache) Resolve(raw string, base DocumentID) (DocumentID, error) {
	key := RefCacheKey{
		Raw:  raw,
		Base: base,
	}

	if cached, ok := c.cache.Load(key); ok {
		return cached.(DocumentID), nil
	}

	id, err := canonicalizeUncached(raw, base)
	if err != nil {
		return "", err
	}

	c.cache.Store(key, id)

	return id, nil
}

// Clear clears all cached resolutions. Useful for testing or memory management.
func (c *RefCache) Clear() {
	c.cache.Range(func(key, value interface{}) bool {
		c.cache.Delete(key)
		return true
	})
}

// RefCacheStats holds basic statistics about the cache
type RefCacheStats struct {
	Size int64
}

// GetStats returns statistics about the cache
func (c *RefCache) GetStats() RefCacheStats {
	var size int64
	c.cache.Range(func(key, value interface{}) bool {
		size++
		return true
	})
	return RefCacheStats{Size: size}
}

// GetRefCacheStats returns statistics about the global reference cache
func GetRefCacheStats() RefCacheStats {
	return globalRefCache.GetStats()
}

// ClearGlobalRefCache clears the global reference cache
func ClearGlobalRefCache() {
	globalRefCache.Clear()
}
