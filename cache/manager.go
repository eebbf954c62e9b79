package cache

import (
	"github.com/speakeasy-api/csdl/references"
)

// Manager provides centralized cache management for all global caches in the system
type Manager struct{}

// ClearAllCaches clears all global caches in the system.
// This includes:
// - Reference canonicalization cache (references)
// - Parsed document cache (cache)
//
// This function is thread-safe and can be called from multiple goroutines.
func ClearAllCaches() {
	ClearReferenceCache()
	ClearDocumentCache()
}

// ClearReferenceCache clears the global reference canonicalization cache.
// This cache stores DocumentIDs for (raw reference, referencing document) pairs.
func ClearReferenceCache() {
	references.ClearGlobalRefCache()
}

// ClearDocumentCache clears the global parsed document cache.
func ClearDocumentCache() {
	globalDocuments.Clear()
}

// CacheStats holds statistics about all global caches
type CacheStats struct {
	ReferenceCacheSize int64              `yaml:"referenceCacheSize"`
	Documents          DocumentCacheStats `yaml:"documents"`
}

// GetAllCacheStats returns statistics about all global caches in the system
func GetAllCacheStats() CacheStats {
	return CacheStats{
		ReferenceCacheSize: references.GetRefCacheStats().Size,
		Documents:          globalDocuments.GetStats(),
	}
}
