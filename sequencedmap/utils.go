package sequencedmap

import "iter"

// Len returns the number of elements in the map. nil safe.
func Len[K comparable, V any](m *Map[K, V]) int {
	if m == nil {
		return 0
	}
	return len(m.l)
}

// From creates a new map from the given sequence.
func From[K comparable, V any](seq iter.Seq2[K, V]) *Map[K, V] {
	newMap := New[K, V]()

	for k, v := range seq {
		newMap.Set(k, v)
	}

	return newMap
}

// KeySet returns the keys of the map as a set.
func KeySet[K comparable, V any](m *Map[K, V]) map[K]struct{} {
	set := make(map[K]struct{}, Len(m))
	for k := range m.Keys() {
		set[k] = struct{}{}
	}
	return set
}
