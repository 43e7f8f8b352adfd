package utils

import (
	"slices"
	"time"
)

// SortedKeys returns the keys of m ordered by cmp.
func SortedKeys[K comparable, V any](m map[K]V, cmp func(a, b K) int) []K {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, cmp)
	return keys
}

// SortByTime orders items oldest first, keeping the input order of equal
// timestamps.
func SortByTime[T any](items []T, at func(T) time.Time) {
	slices.SortStableFunc(items, func(a, b T) int {
		return at(a).Compare(at(b))
	})
}
