// Package util holds small generic helpers shared across packages.
package util

import (
	"cmp"
	"slices"
)

// SortedKeys returns the keys of a map in sorted order.
func SortedKeys[K cmp.Ordered, V any](m map[K]V) []K {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
