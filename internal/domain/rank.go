package domain

import (
	"cmp"
	"slices"
	"strings"
)

// TopN returns the n entries of data with the largest values, highest first.
// Equal values are ordered by key ascending so repeated runs over the same
// input always agree. n <= 0 or empty data yields an empty slice. data is
// not modified.
func TopN[V cmp.Ordered](data map[string]V, n int) []RankedEntry[V] {
	if n <= 0 || len(data) == 0 {
		return []RankedEntry[V]{}
	}

	entries := make([]RankedEntry[V], 0, len(data))
	for k, v := range data {
		entries = append(entries, RankedEntry[V]{Key: k, Value: v})
	}
	slices.SortFunc(entries, func(a, b RankedEntry[V]) int {
		if c := cmp.Compare(b.Value, a.Value); c != 0 {
			return c
		}
		return strings.Compare(a.Key, b.Key)
	})

	return entries[:min(n, len(entries))]
}

// KeySet collects the keys of a ranking into a membership set.
func KeySet[V any](entries []RankedEntry[V]) map[string]struct{} {
	set := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		set[e.Key] = struct{}{}
	}
	return set
}
