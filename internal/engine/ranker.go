package engine

import (
	"cmp"
	"slices"
)

// TopN orders groups by metric, highest first, and keeps at most n of them.
// Ties keep first-seen order. n <= 0 keeps every group.
func TopN[K comparable, A any](g *Groups[K, A], metric func(A) float64, n int) []Entry[K, A] {
	return Top(g.Entries(), func(e Entry[K, A]) float64 { return metric(e.Value) }, n)
}

// Top is TopN over an arbitrary slice. The input slice is not modified.
func Top[T any](items []T, metric func(T) float64, n int) []T {
	type scored struct {
		item  T
		score float64
	}
	s := make([]scored, len(items))
	for i, it := range items {
		s[i] = scored{item: it, score: metric(it)}
	}
	slices.SortStableFunc(s, func(a, b scored) int {
		return cmp.Compare(b.score, a.score)
	})
	if n > 0 && n < len(s) {
		s = s[:n]
	}
	out := make([]T, len(s))
	for i := range s {
		out[i] = s[i].item
	}
	return out
}

// Window returns items[offset:offset+limit] clamped to the slice bounds.
// limit <= 0 means no limit.
func Window[T any](items []T, limit, offset int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return []T{}
	}
	end := len(items)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return items[offset:end]
}
