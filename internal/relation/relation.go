// Package relation provides the small set of relational operators the pipeline applies to
// in-memory tables: selection, de-duplication and grouping. Every operator returns a new
// slice and leaves its input untouched.
package relation

// Where returns the rows for which keep reports true, in input order.
func Where[T any](rows []T, keep func(T) bool) []T {
	out := make([]T, 0, len(rows))
	for _, r := range rows {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

// DistinctBy keeps the first row seen for each key, in input order.
func DistinctBy[T any, K comparable](rows []T, key func(T) K) []T {
	seen := make(map[K]struct{}, len(rows))
	out := make([]T, 0, len(rows))
	for _, r := range rows {
		k := key(r)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, r)
	}
	return out
}

// Group is the set of rows sharing one key.
type Group[K comparable, T any] struct {
	Key  K
	Rows []T
}

// GroupBy partitions rows by key. Groups appear in the order their key was first seen
// and rows keep their input order within a group.
func GroupBy[T any, K comparable](rows []T, key func(T) K) []Group[K, T] {
	index := make(map[K]int)
	var groups []Group[K, T]
	for _, r := range rows {
		k := key(r)
		i, ok := index[k]
		if !ok {
			i = len(groups)
			index[k] = i
			groups = append(groups, Group[K, T]{Key: k})
		}
		groups[i].Rows = append(groups[i].Rows, r)
	}
	return groups
}

// Map applies fn to every row.
func Map[T, U any](rows []T, fn func(T) U) []U {
	out := make([]U, len(rows))
	for i, r := range rows {
		out[i] = fn(r)
	}
	return out
}
