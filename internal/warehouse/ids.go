package warehouse

import "sort"

// AssignIDs orders a copy of rows with less and numbers them 1..n through set. Equal
// inputs always receive equal ids, so ids are stable across re-runs.
func AssignIDs[T any](rows []T, less func(a, b T) bool, set func(*T, int64)) []T {
	out := make([]T, len(rows))
	copy(out, rows)
	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	for i := range out {
		set(&out[i], int64(i+1))
	}
	return out
}
