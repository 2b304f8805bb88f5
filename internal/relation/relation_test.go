package relation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type pair struct {
	K string
	V int
}

func TestWhere(t *testing.T) {
	rows := []int{1, 2, 3, 4}
	assert.Equal(t, []int{2, 4}, Where(rows, func(v int) bool { return v%2 == 0 }))
	assert.Empty(t, Where(rows, func(int) bool { return false }))
	assert.Equal(t, []int{1, 2, 3, 4}, rows)
}

func TestDistinctBy_KeepsFirst(t *testing.T) {
	rows := []pair{{"a", 1}, {"b", 2}, {"a", 3}}
	got := DistinctBy(rows, func(p pair) string { return p.K })
	assert.Equal(t, []pair{{"a", 1}, {"b", 2}}, got)
}

func TestGroupBy_FirstSeenOrder(t *testing.T) {
	rows := []pair{{"b", 1}, {"a", 2}, {"b", 3}}
	groups := GroupBy(rows, func(p pair) string { return p.K })

	assert.Len(t, groups, 2)
	assert.Equal(t, "b", groups[0].Key)
	assert.Equal(t, []pair{{"b", 1}, {"b", 3}}, groups[0].Rows)
	assert.Equal(t, "a", groups[1].Key)
}

func TestGroupBy_Empty(t *testing.T) {
	assert.Empty(t, GroupBy([]pair(nil), func(p pair) string { return p.K }))
}

func TestMap(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, Map([]pair{{"a", 1}, {"b", 2}}, func(p pair) string { return p.K }))
}
