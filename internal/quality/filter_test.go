package quality

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

type testRow struct {
	ID   int
	A    *string
	B    *int
	Note *string
}

var testColumns = Columns[testRow]{
	"a":    func(r testRow) bool { return r.A == nil },
	"b":    func(r testRow) bool { return r.B == nil },
	"note": func(r testRow) bool { return r.Note == nil },
}

func strp(s string) *string { return &s }
func intp(v int) *int { return &v }

func TestFilter_RemovesNullsCumulatively(t *testing.T) {
	rows := []testRow{
		{ID: 1, A: strp("x"), B: intp(1)},
		{ID: 2, A: nil, B: nil},
		{ID: 3, A: strp("y"), B: nil},
		{ID: 4, A: nil, B: intp(2)},
		{ID: 5, A: strp("z"), B: intp(3)},
	}

	out, report, err := Filter("t", rows, testColumns, Required("a", "b"))
	require.NoError(t, err)

	ids := make([]int, 0, len(out))
	for _, r := range out {
		ids = append(ids, r.ID)
	}
	assert.Equal(t, []int{1, 5}, ids)
	assert.Equal(t, 5, report.Before)
	assert.Equal(t, 2, report.After)
	assert.Equal(t, 3, report.Removed())

	// Row 2 is null in both columns but only counted against "a".
	assert.Equal(t, []ColumnNulls{{Column: "a", Nulls: 2}, {Column: "b", Nulls: 1}}, report.Columns)
}

func TestFilter_NoRequiredColumnIsNull(t *testing.T) {
	rows := []testRow{{ID: 1, A: strp("x"), B: intp(1)}}
	out, _, err := Filter("t", rows, testColumns, Required("a", "b"))
	require.NoError(t, err)
	for _, r := range out {
		assert.NotNil(t, r.A)
		assert.NotNil(t, r.B)
	}
	assert.Len(t, out, 1)
}

func TestFilter_OptionalRuleIgnored(t *testing.T) {
	rows := []testRow{{ID: 1, A: strp("x")}}
	out, report, err := Filter("t", rows, testColumns, []Rule{{Column: "note", Required: false}, {Column: "a", Required: true}})
	require.NoError(t, err)
	assert.Len(t, out, 1)
	assert.Equal(t, []ColumnNulls{{Column: "a", Nulls: 0}}, report.Columns)
}

func TestFilter_AllRowsRemoved(t *testing.T) {
	rows := []testRow{{ID: 1}, {ID: 2}}
	out, report, err := Filter("t", rows, testColumns, Required("a"))
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.Equal(t, 0, report.After)
}

func TestFilter_DoesNotMutateInput(t *testing.T) {
	rows := []testRow{{ID: 1}, {ID: 2, A: strp("x")}}
	_, _, err := Filter("t", rows, testColumns, Required("a"))
	require.NoError(t, err)
	assert.Equal(t, 1, rows[0].ID)
	assert.Equal(t, 2, rows[1].ID)
}

func TestFilter_UnknownColumn(t *testing.T) {
	_, _, err := Filter("t", []testRow{{ID: 1}}, testColumns, Required("missing"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown column "missing"`)
}

func TestFilter_Empty(t *testing.T) {
	out, report, err := Filter("t", nil, testColumns, Required("a"))
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.Equal(t, 0, report.Before)
}
