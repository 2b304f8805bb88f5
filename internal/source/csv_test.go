package source

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

type pair struct {
	Name  *string
	Value *float64
	Count *int64
}

var pairSchema = Schema{Name: "pairs", Columns: []string{"name", "value", "count"}}

func decodePair(r *Record) (pair, bool) {
	return pair{Name: r.String("name"), Value: r.Float("value"), Count: r.Int("count")}, true
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReadCSV_HeaderByName(t *testing.T) {
	path := writeFile(t, "pairs.csv", "Count, VALUE ,Name,extra\n3,1.5,alpha,x\n4,2,beta,y\n")

	rows, stats, err := ReadCSV(context.Background(), path, CSVOptions{Header: true}, pairSchema, decodePair)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, 2, stats.Rows)

	assert.Equal(t, "alpha", *rows[0].Name)
	assert.Equal(t, 1.5, *rows[0].Value)
	assert.Equal(t, int64(3), *rows[0].Count)
	assert.Equal(t, "beta", *rows[1].Name)
}

func TestReadCSV_EmptyCellsAreNull(t *testing.T) {
	path := writeFile(t, "pairs.csv", "name,value,count\n,, \n")

	rows, stats, err := ReadCSV(context.Background(), path, CSVOptions{Header: true}, pairSchema, decodePair)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Nil(t, rows[0].Name)
	assert.Nil(t, rows[0].Value)
	assert.Nil(t, rows[0].Count)
	assert.Empty(t, stats.Invalid)
}

func TestReadCSV_UnparsableCellsCounted(t *testing.T) {
	path := writeFile(t, "pairs.csv", "name,value,count\na,abc,1.0\nb,NaN,2.5\nc,3,x\n")

	rows, stats, err := ReadCSV(context.Background(), path, CSVOptions{Header: true}, pairSchema, decodePair)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Nil(t, rows[0].Value)
	assert.Equal(t, int64(1), *rows[0].Count)
	assert.Nil(t, rows[1].Value)
	assert.Nil(t, rows[1].Count)
	assert.Equal(t, 3.0, *rows[2].Value)
	assert.Nil(t, rows[2].Count)
	assert.Equal(t, map[string]int{"value": 2, "count": 2}, stats.Invalid)
}

func TestReadCSV_Delimiter(t *testing.T) {
	path := writeFile(t, "pairs.csv", "name;value;count\n\"a;b\";1;2\n")

	rows, _, err := ReadCSV(context.Background(), path, CSVOptions{Delimiter: ';', Header: true}, pairSchema, decodePair)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "a;b", *rows[0].Name)
}

func TestReadCSV_WrongDelimiterIsMissingColumns(t *testing.T) {
	path := writeFile(t, "pairs.csv", "name;value;count\na;1;2\n")

	_, _, err := ReadCSV(context.Background(), path, CSVOptions{Delimiter: ',', Header: true}, pairSchema, decodePair)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing pairs columns")
	assert.Contains(t, err.Error(), "check the delimiter")
}

func TestReadCSV_Positional(t *testing.T) {
	path := writeFile(t, "pairs.csv", "alpha,1.5,3\n")

	rows, _, err := ReadCSV(context.Background(), path, CSVOptions{Header: false}, pairSchema, decodePair)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "alpha", *rows[0].Name)
	assert.Equal(t, int64(3), *rows[0].Count)
}

func TestReadCSV_ByteOrderMark(t *testing.T) {
	path := writeFile(t, "pairs.csv", "\ufeffname,value,count\na,1,2\n")

	rows, _, err := ReadCSV(context.Background(), path, CSVOptions{Header: true}, pairSchema, decodePair)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "a", *rows[0].Name)
}

func TestReadCSV_Fatal(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"ragged row", "name,value,count\na,1\n", "wrong number of fields"},
		{"bad quoting", "name,value,count\n\"a,1,2\n", "read pairs input"},
		{"no header", "", "no header row"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, "pairs.csv", tt.content)
			_, _, err := ReadCSV(context.Background(), path, CSVOptions{Header: true}, pairSchema, decodePair)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestReadCSV_MissingFile(t *testing.T) {
	_, _, err := ReadCSV(context.Background(), filepath.Join(t.TempDir(), "nope.csv"), CSVOptions{Header: true}, pairSchema, decodePair)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open pairs input")
}

func TestReadCSV_SkippedRows(t *testing.T) {
	path := writeFile(t, "pairs.csv", "name,value,count\na,1,2\n,3,4\n")

	rows, stats, err := ReadCSV(context.Background(), path, CSVOptions{Header: true}, pairSchema, func(r *Record) (pair, bool) {
		p, _ := decodePair(r)
		return p, p.Name != nil
	})
	require.NoError(t, err)
	assert.Len(t, rows, 1)
	assert.Equal(t, 1, stats.Skipped)
}

func TestReadCSV_ContextCancelled(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("name,value,count\n")
	for range 10000 {
		sb.WriteString("a,1,2\n")
	}
	path := writeFile(t, "pairs.csv", sb.String())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := ReadCSV(ctx, path, CSVOptions{Header: true}, pairSchema, decodePair)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "context cancelled")
}
