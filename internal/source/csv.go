package source

import (
	"context"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// CSVOptions describes how one delimited input is laid out.
type CSVOptions struct {
	Delimiter rune
	Header    bool
}

// Schema names a dataset and the columns it needs from its input. With a header row the
// columns are located by name; without one they are taken positionally in this order.
type Schema struct {
	Name    string
	Columns []string
}

// Stats summarizes one read.
type Stats struct {
	Rows    int
	Skipped int
	// Invalid counts cells per column that were present but did not parse.
	Invalid map[string]int
}

// Record is one data row positioned against a Schema.
type Record struct {
	Line    int
	fields  []string
	index   map[string]int
	invalid map[string]int
}

// String returns the trimmed cell, or nil when it is empty or the column is unknown.
func (r *Record) String(col string) *string {
	v, ok := r.cell(col)
	if !ok {
		return nil
	}
	return &v
}

// Float parses the cell as a float64. Unparsable cells are counted and yield nil.
func (r *Record) Float(col string) *float64 {
	v, ok := r.cell(col)
	if !ok {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		r.invalid[col]++
		return nil
	}
	return &f
}

// Int parses the cell as an int64. Whole-valued decimals such as "1200.0" are accepted;
// anything else that does not parse is counted and yields nil.
func (r *Record) Int(col string) *int64 {
	v, ok := r.cell(col)
	if !ok {
		return nil
	}
	if n, err := strconv.ParseInt(v, 10, 64); err == nil {
		return &n
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f != math.Trunc(f) || math.Abs(f) > math.MaxInt64 {
		r.invalid[col]++
		return nil
	}
	n := int64(f)
	return &n
}

func (r *Record) cell(col string) (string, bool) {
	i, ok := r.index[normalizeColumn(col)]
	if !ok || i >= len(r.fields) {
		return "", false
	}
	v := strings.TrimSpace(r.fields[i])
	if v == "" {
		return "", false
	}
	return v, true
}

// DecodeFunc maps a record to a typed row. Returning false skips the row.
type DecodeFunc[T any] func(r *Record) (T, bool)

// ReadCSV reads the delimited file at path into typed rows. A header missing any schema
// column, malformed quoting and rows with a different field count are fatal; individual
// unparsable cells are not.
func ReadCSV[T any](ctx context.Context, path string, opts CSVOptions, schema Schema, decode DecodeFunc[T]) ([]T, Stats, error) {
	log := zap.L().With(zap.String("component", "source.csv"), zap.String("dataset", schema.Name))
	stats := Stats{Invalid: make(map[string]int)}

	f, err := os.Open(path)
	if err != nil {
		return nil, stats, eris.Wrapf(err, "source: open %s input %s", schema.Name, path)
	}
	defer f.Close() //nolint:errcheck

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	rowCh, errCh := Stream(ctx, f, StreamOptions{Delimiter: opts.Delimiter})

	var index map[string]int
	if !opts.Header {
		index = positionalIndex(schema.Columns)
	}

	var out []T
	line := 0
	for fields := range rowCh {
		line++
		if index == nil {
			index, err = headerIndex(fields, schema)
			if err != nil {
				return nil, stats, eris.Wrapf(err, "source: %s", path)
			}
			continue
		}

		rec := &Record{Line: line, fields: fields, index: index, invalid: stats.Invalid}
		row, ok := decode(rec)
		if !ok {
			stats.Skipped++
			continue
		}
		out = append(out, row)
	}
	if err := <-errCh; err != nil {
		return nil, stats, eris.Wrapf(err, "source: read %s input %s (line %d)", schema.Name, path, line+1)
	}
	if opts.Header && index == nil {
		return nil, stats, eris.Errorf("source: %s input %s has no header row", schema.Name, path)
	}

	stats.Rows = len(out)
	for _, col := range sortedKeys(stats.Invalid) {
		log.Warn("unparsable cells set to null", zap.String("column", col), zap.Int("cells", stats.Invalid[col]))
	}
	if stats.Skipped > 0 {
		log.Warn("skipped undecodable rows", zap.Int("rows", stats.Skipped))
	}
	log.Info("input read", zap.String("path", path), zap.Int("rows", stats.Rows))
	return out, stats, nil
}

// headerIndex maps the schema's columns to their positions in header. Matching ignores
// case and surrounding whitespace.
func headerIndex(header []string, schema Schema) (map[string]int, error) {
	found := make(map[string]int, len(header))
	for i, h := range header {
		key := normalizeColumn(h)
		if _, dup := found[key]; !dup {
			found[key] = i
		}
	}

	index := make(map[string]int, len(schema.Columns))
	var missing []string
	for _, col := range schema.Columns {
		key := normalizeColumn(col)
		i, ok := found[key]
		if !ok {
			missing = append(missing, col)
			continue
		}
		index[key] = i
	}
	if len(missing) > 0 {
		return nil, eris.Errorf("missing %s columns %s in a %d-column header (check the delimiter)",
			schema.Name, strings.Join(missing, ", "), len(header))
	}
	return index, nil
}

func positionalIndex(columns []string) map[string]int {
	index := make(map[string]int, len(columns))
	for i, col := range columns {
		index[normalizeColumn(col)] = i
	}
	return index
}

func normalizeColumn(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
