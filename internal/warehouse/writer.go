package warehouse

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/jonboulle/clockwork"
	"github.com/rotisserie/eris"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"
	"go.uber.org/zap"

	"github.com/sells-group/i94-warehouse/internal/storage"
)

const (
	partFileName   = "part-00000.parquet"
	writerParallel = 4
)

// Result reports one written table.
type Result struct {
	Table    string
	Location string
	Rows     int64
	Files    int
}

// Partition is the set of rows sharing one value per partition column.
type Partition[R any] struct {
	Values []string
	Rows   []R
}

// Writer builds tables in a staging directory and swaps them into the store.
type Writer struct {
	store storage.Store
	runID string
	clock clockwork.Clock
}

// NewWriter creates a Writer stamping manifests with runID.
func NewWriter(store storage.Store, runID string, clock clockwork.Clock) *Writer {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Writer{store: store, runID: runID, clock: clock}
}

// PartitionBy groups rows by key and converts them to records. Partitions are ordered by
// their values, numerically where both values are integers.
func PartitionBy[T, R any](rows []T, key func(T) []string, conv func(T) R) []Partition[R] {
	index := make(map[string]int)
	var parts []Partition[R]
	for _, row := range rows {
		values := key(row)
		k := strings.Join(values, "\x00")
		i, ok := index[k]
		if !ok {
			i = len(parts)
			index[k] = i
			parts = append(parts, Partition[R]{Values: values})
		}
		parts[i].Rows = append(parts[i].Rows, conv(row))
	}
	sort.SliceStable(parts, func(i, j int) bool { return lessValues(parts[i].Values, parts[j].Values) })
	return parts
}

func lessValues(a, b []string) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] == b[i] {
			continue
		}
		x, errX := strconv.ParseInt(a[i], 10, 64)
		y, errY := strconv.ParseInt(b[i], 10, 64)
		if errX == nil && errY == nil {
			return x < y
		}
		return a[i] < b[i]
	}
	return len(a) < len(b)
}

// writeTable writes each partition as one snappy Parquet part under
// <col>=<value>/ directories, adds the manifest and replaces the table in the store.
// A table without rows gets a manifest and no parts.
func writeTable[R any](ctx context.Context, w *Writer, table string, partitionCols []string, parts []Partition[R]) (Result, error) {
	log := zap.L().With(zap.String("component", "warehouse.writer"), zap.String("table", table))

	staged, err := w.store.Stage(table)
	if err != nil {
		return Result{}, err
	}
	defer os.RemoveAll(staged) //nolint:errcheck

	manifest := Manifest{
		Table:            table,
		RunID:            w.runID,
		WrittenAt:        w.clock.Now().UTC(),
		Columns:          columnNames[R](),
		PartitionColumns: slices.Clone(partitionCols),
	}

	for _, part := range parts {
		if len(part.Rows) == 0 {
			continue
		}
		if len(part.Values) != len(partitionCols) {
			return Result{}, eris.Errorf("warehouse: %s partition has %d values for %d columns", table, len(part.Values), len(partitionCols))
		}
		if err := ctx.Err(); err != nil {
			return Result{}, eris.Wrapf(err, "warehouse: write %s cancelled", table)
		}

		rel := partitionPath(partitionCols, part.Values)
		if err := writeParquet(filepath.Join(staged, filepath.FromSlash(rel)), part.Rows); err != nil {
			return Result{}, eris.Wrapf(err, "warehouse: write %s", rel)
		}
		manifest.Files = append(manifest.Files, ManifestFile{Path: rel, Rows: int64(len(part.Rows))})
		manifest.Rows += int64(len(part.Rows))
	}

	if err := writeManifest(staged, manifest); err != nil {
		return Result{}, err
	}
	if err := w.store.Replace(ctx, table, staged); err != nil {
		return Result{}, eris.Wrapf(err, "warehouse: replace %s", table)
	}

	res := Result{Table: table, Location: w.store.Location(table), Rows: manifest.Rows, Files: len(manifest.Files)}
	log.Info("table written",
		zap.String("location", res.Location),
		zap.Int64("rows", res.Rows),
		zap.Int("files", res.Files),
	)
	return res, nil
}

// partitionPath is the slash-separated path of a part file relative to its table.
func partitionPath(cols, values []string) string {
	segs := make([]string, 0, len(cols)+1)
	for i, col := range cols {
		segs = append(segs, col+"="+values[i])
	}
	return strings.Join(append(segs, partFileName), "/")
}

func writeParquet[R any](path string, rows []R) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return eris.Wrap(err, "create partition directory")
	}

	fw, err := local.NewLocalFileWriter(path)
	if err != nil {
		return eris.Wrap(err, "create file")
	}

	pw, err := writer.NewParquetWriter(fw, new(R), writerParallel)
	if err != nil {
		_ = fw.Close()
		return eris.Wrap(err, "create parquet writer")
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY

	for _, row := range rows {
		if err := pw.Write(row); err != nil {
			_ = fw.Close()
			return eris.Wrap(err, "write row")
		}
	}
	if err := pw.WriteStop(); err != nil {
		_ = fw.Close()
		return eris.Wrap(err, "finish parquet file")
	}
	if err := fw.Close(); err != nil {
		return eris.Wrap(err, "close file")
	}
	return nil
}
