package source

import (
	"context"
	"os"
	"path/filepath"
	"sort"

	"github.com/rotisserie/eris"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/reader"
	"go.uber.org/zap"
)

const (
	parquetReadBatch = 10_000
	parquetParallel  = 4
)

// ParquetFiles resolves path to the Parquet files it names: the file itself, or every
// *.parquet file directly inside a directory, sorted by name.
func ParquetFiles(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, eris.Wrapf(err, "source: stat %s", path)
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	files, err := filepath.Glob(filepath.Join(path, "*.parquet"))
	if err != nil {
		return nil, eris.Wrapf(err, "source: list %s", path)
	}
	if len(files) == 0 {
		return nil, eris.Errorf("source: no parquet files in %s", path)
	}
	sort.Strings(files)
	return files, nil
}

// ReadParquet reads every row of the Parquet file or directory at path into T, whose
// parquet struct tags define the columns read.
func ReadParquet[T any](ctx context.Context, name, path string) ([]T, error) {
	log := zap.L().With(zap.String("component", "source.parquet"), zap.String("dataset", name))

	files, err := ParquetFiles(path)
	if err != nil {
		return nil, err
	}

	var out []T
	for _, file := range files {
		rows, err := readParquetFile[T](ctx, file)
		if err != nil {
			return nil, eris.Wrapf(err, "source: read %s input %s", name, file)
		}
		out = append(out, rows...)
		log.Debug("parquet part read", zap.String("file", file), zap.Int("rows", len(rows)))
	}

	log.Info("input read", zap.String("path", path), zap.Int("files", len(files)), zap.Int("rows", len(out)))
	return out, nil
}

func readParquetFile[T any](ctx context.Context, file string) ([]T, error) {
	fr, err := local.NewLocalFileReader(file)
	if err != nil {
		return nil, eris.Wrap(err, "open")
	}
	defer fr.Close() //nolint:errcheck

	pr, err := reader.NewParquetReader(fr, new(T), parquetParallel)
	if err != nil {
		return nil, eris.Wrap(err, "parquet reader")
	}
	defer pr.ReadStop()

	total := int(pr.GetNumRows())
	out := make([]T, 0, total)
	for len(out) < total {
		if err := ctx.Err(); err != nil {
			return nil, eris.Wrap(err, "source: context cancelled")
		}
		n := min(parquetReadBatch, total-len(out))
		batch := make([]T, n)
		if err := pr.Read(&batch); err != nil {
			return nil, eris.Wrap(err, "read rows")
		}
		out = append(out, batch...)
	}
	return out, nil
}
