package warehouse

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/reader"
)

// PartFiles lists the Parquet files under a local table directory, sorted by path.
func PartFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), ".parquet") {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, eris.Wrapf(err, "warehouse: list %s", dir)
	}
	sort.Strings(files)
	return files, nil
}

// CountRows totals the row counts recorded in the footers of every part under dir. A
// missing directory counts as zero rows.
func CountRows(dir string) (int64, error) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return 0, nil
	}
	files, err := PartFiles(dir)
	if err != nil {
		return 0, err
	}

	var total int64
	for _, file := range files {
		n, err := countFile(file)
		if err != nil {
			return 0, eris.Wrapf(err, "warehouse: count %s", file)
		}
		total += n
	}
	return total, nil
}

func countFile(file string) (int64, error) {
	fr, err := local.NewLocalFileReader(file)
	if err != nil {
		return 0, err
	}
	defer fr.Close() //nolint:errcheck

	pr, err := reader.NewParquetReader(fr, nil, 1)
	if err != nil {
		return 0, err
	}
	defer pr.ReadStop()
	return pr.GetNumRows(), nil
}

// ReadRows reads every row of a local table directory into R.
func ReadRows[R any](dir string) ([]R, error) {
	files, err := PartFiles(dir)
	if err != nil {
		return nil, err
	}

	var out []R
	for _, file := range files {
		rows, err := readFile[R](file)
		if err != nil {
			return nil, eris.Wrapf(err, "warehouse: read %s", file)
		}
		out = append(out, rows...)
	}
	return out, nil
}

func readFile[R any](file string) ([]R, error) {
	fr, err := local.NewLocalFileReader(file)
	if err != nil {
		return nil, err
	}
	defer fr.Close() //nolint:errcheck

	pr, err := reader.NewParquetReader(fr, new(R), 1)
	if err != nil {
		return nil, err
	}
	defer pr.ReadStop()

	rows := make([]R, pr.GetNumRows())
	if err := pr.Read(&rows); err != nil {
		return nil, err
	}
	return rows, nil
}
