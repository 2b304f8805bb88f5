package source

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/writer"

	"github.com/sells-group/i94-warehouse/internal/model"
)

func writeImmigrationParquet(t *testing.T, path string, rows []model.RawImmigration) {
	t.Helper()
	fw, err := local.NewLocalFileWriter(path)
	require.NoError(t, err)
	pw, err := writer.NewParquetWriter(fw, new(model.RawImmigration), 1)
	require.NoError(t, err)
	for _, r := range rows {
		require.NoError(t, pw.Write(r))
	}
	require.NoError(t, pw.WriteStop())
	require.NoError(t, fw.Close())
}

func TestReadParquet_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "i94.parquet")
	writeImmigrationParquet(t, path, []model.RawImmigration{
		{CICID: model.Float(1), ArrDate: model.Float(20545), Gender: model.String("M")},
		{CICID: model.Float(2)},
	})

	rows, err := ReadParquet[model.RawImmigration](context.Background(), "immigration", path)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, 1.0, *rows[0].CICID)
	assert.Equal(t, 20545.0, *rows[0].ArrDate)
	assert.Equal(t, "M", *rows[0].Gender)
	assert.Nil(t, rows[1].ArrDate)
	assert.Nil(t, rows[1].Gender)
}

func TestReadParquet_Directory(t *testing.T) {
	dir := t.TempDir()
	writeImmigrationParquet(t, filepath.Join(dir, "part-00001.parquet"), []model.RawImmigration{{CICID: model.Float(2)}})
	writeImmigrationParquet(t, filepath.Join(dir, "part-00000.parquet"), []model.RawImmigration{{CICID: model.Float(1)}})
	require.NoError(t, os.WriteFile(filepath.Join(dir, "_SUCCESS"), nil, 0o644))

	rows, err := ReadParquet[model.RawImmigration](context.Background(), "immigration", dir)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, 1.0, *rows[0].CICID)
	assert.Equal(t, 2.0, *rows[1].CICID)
}

func TestParquetFiles_Errors(t *testing.T) {
	_, err := ParquetFiles(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)

	_, err = ParquetFiles(t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no parquet files")
}
