package pipeline

import (
	"path/filepath"

	"github.com/rotisserie/eris"

	"github.com/sells-group/i94-warehouse/internal/quality"
	"github.com/sells-group/i94-warehouse/internal/storage"
	"github.com/sells-group/i94-warehouse/internal/warehouse"
)

// Check re-reads the named tables under a local output root and gates their row
// counts. A table that was never written counts as empty.
func Check(root string, tables []string, gate *quality.Gate) ([]quality.Check, error) {
	if storage.IsS3(root) {
		return nil, eris.Errorf("pipeline: check needs a local output root, got %q", root)
	}

	checks := make([]quality.Check, 0, len(tables))
	for _, table := range tables {
		rows, err := warehouse.CountRows(filepath.Join(root, table))
		if err != nil {
			return nil, err
		}
		checks = append(checks, gate.Check(table, rows))
	}
	return checks, gate.Evaluate(checks)
}
