package warehouse

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// ManifestName is the file written alongside every table's Parquet parts.
const ManifestName = "_manifest.yaml"

// Manifest describes one written table.
type Manifest struct {
	Table            string         `yaml:"table"`
	RunID            string         `yaml:"run_id"`
	WrittenAt        time.Time      `yaml:"written_at"`
	Rows             int64          `yaml:"rows"`
	Columns          []string       `yaml:"columns"`
	PartitionColumns []string       `yaml:"partition_columns,omitempty"`
	Files            []ManifestFile `yaml:"files"`
}

// ManifestFile is one Parquet part, relative to the table directory.
type ManifestFile struct {
	Path string `yaml:"path"`
	Rows int64  `yaml:"rows"`
}

func writeManifest(dir string, m Manifest) error {
	b, err := yaml.Marshal(m)
	if err != nil {
		return eris.Wrapf(err, "warehouse: marshal %s manifest", m.Table)
	}
	if err := os.WriteFile(filepath.Join(dir, ManifestName), b, 0o644); err != nil {
		return eris.Wrapf(err, "warehouse: write %s manifest", m.Table)
	}
	return nil
}

// ReadManifest loads the manifest of a local table directory.
func ReadManifest(dir string) (*Manifest, error) {
	b, err := os.ReadFile(filepath.Join(dir, ManifestName))
	if err != nil {
		return nil, eris.Wrapf(err, "warehouse: read manifest in %s", dir)
	}
	var m Manifest
	if err := yaml.Unmarshal(b, &m); err != nil {
		return nil, eris.Wrapf(err, "warehouse: parse manifest in %s", dir)
	}
	return &m, nil
}

// columnNames lists the parquet column names declared on R's fields.
func columnNames[R any]() []string {
	t := reflect.TypeOf((*R)(nil)).Elem()
	var cols []string
	for i := range t.NumField() {
		for _, part := range strings.Split(t.Field(i).Tag.Get("parquet"), ",") {
			if name, ok := strings.CutPrefix(strings.TrimSpace(part), "name="); ok {
				cols = append(cols, name)
			}
		}
	}
	return cols
}
