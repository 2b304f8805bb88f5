// Package quality holds the null-constraint filter applied before transformation and the
// emptiness gate applied after tables are written.
package quality

import (
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Columns maps a column name to a predicate reporting whether a row's value in that
// column is null. It is the typed schema the filter resolves rule names against.
type Columns[T any] map[string]func(T) bool

// Rule declares the null constraint of one column.
type Rule struct {
	Column   string `yaml:"column" mapstructure:"column"`
	Required bool   `yaml:"required" mapstructure:"required"`
}

// Required builds rules marking each named column as required, in order.
func Required(columns ...string) []Rule {
	rules := make([]Rule, len(columns))
	for i, c := range columns {
		rules[i] = Rule{Column: c, Required: true}
	}
	return rules
}

// Validate reports the first rule naming a column the schema does not know.
func (c Columns[T]) Validate(rules []Rule) error {
	for _, r := range rules {
		if _, ok := c[r.Column]; !ok {
			return eris.Errorf("quality: unknown column %q", r.Column)
		}
	}
	return nil
}

// ColumnNulls is the null count observed for one required column at the point it was checked.
type ColumnNulls struct {
	Column string `json:"column"`
	Nulls  int    `json:"nulls"`
}

// FilterReport summarises one Filter call.
type FilterReport struct {
	Table   string        `json:"table"`
	Before  int           `json:"before"`
	After   int           `json:"after"`
	Columns []ColumnNulls `json:"columns"`
}

// Removed returns the number of rows the filter dropped.
func (r FilterReport) Removed() int {
	return r.Before - r.After
}

// Filter drops rows holding a null in any required column. Columns are checked in rule
// order and each check runs on the survivors of the previous one, so a row is counted
// against the first required column it fails only. The input slice is not modified.
// Filtering every row away is not an error.
func Filter[T any](table string, rows []T, cols Columns[T], rules []Rule) ([]T, FilterReport, error) {
	if err := cols.Validate(rules); err != nil {
		return nil, FilterReport{}, eris.Wrapf(err, "quality: filter %s", table)
	}

	log := zap.L().With(zap.String("component", "quality.filter"), zap.String("table", table))
	report := FilterReport{Table: table, Before: len(rows)}
	log.Info("rows before null filter", zap.Int("rows", len(rows)))

	out := make([]T, len(rows))
	copy(out, rows)

	for _, rule := range rules {
		if !rule.Required {
			continue
		}
		isNull := cols[rule.Column]

		nulls := 0
		for _, row := range out {
			if isNull(row) {
				nulls++
			}
		}
		report.Columns = append(report.Columns, ColumnNulls{Column: rule.Column, Nulls: nulls})
		log.Info("null values in required column", zap.String("column", rule.Column), zap.Int("nulls", nulls))

		if nulls == 0 {
			continue
		}

		kept := make([]T, 0, len(out)-nulls)
		for _, row := range out {
			if !isNull(row) {
				kept = append(kept, row)
			}
		}
		log.Debug("removed rows with null value", zap.String("column", rule.Column), zap.Int("removed", nulls))
		out = kept
	}

	report.After = len(out)
	log.Info("rows after null filter", zap.Int("rows", report.After), zap.Int("removed", report.Removed()))
	return out, report, nil
}
