package quality

import (
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// ErrEmptyTable is returned by Gate.Evaluate under the fail policy when a produced table has no rows.
var ErrEmptyTable = eris.New("quality: table is empty")

// OnEmpty selects what the gate does with an empty table.
type OnEmpty string

const (
	Warn OnEmpty = "warn" // log the failure and carry on
	Fail OnEmpty = "fail" // fail the run once every table has been checked
)

// ParseOnEmpty converts "warn" or "fail" into an OnEmpty policy.
func ParseOnEmpty(s string) (OnEmpty, error) {
	switch OnEmpty(strings.ToLower(strings.TrimSpace(s))) {
	case Warn:
		return Warn, nil
	case Fail:
		return Fail, nil
	default:
		return "", eris.Errorf("quality: unknown on_empty policy %q (valid: warn, fail)", s)
	}
}

// Check is the gate outcome for one table.
type Check struct {
	Table  string `json:"table"`
	Rows   int64  `json:"rows"`
	Passed bool   `json:"passed"`
}

// Gate runs the post-write row count check.
type Gate struct {
	policy OnEmpty
}

// NewGate creates a gate with the given escalation policy.
func NewGate(policy OnEmpty) *Gate {
	return &Gate{policy: policy}
}

// Policy returns the gate's escalation policy.
func (g *Gate) Policy() OnEmpty {
	return g.policy
}

// Check records whether table has at least one row. It never fails on its own.
func (g *Gate) Check(table string, rows int64) Check {
	log := zap.L().With(zap.String("component", "quality.gate"), zap.String("table", table))
	c := Check{Table: table, Rows: rows, Passed: rows > 0}
	if c.Passed {
		log.Info("data quality check passed", zap.Int64("rows", rows))
	} else {
		log.Warn("data quality check failed: table is empty")
	}
	return c
}

// Evaluate applies the policy to a set of checks. Under Warn it always returns nil;
// under Fail it returns ErrEmptyTable naming every empty table.
func (g *Gate) Evaluate(checks []Check) error {
	var empty []string
	for _, c := range checks {
		if !c.Passed {
			empty = append(empty, c.Table)
		}
	}
	if len(empty) == 0 || g.policy != Fail {
		return nil
	}
	return eris.Wrapf(ErrEmptyTable, "quality: empty tables: %s", strings.Join(empty, ", "))
}
