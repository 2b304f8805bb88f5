// Package enrich builds the small reference indexes the pipeline joins against and
// attaches their attributes to derived rows.
package enrich

import (
	"math"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/sells-group/i94-warehouse/internal/model"
)

// ErrDuplicateKey is returned when a reference table maps one key to two different values.
var ErrDuplicateKey = eris.New("enrich: duplicate reference key")

// CountryIndex resolves I-94 country codes to capitalized country names.
type CountryIndex struct {
	names map[int64]string
}

// NewCountryIndex indexes the country reference table. Descriptions are trimmed of
// surrounding quotes and whitespace and capitalized per word. Identical duplicate rows
// are collapsed; a code listed with two different descriptions is an error.
func NewCountryIndex(rows []model.CountryCode) (*CountryIndex, error) {
	log := zap.L().With(zap.String("component", "enrich.country"))
	caser := cases.Title(language.English)

	idx := &CountryIndex{names: make(map[int64]string, len(rows))}
	collapsed := 0
	for _, r := range rows {
		name := caser.String(cleanDescription(r.Description))
		if prev, ok := idx.names[r.Code]; ok {
			if prev != name {
				return nil, eris.Wrapf(ErrDuplicateKey, "enrich: country code %d maps to %q and %q", r.Code, prev, name)
			}
			collapsed++
			continue
		}
		idx.names[r.Code] = name
	}

	if collapsed > 0 {
		log.Warn("collapsed duplicate country codes", zap.Int("duplicates", collapsed))
	}
	log.Debug("country index built", zap.Int("codes", len(idx.names)))
	return idx, nil
}

// Name returns the country name for a code, or nil when the code is null, fractional
// or absent from the index.
func (c *CountryIndex) Name(code *float64) *string {
	if c == nil || code == nil || *code != math.Trunc(*code) {
		return nil
	}
	name, ok := c.names[int64(*code)]
	if !ok {
		return nil
	}
	return &name
}

// Len reports the number of distinct codes.
func (c *CountryIndex) Len() int {
	if c == nil {
		return 0
	}
	return len(c.names)
}

func cleanDescription(s string) string {
	return strings.TrimSpace(strings.Trim(strings.TrimSpace(s), `'"`))
}
