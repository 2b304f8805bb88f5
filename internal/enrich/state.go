package enrich

import (
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/i94-warehouse/internal/model"
)

// LatLong is a representative coordinate for a state.
type LatLong struct {
	Latitude  *float64
	Longitude *float64
}

// StateIndex resolves two-letter state codes to coordinates.
type StateIndex struct {
	coords map[string]LatLong
}

// NewStateIndex indexes the state lat/long reference table by upper-cased state code.
func NewStateIndex(rows []model.StateLatLong) (*StateIndex, error) {
	idx := &StateIndex{coords: make(map[string]LatLong, len(rows))}
	collapsed := 0
	for _, r := range rows {
		code := normalizeState(r.State)
		c := LatLong{Latitude: r.Latitude, Longitude: r.Longitude}
		if prev, ok := idx.coords[code]; ok {
			if !sameCoords(prev, c) {
				return nil, eris.Wrapf(ErrDuplicateKey, "enrich: state %q listed with different coordinates", code)
			}
			collapsed++
			continue
		}
		idx.coords[code] = c
	}
	if collapsed > 0 {
		zap.L().With(zap.String("component", "enrich.state")).
			Warn("collapsed duplicate states", zap.Int("duplicates", collapsed))
	}
	return idx, nil
}

// Coordinates returns the coordinates of a state and whether it is known.
func (s *StateIndex) Coordinates(code string) (LatLong, bool) {
	if s == nil {
		return LatLong{}, false
	}
	c, ok := s.coords[normalizeState(code)]
	return c, ok
}

// Len reports the number of distinct states.
func (s *StateIndex) Len() int {
	if s == nil {
		return 0
	}
	return len(s.coords)
}

// WithStateCoordinates left-joins state coordinates onto demographics rows. Rows whose
// state is unknown keep null coordinates. The input is not modified.
func WithStateCoordinates(rows []model.Demographics, idx *StateIndex) []model.Demographics {
	out := make([]model.Demographics, len(rows))
	for i, r := range rows {
		if c, ok := idx.Coordinates(r.StateCode); ok {
			r.Latitude = c.Latitude
			r.Longitude = c.Longitude
		}
		out[i] = r
	}
	return out
}

func normalizeState(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

func sameCoords(a, b LatLong) bool {
	return equalFloat(a.Latitude, b.Latitude) && equalFloat(a.Longitude, b.Longitude)
}

func equalFloat(a, b *float64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
