package derive

import (
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
)

// CoordinateOrder names which value comes first in a combined "a, b" coordinate string.
type CoordinateOrder string

const (
	LonLat CoordinateOrder = "lonlat" // airport-codes ordering
	LatLon CoordinateOrder = "latlon"
)

// ParseCoordinateOrder converts "lonlat" or "latlon" into a CoordinateOrder.
func ParseCoordinateOrder(s string) (CoordinateOrder, error) {
	switch CoordinateOrder(strings.ToLower(strings.TrimSpace(s))) {
	case LonLat:
		return LonLat, nil
	case LatLon:
		return LatLon, nil
	default:
		return "", eris.Errorf("derive: unknown coordinate order %q (valid: lonlat, latlon)", s)
	}
}

// ParseCoordinates splits a comma separated coordinate pair into latitude and longitude
// according to order. A missing string or a pair with other than two parts yields two
// nils; each value that does not parse as a number is nil on its own.
func ParseCoordinates(s *string, order CoordinateOrder) (lat, lon *float64) {
	if s == nil {
		return nil, nil
	}
	parts := strings.Split(*s, ",")
	if len(parts) != 2 {
		return nil, nil
	}

	first := parseCoordinate(parts[0])
	second := parseCoordinate(parts[1])
	if order == LatLon {
		return first, second
	}
	return second, first
}

func parseCoordinate(s string) *float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return nil
	}
	return &v
}

// regionPrefixLen is the width of the "US-" country segment of an ISO 3166-2 region code.
const regionPrefixLen = 3

// RegionState strips the country segment from an ISO region code: "US-CA" -> "CA".
// Codes no longer than the prefix yield nil.
func RegionState(isoRegion *string) *string {
	if isoRegion == nil {
		return nil
	}
	r := strings.TrimSpace(*isoRegion)
	if len(r) <= regionPrefixLen {
		return nil
	}
	state := r[regionPrefixLen:]
	return &state
}
