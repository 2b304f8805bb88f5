package derive

import (
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/wkt"
	"go.uber.org/zap"

	"github.com/sells-group/i94-warehouse/internal/model"
)

// wgs84 is the SRID of the coordinates published in the airport-codes extract.
const wgs84 = 4326

// Airport derives the dimension row for one US airport. Callers filter out rows without
// an IATA code first; a nil code here becomes an empty string.
func Airport(raw model.RawAirport, order CoordinateOrder) model.Airport {
	lat, lon := ParseCoordinates(raw.Coordinates, order)
	a := model.Airport{
		Ident:     raw.Ident,
		Name:      raw.Name,
		IATACode:  model.Value(raw.IATACode),
		StateCode: RegionState(raw.ISORegion),
		Latitude:  lat,
		Longitude: lon,
	}
	a.Location = pointWKT(lat, lon)
	return a
}

// pointWKT encodes a lat/lon pair as a WKT point (x = longitude). Either value missing
// yields nil.
func pointWKT(lat, lon *float64) *string {
	if lat == nil || lon == nil {
		return nil
	}
	p := geom.NewPointFlat(geom.XY, []float64{*lon, *lat}).SetSRID(wgs84)
	s, err := wkt.Marshal(p)
	if err != nil {
		zap.L().Debug("derive: encode airport location", zap.Error(err))
		return nil
	}
	return &s
}
