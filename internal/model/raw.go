// Package model defines the typed row shapes flowing through the warehouse pipeline.
//
// Nullable source fields are pointers; a nil pointer is a null cell.
package model

// RawImmigration is one I-94 arrival/departure record as extracted from the SAS export.
// Numeric fields arrive as doubles because the SAS export stores every number that way.
type RawImmigration struct {
	CICID    *float64 `parquet:"name=cicid, type=DOUBLE, repetitiontype=OPTIONAL"`
	I94Yr    *float64 `parquet:"name=i94yr, type=DOUBLE, repetitiontype=OPTIONAL"`
	I94Mon   *float64 `parquet:"name=i94mon, type=DOUBLE, repetitiontype=OPTIONAL"`
	I94Cit   *float64 `parquet:"name=i94cit, type=DOUBLE, repetitiontype=OPTIONAL"`
	I94Res   *float64 `parquet:"name=i94res, type=DOUBLE, repetitiontype=OPTIONAL"`
	I94Port  *string  `parquet:"name=i94port, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
	ArrDate  *float64 `parquet:"name=arrdate, type=DOUBLE, repetitiontype=OPTIONAL"`
	I94Mode  *float64 `parquet:"name=i94mode, type=DOUBLE, repetitiontype=OPTIONAL"`
	I94Addr  *string  `parquet:"name=i94addr, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
	DepDate  *float64 `parquet:"name=depdate, type=DOUBLE, repetitiontype=OPTIONAL"`
	I94Visa  *float64 `parquet:"name=i94visa, type=DOUBLE, repetitiontype=OPTIONAL"`
	BirYear  *float64 `parquet:"name=biryear, type=DOUBLE, repetitiontype=OPTIONAL"`
	Gender   *string  `parquet:"name=gender, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
	VisaType *string  `parquet:"name=visatype, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
}

// RawTemperature is one monthly observation from GlobalLandTemperaturesByCity.
type RawTemperature struct {
	Date                          *string
	AverageTemperature            *float64
	AverageTemperatureUncertainty *float64
	City                          *string
	Country                       *string
	Latitude                      *string
	Longitude                     *string
}

// RawDemographics is one (city, race) row of the US cities demographics extract.
type RawDemographics struct {
	City                 *string
	State                *string
	MedianAge            *float64
	MalePopulation       *int64
	FemalePopulation     *int64
	TotalPopulation      *int64
	NumberOfVeterans     *int64
	ForeignBorn          *int64
	AverageHouseholdSize *float64
	StateCode            *string
	Race                 *string
	Count                *int64
}

// RawAirport is one row of the airport-codes extract.
type RawAirport struct {
	Ident        *string
	Type         *string
	Name         *string
	ElevationFt  *float64
	Continent    *string
	ISOCountry   *string
	ISORegion    *string
	Municipality *string
	GPSCode      *string
	IATACode     *string
	LocalCode    *string
	Coordinates  *string
}

// CountryCode maps an I-94 country code to its description.
type CountryCode struct {
	Code        int64
	Description string
}

// StateLatLong holds the representative coordinates of a US state.
type StateLatLong struct {
	State     string
	Latitude  *float64
	Longitude *float64
	City      *string
}

// String returns a pointer to s, or nil when s is empty.
func String(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Float returns a pointer to v.
func Float(v float64) *float64 {
	return &v
}

// Value dereferences p, returning the zero value for nil.
func Value[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
