package source

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/i94-warehouse/internal/model"
)

// Input formats accepted for the immigration extract.
const (
	FormatCSV     = "csv"
	FormatParquet = "parquet"
)

// Input schemas, with column names as they appear in the published extracts.
var (
	ImmigrationSchema = Schema{Name: "immigration", Columns: []string{
		"cicid", "i94yr", "i94mon", "i94cit", "i94res", "i94port", "arrdate",
		"i94mode", "i94addr", "depdate", "i94visa", "biryear", "gender", "visatype",
	}}
	TemperatureSchema = Schema{Name: "temperature", Columns: []string{
		"dt", "AverageTemperature", "AverageTemperatureUncertainty", "City", "Country", "Latitude", "Longitude",
	}}
	DemographicsSchema = Schema{Name: "demographics", Columns: []string{
		"City", "State", "Median Age", "Male Population", "Female Population", "Total Population",
		"Number of Veterans", "Foreign-born", "Average Household Size", "State Code", "Race", "Count",
	}}
	AirportSchema = Schema{Name: "airports", Columns: []string{
		"ident", "type", "name", "elevation_ft", "continent", "iso_country", "iso_region",
		"municipality", "gps_code", "iata_code", "local_code", "coordinates",
	}}
	CountryCodeSchema = Schema{Name: "country_codes", Columns: []string{"code", "description"}}
	StateSchema       = Schema{Name: "states", Columns: []string{"State", "Latitude", "Longitude", "City"}}
)

// Input locates one raw dataset.
type Input struct {
	Path   string
	Format string
	CSVOptions
}

// Immigration reads the I-94 extract as CSV or Parquet.
func Immigration(ctx context.Context, in Input) ([]model.RawImmigration, error) {
	switch strings.ToLower(in.Format) {
	case FormatParquet:
		return ReadParquet[model.RawImmigration](ctx, ImmigrationSchema.Name, in.Path)
	case FormatCSV, "":
		rows, _, err := ReadCSV(ctx, in.Path, in.CSVOptions, ImmigrationSchema, decodeImmigration)
		return rows, err
	default:
		return nil, eris.Errorf("source: unknown immigration format %q (valid: csv, parquet)", in.Format)
	}
}

func decodeImmigration(r *Record) (model.RawImmigration, bool) {
	return model.RawImmigration{
		CICID:    r.Float("cicid"),
		I94Yr:    r.Float("i94yr"),
		I94Mon:   r.Float("i94mon"),
		I94Cit:   r.Float("i94cit"),
		I94Res:   r.Float("i94res"),
		I94Port:  r.String("i94port"),
		ArrDate:  r.Float("arrdate"),
		I94Mode:  r.Float("i94mode"),
		I94Addr:  r.String("i94addr"),
		DepDate:  r.Float("depdate"),
		I94Visa:  r.Float("i94visa"),
		BirYear:  r.Float("biryear"),
		Gender:   r.String("gender"),
		VisaType: r.String("visatype"),
	}, true
}

// Temperature reads the city temperature history.
func Temperature(ctx context.Context, in Input) ([]model.RawTemperature, error) {
	rows, _, err := ReadCSV(ctx, in.Path, in.CSVOptions, TemperatureSchema, func(r *Record) (model.RawTemperature, bool) {
		return model.RawTemperature{
			Date:                          r.String("dt"),
			AverageTemperature:            r.Float("AverageTemperature"),
			AverageTemperatureUncertainty: r.Float("AverageTemperatureUncertainty"),
			City:                          r.String("City"),
			Country:                       r.String("Country"),
			Latitude:                      r.String("Latitude"),
			Longitude:                     r.String("Longitude"),
		}, true
	})
	return rows, err
}

// Demographics reads the US city demographics extract.
func Demographics(ctx context.Context, in Input) ([]model.RawDemographics, error) {
	rows, _, err := ReadCSV(ctx, in.Path, in.CSVOptions, DemographicsSchema, func(r *Record) (model.RawDemographics, bool) {
		return model.RawDemographics{
			City:                 r.String("City"),
			State:                r.String("State"),
			MedianAge:            r.Float("Median Age"),
			MalePopulation:       r.Int("Male Population"),
			FemalePopulation:     r.Int("Female Population"),
			TotalPopulation:      r.Int("Total Population"),
			NumberOfVeterans:     r.Int("Number of Veterans"),
			ForeignBorn:          r.Int("Foreign-born"),
			AverageHouseholdSize: r.Float("Average Household Size"),
			StateCode:            r.String("State Code"),
			Race:                 r.String("Race"),
			Count:                r.Int("Count"),
		}, true
	})
	return rows, err
}

// Airports reads the airport-codes extract.
func Airports(ctx context.Context, in Input) ([]model.RawAirport, error) {
	rows, _, err := ReadCSV(ctx, in.Path, in.CSVOptions, AirportSchema, func(r *Record) (model.RawAirport, bool) {
		return model.RawAirport{
			Ident:        r.String("ident"),
			Type:         r.String("type"),
			Name:         r.String("name"),
			ElevationFt:  r.Float("elevation_ft"),
			Continent:    r.String("continent"),
			ISOCountry:   r.String("iso_country"),
			ISORegion:    r.String("iso_region"),
			Municipality: r.String("municipality"),
			GPSCode:      r.String("gps_code"),
			IATACode:     r.String("iata_code"),
			LocalCode:    r.String("local_code"),
			Coordinates:  r.String("coordinates"),
		}, true
	})
	return rows, err
}

// CountryCodes reads the i94cit/i94res reference table. Rows without a whole-number
// code or a description are skipped.
func CountryCodes(ctx context.Context, in Input) ([]model.CountryCode, error) {
	log := zap.L().With(zap.String("component", "source.reference"))
	rows, _, err := ReadCSV(ctx, in.Path, in.CSVOptions, CountryCodeSchema, func(r *Record) (model.CountryCode, bool) {
		code := r.Int("code")
		desc := r.String("description")
		if code == nil || desc == nil {
			log.Debug("skipping country code row", zap.Int("line", r.Line))
			return model.CountryCode{}, false
		}
		return model.CountryCode{Code: *code, Description: *desc}, true
	})
	return rows, err
}

// States reads the state lat/long reference table. Rows without a state are skipped.
func States(ctx context.Context, in Input) ([]model.StateLatLong, error) {
	rows, _, err := ReadCSV(ctx, in.Path, in.CSVOptions, StateSchema, func(r *Record) (model.StateLatLong, bool) {
		state := r.String("State")
		if state == nil {
			return model.StateLatLong{}, false
		}
		return model.StateLatLong{
			State:     *state,
			Latitude:  r.Float("Latitude"),
			Longitude: r.Float("Longitude"),
			City:      r.String("City"),
		}, true
	})
	return rows, err
}
