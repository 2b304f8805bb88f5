package pipeline

import (
	"github.com/rotisserie/eris"

	"github.com/sells-group/i94-warehouse/internal/config"
	"github.com/sells-group/i94-warehouse/internal/model"
	"github.com/sells-group/i94-warehouse/internal/quality"
)

// Null predicates per raw row type, keyed by the column names rules may use.
var (
	immigrationColumns = quality.Columns[model.RawImmigration]{
		"cicid":    func(r model.RawImmigration) bool { return r.CICID == nil },
		"i94yr":    func(r model.RawImmigration) bool { return r.I94Yr == nil },
		"i94mon":   func(r model.RawImmigration) bool { return r.I94Mon == nil },
		"i94cit":   func(r model.RawImmigration) bool { return r.I94Cit == nil },
		"i94res":   func(r model.RawImmigration) bool { return r.I94Res == nil },
		"i94port":  func(r model.RawImmigration) bool { return r.I94Port == nil },
		"arrdate":  func(r model.RawImmigration) bool { return r.ArrDate == nil },
		"i94mode":  func(r model.RawImmigration) bool { return r.I94Mode == nil },
		"i94addr":  func(r model.RawImmigration) bool { return r.I94Addr == nil },
		"depdate":  func(r model.RawImmigration) bool { return r.DepDate == nil },
		"i94visa":  func(r model.RawImmigration) bool { return r.I94Visa == nil },
		"biryear":  func(r model.RawImmigration) bool { return r.BirYear == nil },
		"gender":   func(r model.RawImmigration) bool { return r.Gender == nil },
		"visatype": func(r model.RawImmigration) bool { return r.VisaType == nil },
	}

	temperatureColumns = quality.Columns[model.RawTemperature]{
		"dt":                              func(r model.RawTemperature) bool { return r.Date == nil },
		"average_temperature":             func(r model.RawTemperature) bool { return r.AverageTemperature == nil },
		"average_temperature_uncertainty": func(r model.RawTemperature) bool { return r.AverageTemperatureUncertainty == nil },
		"city":                            func(r model.RawTemperature) bool { return r.City == nil },
		"country":                         func(r model.RawTemperature) bool { return r.Country == nil },
		"latitude":                        func(r model.RawTemperature) bool { return r.Latitude == nil },
		"longitude":                       func(r model.RawTemperature) bool { return r.Longitude == nil },
	}

	demographicsColumns = quality.Columns[model.RawDemographics]{
		"city":                   func(r model.RawDemographics) bool { return r.City == nil },
		"state":                  func(r model.RawDemographics) bool { return r.State == nil },
		"median_age":             func(r model.RawDemographics) bool { return r.MedianAge == nil },
		"male_population":        func(r model.RawDemographics) bool { return r.MalePopulation == nil },
		"female_population":      func(r model.RawDemographics) bool { return r.FemalePopulation == nil },
		"total_population":       func(r model.RawDemographics) bool { return r.TotalPopulation == nil },
		"number_of_veterans":     func(r model.RawDemographics) bool { return r.NumberOfVeterans == nil },
		"foreign_born":           func(r model.RawDemographics) bool { return r.ForeignBorn == nil },
		"average_household_size": func(r model.RawDemographics) bool { return r.AverageHouseholdSize == nil },
		"state_code":             func(r model.RawDemographics) bool { return r.StateCode == nil },
		"race":                   func(r model.RawDemographics) bool { return r.Race == nil },
		"count":                  func(r model.RawDemographics) bool { return r.Count == nil },
	}

	airportColumns = quality.Columns[model.RawAirport]{
		"ident":        func(r model.RawAirport) bool { return r.Ident == nil },
		"type":         func(r model.RawAirport) bool { return r.Type == nil },
		"name":         func(r model.RawAirport) bool { return r.Name == nil },
		"elevation_ft": func(r model.RawAirport) bool { return r.ElevationFt == nil },
		"continent":    func(r model.RawAirport) bool { return r.Continent == nil },
		"iso_country":  func(r model.RawAirport) bool { return r.ISOCountry == nil },
		"iso_region":   func(r model.RawAirport) bool { return r.ISORegion == nil },
		"municipality": func(r model.RawAirport) bool { return r.Municipality == nil },
		"gps_code":     func(r model.RawAirport) bool { return r.GPSCode == nil },
		"iata_code":    func(r model.RawAirport) bool { return r.IATACode == nil },
		"local_code":   func(r model.RawAirport) bool { return r.LocalCode == nil },
		"coordinates":  func(r model.RawAirport) bool { return r.Coordinates == nil },
	}
)

// Default required columns per dataset.
var defaultRequired = map[string][]string{
	NameImmigration:  {"arrdate", "depdate", "i94mode", "i94visa", "biryear", "gender"},
	NameTemperature:  {"average_temperature"},
	NameDemographics: {"state_code"},
	NameAirports:     {"iata_code"},
}

// requiredRules returns the configured rule list for dataset, or its default. An explicit
// empty list in configuration disables filtering.
func requiredRules(cfg *config.Config, dataset string) []quality.Rule {
	if cols, ok := cfg.Quality.Required[dataset]; ok {
		return quality.Required(cols...)
	}
	return quality.Required(defaultRequired[dataset]...)
}

// ValidateRules checks every configured rule list against the columns of its dataset.
func ValidateRules(cfg *config.Config) error {
	checks := map[string]func([]quality.Rule) error{
		NameImmigration:  immigrationColumns.Validate,
		NameTemperature:  temperatureColumns.Validate,
		NameDemographics: demographicsColumns.Validate,
		NameAirports:     airportColumns.Validate,
	}
	for _, name := range []string{NameImmigration, NameTemperature, NameDemographics, NameAirports} {
		if err := checks[name](requiredRules(cfg, name)); err != nil {
			return err
		}
	}
	for name := range cfg.Quality.Required {
		if _, ok := checks[name]; !ok {
			return eris.Errorf("pipeline: quality.required names unknown dataset %q", name)
		}
	}
	return nil
}
