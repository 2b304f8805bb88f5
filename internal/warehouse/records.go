// Package warehouse persists the finished star-schema tables as Parquet and reads them
// back for verification.
package warehouse

import (
	"time"

	"github.com/sells-group/i94-warehouse/internal/model"
)

// FactRecord is the on-disk immigration fact row. The arrival year and month partition
// columns live in the directory path, not in the file.
type FactRecord struct {
	ImmigrationID      *int64  `parquet:"name=immigration_id, type=INT64, repetitiontype=OPTIONAL"`
	PortOfEntry        *string `parquet:"name=port_of_entry, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
	TravelMode         string  `parquet:"name=travel_mode, type=BYTE_ARRAY, convertedtype=UTF8"`
	DestinationState   *string `parquet:"name=destination_state, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
	ArrivalDate        *int32  `parquet:"name=arrival_date, type=INT32, convertedtype=DATE, repetitiontype=OPTIONAL"`
	DepartureDate      *int32  `parquet:"name=departure_date, type=INT32, convertedtype=DATE, repetitiontype=OPTIONAL"`
	Country            *string `parquet:"name=country, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
	CountryOfResidence *string `parquet:"name=country_of_residence, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
	VisaType           *string `parquet:"name=visatype, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
	VisaCategory       string  `parquet:"name=visa_category, type=BYTE_ARRAY, convertedtype=UTF8"`
	BirthYear          *int64  `parquet:"name=birth_year, type=INT64, repetitiontype=OPTIONAL"`
	Gender             *string `parquet:"name=gender, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
}

// ArrivalTimeRecord is the on-disk arrival-time dimension row.
type ArrivalTimeRecord struct {
	ArrivalDate int32 `parquet:"name=arrival_date, type=INT32, convertedtype=DATE"`
	Day         int32 `parquet:"name=day, type=INT32"`
	Week        int32 `parquet:"name=week, type=INT32"`
	Month       int32 `parquet:"name=month, type=INT32"`
	Year        int32 `parquet:"name=year, type=INT32"`
	Weekday     int32 `parquet:"name=weekday, type=INT32"`
	ID          int64 `parquet:"name=id, type=INT64"`
}

// TemperatureRecord is the on-disk temperature dimension row.
type TemperatureRecord struct {
	Country            string  `parquet:"name=country, type=BYTE_ARRAY, convertedtype=UTF8"`
	AverageTemperature float64 `parquet:"name=average_temperature, type=DOUBLE"`
	ID                 int64   `parquet:"name=id, type=INT64"`
}

// DemographicsRecord is the on-disk demographics dimension row.
type DemographicsRecord struct {
	StateCode        string   `parquet:"name=state_code, type=BYTE_ARRAY, convertedtype=UTF8"`
	TotalPopulation  *int64   `parquet:"name=total_population, type=INT64, repetitiontype=OPTIONAL"`
	MalePopulation   *int64   `parquet:"name=male_population, type=INT64, repetitiontype=OPTIONAL"`
	FemalePopulation *int64   `parquet:"name=female_population, type=INT64, repetitiontype=OPTIONAL"`
	NumberOfVeterans int64    `parquet:"name=number_of_veterans, type=INT64"`
	ForeignBorn      int64    `parquet:"name=foreign_born, type=INT64"`
	Latitude         *float64 `parquet:"name=latitude, type=DOUBLE, repetitiontype=OPTIONAL"`
	Longitude        *float64 `parquet:"name=longitude, type=DOUBLE, repetitiontype=OPTIONAL"`
	ID               int64    `parquet:"name=id, type=INT64"`
}

// AirportRecord is the on-disk airport dimension row.
type AirportRecord struct {
	Ident     *string  `parquet:"name=ident, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
	Name      *string  `parquet:"name=name, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
	IATACode  string   `parquet:"name=iata_code, type=BYTE_ARRAY, convertedtype=UTF8"`
	StateCode *string  `parquet:"name=state_code, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
	Latitude  *float64 `parquet:"name=latitude, type=DOUBLE, repetitiontype=OPTIONAL"`
	Longitude *float64 `parquet:"name=longitude, type=DOUBLE, repetitiontype=OPTIONAL"`
	Location  *string  `parquet:"name=location, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
	ID        int64    `parquet:"name=id, type=INT64"`
}

const secondsPerDay = 24 * 60 * 60

// DateValue encodes a calendar date as the Parquet DATE logical type: days since
// 1970-01-01.
func DateValue(t time.Time) int32 {
	t = t.UTC()
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return int32(day.Unix() / secondsPerDay)
}

// DateOf decodes a Parquet DATE value.
func DateOf(days int32) time.Time {
	return time.Unix(int64(days)*secondsPerDay, 0).UTC()
}

func optionalDate(t *time.Time) *int32 {
	if t == nil {
		return nil
	}
	v := DateValue(*t)
	return &v
}

// FactRecordOf converts a derived fact to its on-disk shape.
func FactRecordOf(f model.ImmigrationFact) FactRecord {
	return FactRecord{
		ImmigrationID:      f.ImmigrationID,
		PortOfEntry:        f.PortOfEntry,
		TravelMode:         f.TravelMode,
		DestinationState:   f.DestinationState,
		ArrivalDate:        optionalDate(f.ArrivalDate),
		DepartureDate:      optionalDate(f.DepartureDate),
		Country:            f.Country,
		CountryOfResidence: f.CountryOfResidence,
		VisaType:           f.VisaType,
		VisaCategory:       f.VisaCategory,
		BirthYear:          f.BirthYear,
		Gender:             f.Gender,
	}
}

// ArrivalTimeRecordOf converts an arrival-time row.
func ArrivalTimeRecordOf(a model.ArrivalTime) ArrivalTimeRecord {
	return ArrivalTimeRecord{
		ArrivalDate: DateValue(a.ArrivalDate),
		Day:         int32(a.Day),
		Week:        int32(a.Week),
		Month:       int32(a.Month),
		Year:        int32(a.Year),
		Weekday:     int32(a.Weekday),
		ID:          a.ID,
	}
}

// TemperatureRecordOf converts a temperature row.
func TemperatureRecordOf(t model.Temperature) TemperatureRecord {
	return TemperatureRecord{Country: t.Country, AverageTemperature: t.AverageTemperature, ID: t.ID}
}

// DemographicsRecordOf converts a demographics row.
func DemographicsRecordOf(d model.Demographics) DemographicsRecord {
	return DemographicsRecord{
		StateCode:        d.StateCode,
		TotalPopulation:  d.TotalPopulation,
		MalePopulation:   d.MalePopulation,
		FemalePopulation: d.FemalePopulation,
		NumberOfVeterans: d.NumberOfVeterans,
		ForeignBorn:      d.ForeignBorn,
		Latitude:         d.Latitude,
		Longitude:        d.Longitude,
		ID:               d.ID,
	}
}

// AirportRecordOf converts an airport row.
func AirportRecordOf(a model.Airport) AirportRecord {
	return AirportRecord{
		Ident:     a.Ident,
		Name:      a.Name,
		IATACode:  a.IATACode,
		StateCode: a.StateCode,
		Latitude:  a.Latitude,
		Longitude: a.Longitude,
		Location:  a.Location,
		ID:        a.ID,
	}
}
