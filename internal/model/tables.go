package model

import "time"

// Output table names, also used as the sub-path of each table under the output root.
const (
	TableImmigration  = "immigration"
	TableArrivalTime  = "arrival_time"
	TableTemperature  = "temperature"
	TableDemographics = "demographics"
	TableAirports     = "airports"
)

// ImmigrationFact is one cleaned immigration event. ImmigrationID is the source record id.
type ImmigrationFact struct {
	ImmigrationID      *int64
	ArrivalYear        int
	ArrivalMonth       int
	PortOfEntry        *string
	TravelMode         string
	DestinationState   *string
	ArrivalDate        *time.Time
	DepartureDate      *time.Time
	Country            *string
	CountryOfResidence *string
	VisaType           *string
	VisaCategory       string
	BirthYear          *int64
	Gender             *string
}

// ArrivalTime is the calendar decomposition of one distinct arrival date.
type ArrivalTime struct {
	ID          int64
	ArrivalDate time.Time
	Day         int
	Week        int
	Month       int
	Year        int
	Weekday     int
}

// Temperature is the mean city temperature of one country.
type Temperature struct {
	ID                 int64
	Country            string
	AverageTemperature float64
}

// Demographics holds summed population figures for one US state.
type Demographics struct {
	ID               int64
	StateCode        string
	TotalPopulation  *int64
	MalePopulation   *int64
	FemalePopulation *int64
	NumberOfVeterans int64
	ForeignBorn      int64
	Latitude         *float64
	Longitude        *float64
}

// Airport is one US airport with an IATA code.
type Airport struct {
	ID        int64
	Ident     *string
	Name      *string
	IATACode  string
	StateCode *string
	Latitude  *float64
	Longitude *float64
	Location  *string
}
