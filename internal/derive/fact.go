package derive

import (
	"math"
	"time"

	"github.com/sells-group/i94-warehouse/internal/model"
)

// CountryLookup resolves an I-94 country code to a display name, or nil when unmatched.
type CountryLookup interface {
	Name(code *float64) *string
}

// ImmigrationFact derives the fact row for one cleaned raw record. Origin and residence
// are resolved independently against the same lookup; a nil lookup leaves both null.
func ImmigrationFact(raw model.RawImmigration, countries CountryLookup) model.ImmigrationFact {
	fact := model.ImmigrationFact{
		ImmigrationID:    wholeNumber(raw.CICID),
		PortOfEntry:      raw.I94Port,
		TravelMode:       TravelMode(raw.I94Mode),
		DestinationState: raw.I94Addr,
		ArrivalDate:      SASDate(raw.ArrDate),
		DepartureDate:    SASDate(raw.DepDate),
		VisaType:         raw.VisaType,
		VisaCategory:     VisaCategory(raw.I94Visa),
		BirthYear:        wholeNumber(raw.BirYear),
		Gender:           raw.Gender,
	}
	if countries != nil {
		fact.Country = countries.Name(raw.I94Cit)
		fact.CountryOfResidence = countries.Name(raw.I94Res)
	}

	fact.ArrivalYear, fact.ArrivalMonth = arrivalPartition(raw, fact.ArrivalDate)
	return fact
}

// arrivalPartition takes the partition values from i94yr/i94mon and falls back to the
// arrival date for whichever of the two is missing.
func arrivalPartition(raw model.RawImmigration, arrival *time.Time) (year, month int) {
	if y := wholeNumber(raw.I94Yr); y != nil {
		year = int(*y)
	} else if arrival != nil {
		year = arrival.Year()
	}
	if m := wholeNumber(raw.I94Mon); m != nil {
		month = int(*m)
	} else if arrival != nil {
		month = int(arrival.Month())
	}
	return year, month
}

// wholeNumber truncates a SAS double to an integer; nil and non-finite values yield nil.
func wholeNumber(v *float64) *int64 {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return nil
	}
	n := int64(math.Trunc(*v))
	return &n
}
