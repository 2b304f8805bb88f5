// Package derive computes the warehouse columns that are functions of a single source row:
// SAS date conversion, categorical recoding, coordinate and region parsing, and the
// calendar decomposition behind the arrival-time dimension.
package derive

import (
	"math"
	"time"
)

// SASEpoch is day zero of the SAS date encoding used by the I-94 extract.
var SASEpoch = time.Date(1960, time.January, 1, 0, 0, 0, 0, time.UTC)

// maxOffsetDays bounds the offsets accepted by SASDate to roughly +/- 8000 years.
const maxOffsetDays = 3_000_000

const secondsPerDay = 24 * 60 * 60

// SASDate converts a day offset since SASEpoch into a calendar date. Fractional offsets
// are truncated toward zero. A nil, non-finite or out-of-range offset yields nil.
func SASDate(offset *float64) *time.Time {
	if offset == nil || math.IsNaN(*offset) || math.IsInf(*offset, 0) {
		return nil
	}
	days := math.Trunc(*offset)
	if math.Abs(days) > maxOffsetDays {
		return nil
	}
	d := SASEpoch.AddDate(0, 0, int(days))
	return &d
}

// DaysSinceEpoch is the inverse of SASDate: the whole days between SASEpoch and the
// calendar date of t in UTC.
func DaysSinceEpoch(t time.Time) int64 {
	t = t.UTC()
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return (day.Unix() - SASEpoch.Unix()) / secondsPerDay
}
