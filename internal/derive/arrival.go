package derive

import (
	"time"

	"github.com/sells-group/i94-warehouse/internal/model"
	"github.com/sells-group/i94-warehouse/internal/relation"
)

// ArrivalTimes builds one calendar row per distinct arrival date in the fact table.
// Facts without an arrival date contribute nothing. IDs are left for the table writer.
func ArrivalTimes(facts []model.ImmigrationFact) []model.ArrivalTime {
	dated := relation.Where(facts, func(f model.ImmigrationFact) bool { return f.ArrivalDate != nil })
	distinct := relation.DistinctBy(dated, func(f model.ImmigrationFact) time.Time { return civilDate(*f.ArrivalDate) })
	return relation.Map(distinct, func(f model.ImmigrationFact) model.ArrivalTime {
		return Calendar(*f.ArrivalDate)
	})
}

// Calendar decomposes a date. Week is the ISO 8601 week number and Weekday counts from
// 1 for Sunday to 7 for Saturday.
func Calendar(d time.Time) model.ArrivalTime {
	d = civilDate(d)
	_, week := d.ISOWeek()
	return model.ArrivalTime{
		ArrivalDate: d,
		Day:         d.Day(),
		Week:        week,
		Month:       int(d.Month()),
		Year:        d.Year(),
		Weekday:     int(d.Weekday()) + 1,
	}
}

func civilDate(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
