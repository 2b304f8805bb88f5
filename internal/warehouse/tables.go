package warehouse

import (
	"context"
	"strconv"

	"github.com/sells-group/i94-warehouse/internal/model"
)

// FactPartitionColumns are the fact partition columns in path order.
var FactPartitionColumns = []string{"arrival_year", "arrival_month"}

// Immigration writes the fact table partitioned by arrival year and month. Facts keep
// their natural id.
func (w *Writer) Immigration(ctx context.Context, facts []model.ImmigrationFact) (Result, error) {
	parts := PartitionBy(facts, func(f model.ImmigrationFact) []string {
		return []string{strconv.Itoa(f.ArrivalYear), strconv.Itoa(f.ArrivalMonth)}
	}, FactRecordOf)
	return writeTable(ctx, w, model.TableImmigration, FactPartitionColumns, parts)
}

// ArrivalTime numbers the calendar rows by date and writes them.
func (w *Writer) ArrivalTime(ctx context.Context, rows []model.ArrivalTime) (Result, error) {
	rows = AssignIDs(rows,
		func(a, b model.ArrivalTime) bool { return a.ArrivalDate.Before(b.ArrivalDate) },
		func(a *model.ArrivalTime, id int64) { a.ID = id },
	)
	return writeTable(ctx, w, model.TableArrivalTime, nil, single(rows, ArrivalTimeRecordOf))
}

// Temperature numbers the rows by country and writes them.
func (w *Writer) Temperature(ctx context.Context, rows []model.Temperature) (Result, error) {
	rows = AssignIDs(rows,
		func(a, b model.Temperature) bool { return a.Country < b.Country },
		func(t *model.Temperature, id int64) { t.ID = id },
	)
	return writeTable(ctx, w, model.TableTemperature, nil, single(rows, TemperatureRecordOf))
}

// Demographics numbers the rows by state code and writes them.
func (w *Writer) Demographics(ctx context.Context, rows []model.Demographics) (Result, error) {
	rows = AssignIDs(rows,
		func(a, b model.Demographics) bool { return a.StateCode < b.StateCode },
		func(d *model.Demographics, id int64) { d.ID = id },
	)
	return writeTable(ctx, w, model.TableDemographics, nil, single(rows, DemographicsRecordOf))
}

// Airports numbers the rows by IATA code, then ident and name, and writes them.
func (w *Writer) Airports(ctx context.Context, rows []model.Airport) (Result, error) {
	rows = AssignIDs(rows, lessAirport, func(a *model.Airport, id int64) { a.ID = id })
	return writeTable(ctx, w, model.TableAirports, nil, single(rows, AirportRecordOf))
}

func lessAirport(a, b model.Airport) bool {
	if a.IATACode != b.IATACode {
		return a.IATACode < b.IATACode
	}
	if ai, bi := model.Value(a.Ident), model.Value(b.Ident); ai != bi {
		return ai < bi
	}
	return model.Value(a.Name) < model.Value(b.Name)
}

func single[T, R any](rows []T, conv func(T) R) []Partition[R] {
	out := make([]R, len(rows))
	for i, r := range rows {
		out[i] = conv(r)
	}
	return []Partition[R]{{Rows: out}}
}
