// Package aggregate rolls raw observations up into the coarser temperature and
// demographics dimensions.
package aggregate

import (
	"sort"

	"github.com/sells-group/i94-warehouse/internal/model"
	"github.com/sells-group/i94-warehouse/internal/relation"
)

type observationKey struct {
	date, city, country string
}

// Temperature averages city temperatures per country. Rows with a null temperature or
// country are dropped, observations repeated for the same (dt, City, Country) count once,
// and the result is sorted by country. IDs are left for the table writer.
func Temperature(rows []model.RawTemperature) []model.Temperature {
	valid := relation.Where(rows, func(r model.RawTemperature) bool {
		return r.AverageTemperature != nil && r.Country != nil
	})
	distinct := relation.DistinctBy(valid, func(r model.RawTemperature) observationKey {
		return observationKey{model.Value(r.Date), model.Value(r.City), *r.Country}
	})
	groups := relation.GroupBy(distinct, func(r model.RawTemperature) string { return *r.Country })

	out := relation.Map(groups, func(g relation.Group[string, model.RawTemperature]) model.Temperature {
		var sum float64
		for _, r := range g.Rows {
			sum += *r.AverageTemperature
		}
		return model.Temperature{Country: g.Key, AverageTemperature: sum / float64(len(g.Rows))}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Country < out[j].Country })
	return out
}

// Demographics sums city populations per state code, sorted by state code. A sum over
// only null inputs is null, except veterans and foreign-born which default to 0. Rows
// without a state code are dropped. Coordinates are attached separately.
func Demographics(rows []model.RawDemographics) []model.Demographics {
	keyed := relation.Where(rows, func(r model.RawDemographics) bool { return r.StateCode != nil })
	groups := relation.GroupBy(keyed, func(r model.RawDemographics) string { return *r.StateCode })

	out := relation.Map(groups, func(g relation.Group[string, model.RawDemographics]) model.Demographics {
		var total, male, female, veterans, foreign nullableSum
		for _, r := range g.Rows {
			total.add(r.TotalPopulation)
			male.add(r.MalePopulation)
			female.add(r.FemalePopulation)
			veterans.add(r.NumberOfVeterans)
			foreign.add(r.ForeignBorn)
		}
		return model.Demographics{
			StateCode:        g.Key,
			TotalPopulation:  total.value(),
			MalePopulation:   male.value(),
			FemalePopulation: female.value(),
			NumberOfVeterans: model.Value(veterans.value()),
			ForeignBorn:      model.Value(foreign.value()),
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].StateCode < out[j].StateCode })
	return out
}

// nullableSum adds values with SQL SUM semantics: nulls are ignored and a sum that saw
// no values is null.
type nullableSum struct {
	sum  int64
	seen bool
}

func (s *nullableSum) add(v *int64) {
	if v == nil {
		return
	}
	s.sum += *v
	s.seen = true
}

func (s *nullableSum) value() *int64 {
	if !s.seen {
		return nil
	}
	v := s.sum
	return &v
}
