package pipeline

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/i94-warehouse/internal/aggregate"
	"github.com/sells-group/i94-warehouse/internal/config"
	"github.com/sells-group/i94-warehouse/internal/derive"
	"github.com/sells-group/i94-warehouse/internal/enrich"
	"github.com/sells-group/i94-warehouse/internal/model"
	"github.com/sells-group/i94-warehouse/internal/quality"
	"github.com/sells-group/i94-warehouse/internal/relation"
	"github.com/sells-group/i94-warehouse/internal/source"
	"github.com/sells-group/i94-warehouse/internal/warehouse"
)

// Dataset names.
const (
	NameImmigration  = "immigration"
	NameTemperature  = "temperature"
	NameDemographics = "demographics"
	NameAirports     = "airports"
)

func datasetLogger(name string) *zap.Logger {
	return zap.L().With(zap.String("component", "pipeline"), zap.String("dataset", name))
}

// checkpoint stops a dataset between stages once ctx is done.
func checkpoint(ctx context.Context, dataset, stage string) error {
	if err := ctx.Err(); err != nil {
		return eris.Wrapf(err, "pipeline: %s cancelled before %s", dataset, stage)
	}
	return nil
}

// Immigration builds the fact table and, from it, the arrival-time dimension.
type Immigration struct {
	cfg *config.Config
}

// Name implements Dataset.
func (d *Immigration) Name() string { return NameImmigration }

// Tables implements Dataset.
func (d *Immigration) Tables() []string {
	return []string{model.TableImmigration, model.TableArrivalTime}
}

// Run implements Dataset.
func (d *Immigration) Run(ctx context.Context, w *warehouse.Writer) ([]warehouse.Result, error) {
	log := datasetLogger(d.Name())

	raw, err := source.Immigration(ctx, d.cfg.Input.Immigration.Input())
	if err != nil {
		return nil, err
	}
	codes, err := source.CountryCodes(ctx, d.cfg.Input.CountryCodes.Input())
	if err != nil {
		return nil, err
	}
	countries, err := enrich.NewCountryIndex(codes)
	if err != nil {
		return nil, err
	}
	log.Info("loaded immigration records", zap.Int("rows", len(raw)), zap.Int("country_codes", countries.Len()))

	if err := checkpoint(ctx, d.Name(), "filter"); err != nil {
		return nil, err
	}
	clean, _, err := quality.Filter(model.TableImmigration, raw, immigrationColumns, requiredRules(d.cfg, d.Name()))
	if err != nil {
		return nil, err
	}

	if err := checkpoint(ctx, d.Name(), "derive"); err != nil {
		return nil, err
	}
	facts := relation.Map(clean, func(r model.RawImmigration) model.ImmigrationFact {
		return derive.ImmigrationFact(r, countries)
	})

	factResult, err := w.Immigration(ctx, facts)
	if err != nil {
		return nil, err
	}

	// The calendar dimension is derived from the written fact rows.
	arrivals := derive.ArrivalTimes(facts)
	arrivalResult, err := w.ArrivalTime(ctx, arrivals)
	if err != nil {
		return []warehouse.Result{factResult}, err
	}

	return []warehouse.Result{factResult, arrivalResult}, nil
}

// Temperature builds the per-country temperature dimension.
type Temperature struct {
	cfg *config.Config
}

// Name implements Dataset.
func (d *Temperature) Name() string { return NameTemperature }

// Tables implements Dataset.
func (d *Temperature) Tables() []string { return []string{model.TableTemperature} }

// Run implements Dataset.
func (d *Temperature) Run(ctx context.Context, w *warehouse.Writer) ([]warehouse.Result, error) {
	raw, err := source.Temperature(ctx, d.cfg.Input.Temperature.Input())
	if err != nil {
		return nil, err
	}
	datasetLogger(d.Name()).Info("loaded temperature observations", zap.Int("rows", len(raw)))

	if err := checkpoint(ctx, d.Name(), "filter"); err != nil {
		return nil, err
	}
	clean, _, err := quality.Filter(model.TableTemperature, raw, temperatureColumns, requiredRules(d.cfg, d.Name()))
	if err != nil {
		return nil, err
	}

	if err := checkpoint(ctx, d.Name(), "aggregate"); err != nil {
		return nil, err
	}
	res, err := w.Temperature(ctx, aggregate.Temperature(clean))
	if err != nil {
		return nil, err
	}
	return []warehouse.Result{res}, nil
}

// Demographics builds the per-state demographics dimension.
type Demographics struct {
	cfg *config.Config
}

// Name implements Dataset.
func (d *Demographics) Name() string { return NameDemographics }

// Tables implements Dataset.
func (d *Demographics) Tables() []string { return []string{model.TableDemographics} }

// Run implements Dataset.
func (d *Demographics) Run(ctx context.Context, w *warehouse.Writer) ([]warehouse.Result, error) {
	raw, err := source.Demographics(ctx, d.cfg.Input.Demographics.Input())
	if err != nil {
		return nil, err
	}
	states, err := source.States(ctx, d.cfg.Input.States.Input())
	if err != nil {
		return nil, err
	}
	idx, err := enrich.NewStateIndex(states)
	if err != nil {
		return nil, err
	}
	datasetLogger(d.Name()).Info("loaded demographics",
		zap.Int("rows", len(raw)),
		zap.Int("states", idx.Len()),
	)

	if err := checkpoint(ctx, d.Name(), "filter"); err != nil {
		return nil, err
	}
	clean, _, err := quality.Filter(model.TableDemographics, raw, demographicsColumns, requiredRules(d.cfg, d.Name()))
	if err != nil {
		return nil, err
	}

	if err := checkpoint(ctx, d.Name(), "aggregate"); err != nil {
		return nil, err
	}
	rows := enrich.WithStateCoordinates(aggregate.Demographics(clean), idx)

	res, err := w.Demographics(ctx, rows)
	if err != nil {
		return nil, err
	}
	return []warehouse.Result{res}, nil
}

// Airports builds the airport dimension from the airports of one country that carry an
// IATA code.
type Airports struct {
	cfg *config.Config
}

// Name implements Dataset.
func (d *Airports) Name() string { return NameAirports }

// Tables implements Dataset.
func (d *Airports) Tables() []string { return []string{model.TableAirports} }

// Run implements Dataset.
func (d *Airports) Run(ctx context.Context, w *warehouse.Writer) ([]warehouse.Result, error) {
	log := datasetLogger(d.Name())

	order, err := derive.ParseCoordinateOrder(d.cfg.Airports.CoordinateOrder)
	if err != nil {
		return nil, err
	}
	raw, err := source.Airports(ctx, d.cfg.Input.Airports.Input())
	if err != nil {
		return nil, err
	}

	country := strings.TrimSpace(d.cfg.Airports.Country)
	domestic := relation.Where(raw, func(a model.RawAirport) bool {
		return a.ISOCountry != nil && strings.EqualFold(*a.ISOCountry, country)
	})
	log.Info("loaded airports",
		zap.Int("rows", len(raw)),
		zap.String("country", country),
		zap.Int("in_country", len(domestic)),
	)

	if err := checkpoint(ctx, d.Name(), "filter"); err != nil {
		return nil, err
	}
	clean, _, err := quality.Filter(model.TableAirports, domestic, airportColumns, requiredRules(d.cfg, d.Name()))
	if err != nil {
		return nil, err
	}
	// iata_code is the dimension's natural key even when configuration drops the rule.
	clean = relation.Where(clean, func(a model.RawAirport) bool { return a.IATACode != nil })

	if err := checkpoint(ctx, d.Name(), "derive"); err != nil {
		return nil, err
	}
	airports := relation.Map(clean, func(a model.RawAirport) model.Airport {
		return derive.Airport(a, order)
	})

	res, err := w.Airports(ctx, airports)
	if err != nil {
		return nil, err
	}
	return []warehouse.Result{res}, nil
}
