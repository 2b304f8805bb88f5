// Package pipeline runs the warehouse datasets: each one loads its raw inputs, cleans,
// enriches and derives them, and writes its finished tables.
package pipeline

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/i94-warehouse/internal/config"
	"github.com/sells-group/i94-warehouse/internal/warehouse"
)

// Dataset defines the interface each warehouse dataset implements.
type Dataset interface {
	// Name returns the unique identifier for this dataset (e.g., "immigration").
	Name() string

	// Tables returns the output tables the dataset produces, in write order.
	Tables() []string

	// Run loads, transforms and writes the dataset's tables.
	Run(ctx context.Context, w *warehouse.Writer) ([]warehouse.Result, error)
}

// Registry maps dataset names to their implementations.
type Registry struct {
	datasets map[string]Dataset
	order    []string // insertion order for deterministic iteration
}

// NewRegistry creates a registry populated with every warehouse dataset.
func NewRegistry(cfg *config.Config) *Registry {
	r := &Registry{
		datasets: make(map[string]Dataset),
	}

	r.Register(&Immigration{cfg: cfg})
	r.Register(&Temperature{cfg: cfg})
	r.Register(&Demographics{cfg: cfg})
	r.Register(&Airports{cfg: cfg})

	return r
}

// Register adds a dataset to the registry.
func (r *Registry) Register(d Dataset) {
	name := d.Name()
	if _, ok := r.datasets[name]; !ok {
		r.order = append(r.order, name)
	}
	r.datasets[name] = d
}

// Get returns a dataset by name.
func (r *Registry) Get(name string) (Dataset, error) {
	d, ok := r.datasets[name]
	if !ok {
		return nil, eris.Errorf("pipeline: unknown dataset %q", name)
	}
	return d, nil
}

// Select returns the named datasets, or all of them when names is empty. Repeated names
// are returned once.
func (r *Registry) Select(names []string) ([]Dataset, error) {
	if len(names) == 0 {
		return r.All(), nil
	}

	seen := make(map[string]bool, len(names))
	var result []Dataset
	for _, name := range names {
		if seen[name] {
			continue
		}
		seen[name] = true
		d, err := r.Get(name)
		if err != nil {
			return nil, err
		}
		result = append(result, d)
	}
	return result, nil
}

// All returns all datasets in registration order.
func (r *Registry) All() []Dataset {
	result := make([]Dataset, 0, len(r.order))
	for _, name := range r.order {
		result = append(result, r.datasets[name])
	}
	return result
}

// AllNames returns all registered dataset names in registration order.
func (r *Registry) AllNames() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// AllTables returns every output table of the registered datasets.
func (r *Registry) AllTables() []string {
	var out []string
	for _, d := range r.All() {
		out = append(out, d.Tables()...)
	}
	return out
}
