// Package enrich adds a synthetic country_code column to tables that lack one.
// The assignment is weighted random noise and does not geolocate the IP.
package enrich

import (
	"math/rand/v2"
	"sync"
	"time"

	"github.com/justin4957/seclab-dashboard/pkg/models"
)

// CountryWeight is one entry of the sampling distribution
type CountryWeight struct {
	Code   string  `yaml:"code"`
	Weight float64 `yaml:"weight"`
}

// DefaultWeights is the distribution used when none is configured.
// Weights are relative and need not sum to 1.
var DefaultWeights = []CountryWeight{
	{"US", 0.20},
	{"CN", 0.15},
	{"RU", 0.10},
	{"DE", 0.08},
	{"FR", 0.08},
	{"IN", 0.07},
	{"JP", 0.07},
	{"KR", 0.05},
	{"GB", 0.05},
	{"BR", 0.05},
	{"CA", 0.05},
}

// Enricher assigns country codes by sampling a fixed discrete distribution
type Enricher struct {
	codes      []string
	cumulative []float64
	total      float64
	seed       uint64

	mu  sync.Mutex
	rng *rand.Rand
}

// NewEnricher creates an enricher. A zero seed seeds from the clock; empty
// or all-zero weights fall back to DefaultWeights.
func NewEnricher(seed uint64, weights []CountryWeight) *Enricher {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	e := &Enricher{seed: seed}
	e.setWeights(weights)
	if e.total <= 0 {
		e.setWeights(DefaultWeights)
	}
	e.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	return e
}

func (e *Enricher) setWeights(weights []CountryWeight) {
	e.codes = e.codes[:0]
	e.cumulative = e.cumulative[:0]
	e.total = 0
	for _, w := range weights {
		if w.Weight <= 0 || w.Code == "" {
			continue
		}
		e.total += w.Weight
		e.codes = append(e.codes, w.Code)
		e.cumulative = append(e.cumulative, e.total)
	}
}

// Seed returns the seed in use
func (e *Enricher) Seed() uint64 {
	return e.seed
}

// CountryFor draws one country code. The IP is accepted for signature
// compatibility with a real geolocation lookup and does not affect the draw.
func (e *Enricher) CountryFor(ip string) string {
	e.mu.Lock()
	r := e.rng.Float64() * e.total
	e.mu.Unlock()

	for i, c := range e.cumulative {
		if r < c {
			return e.codes[i]
		}
	}
	return e.codes[len(e.codes)-1]
}

// Apply returns a table with a country_code column. Tables that already have
// one are returned as is; otherwise a new table is built and the input is
// left untouched.
func (e *Enricher) Apply(table *models.EventTable) *models.EventTable {
	if table == nil || table.HasColumn(models.ColumnCountryCode) {
		return table
	}

	enriched := &models.EventTable{
		Columns:  make([]string, 0, len(table.Columns)+1),
		Events:   make([]models.Event, len(table.Events)),
		Source:   table.Source,
		ModTime:  table.ModTime,
		Enriched: true,
	}
	enriched.Columns = append(enriched.Columns, table.Columns...)
	enriched.Columns = append(enriched.Columns, models.ColumnCountryCode)

	for i, ev := range table.Events {
		ev.CountryCode = e.CountryFor(ev.SourceIP)
		enriched.Events[i] = ev
	}
	return enriched
}
