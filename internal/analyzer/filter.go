package analyzer

import (
	"sort"

	"github.com/justin4957/seclab-dashboard/pkg/models"
)

// Distinct returns the sorted distinct values of the three filter dimensions
func Distinct(table *models.EventTable) models.FilterOptions {
	if table == nil {
		return models.FilterOptions{Countries: []string{}, AttackTypes: []string{}, Severities: []string{}}
	}

	countries := make(map[string]struct{}, 16)
	attacks := make(map[string]struct{}, 16)
	severities := make(map[string]struct{}, 4)
	for _, ev := range table.Events {
		countries[ev.CountryCode] = struct{}{}
		attacks[ev.AttackType] = struct{}{}
		severities[ev.Severity] = struct{}{}
	}

	return models.FilterOptions{
		Countries:   sortedKeys(countries),
		AttackTypes: sortedKeys(attacks),
		Severities:  sortedKeys(severities),
	}
}

// DefaultSelection selects every distinct value of every dimension
func DefaultSelection(table *models.EventTable) models.Selection {
	opts := Distinct(table)
	return models.Selection{
		Countries:   opts.Countries,
		AttackTypes: opts.AttackTypes,
		Severities:  opts.Severities,
	}
}

// NormalizeSelection drops values that do not occur in the table and sorts
// and de-duplicates the rest. The result is always a subset of Distinct.
func NormalizeSelection(table *models.EventTable, sel models.Selection) models.Selection {
	opts := Distinct(table)
	return models.Selection{
		Countries:   intersect(sel.Countries, opts.Countries),
		AttackTypes: intersect(sel.AttackTypes, opts.AttackTypes),
		Severities:  intersect(sel.Severities, opts.Severities),
	}
}

// Filter returns a fresh slice of the events matching all three selections,
// in table order. The table is not modified.
func Filter(table *models.EventTable, sel models.Selection) []models.Event {
	if table == nil {
		return []models.Event{}
	}

	countries := toSet(sel.Countries)
	attacks := toSet(sel.AttackTypes)
	severities := toSet(sel.Severities)

	filtered := make([]models.Event, 0, len(table.Events))
	if len(countries) == 0 || len(attacks) == 0 || len(severities) == 0 {
		return filtered
	}

	for _, ev := range table.Events {
		if _, ok := countries[ev.CountryCode]; !ok {
			continue
		}
		if _, ok := attacks[ev.AttackType]; !ok {
			continue
		}
		if _, ok := severities[ev.Severity]; !ok {
			continue
		}
		filtered = append(filtered, ev)
	}
	return filtered
}

// Preview returns at most n leading events
func Preview(events []models.Event, n int) []models.Event {
	if n < 0 {
		n = 0
	}
	if len(events) < n {
		n = len(events)
	}
	preview := make([]models.Event, n)
	copy(preview, events[:n])
	return preview
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}

func intersect(values, allowed []string) []string {
	want := toSet(values)
	result := make([]string, 0, len(want))
	for _, v := range allowed {
		if _, ok := want[v]; ok {
			result = append(result, v)
		}
	}
	return result
}

func sortedKeys(m map[string]struct{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
