package enrich

import (
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/justin4957/seclab-dashboard/pkg/models"
)

func createTestTable(rows int) *models.EventTable {
	table := &models.EventTable{
		Columns: []string{"timestamp", "source_ip", "attack_type", "severity"},
		Events:  make([]models.Event, rows),
		Source:  "test.csv",
	}
	base := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	for i := range table.Events {
		table.Events[i] = models.Event{
			Timestamp:  base.Add(time.Duration(i) * time.Minute),
			SourceIP:   fmt.Sprintf("10.0.0.%d", i%256),
			AttackType: "DDoS",
			Severity:   "high",
		}
	}
	return table
}

func TestEnricher_SeededReproducibility(t *testing.T) {
	table := createTestTable(200)

	first := NewEnricher(42, nil).Apply(table)
	second := NewEnricher(42, nil).Apply(table)

	for i := range first.Events {
		if first.Events[i].CountryCode != second.Events[i].CountryCode {
			t.Fatalf("Row %d differs: %s vs %s", i, first.Events[i].CountryCode, second.Events[i].CountryCode)
		}
	}
}

func TestEnricher_DoesNotMutateInput(t *testing.T) {
	table := createTestTable(10)

	enriched := NewEnricher(7, nil).Apply(table)

	if table.HasColumn(models.ColumnCountryCode) {
		t.Error("Input table columns were mutated")
	}
	for _, ev := range table.Events {
		if ev.CountryCode != "" {
			t.Fatal("Input table events were mutated")
		}
	}
	if !enriched.Enriched || !enriched.HasColumn(models.ColumnCountryCode) {
		t.Error("Enriched table should carry country_code")
	}
	if enriched.Columns[len(enriched.Columns)-1] != models.ColumnCountryCode {
		t.Errorf("country_code should be the last column, got %v", enriched.Columns)
	}
}

func TestEnricher_KeepsExistingCountry(t *testing.T) {
	table := createTestTable(3)
	table.Columns = append(table.Columns, models.ColumnCountryCode)
	for i := range table.Events {
		table.Events[i].CountryCode = "NZ"
	}

	got := NewEnricher(1, nil).Apply(table)
	if got != table {
		t.Fatal("Table with country_code should be returned unchanged")
	}
}

func TestEnricher_OnlyKnownCodes(t *testing.T) {
	known := make(map[string]bool)
	for _, w := range DefaultWeights {
		known[w.Code] = true
	}

	enriched := NewEnricher(99, nil).Apply(createTestTable(1000))
	for _, ev := range enriched.Events {
		if !known[ev.CountryCode] {
			t.Fatalf("Unexpected country code %q", ev.CountryCode)
		}
	}
}

func TestEnricher_DistributionRoughlyFollowsWeights(t *testing.T) {
	const draws = 20000
	e := NewEnricher(2024, nil)

	counts := make(map[string]int)
	for i := 0; i < draws; i++ {
		counts[e.CountryFor("")]++
	}

	var total float64
	for _, w := range DefaultWeights {
		total += w.Weight
	}
	for _, w := range DefaultWeights {
		expected := w.Weight / total
		actual := float64(counts[w.Code]) / draws
		if math.Abs(expected-actual) > 0.02 {
			t.Errorf("Country %s: expected share %.3f, got %.3f", w.Code, expected, actual)
		}
	}
}

func TestEnricher_IgnoresIP(t *testing.T) {
	a := NewEnricher(5, nil)
	b := NewEnricher(5, nil)

	for i := 0; i < 50; i++ {
		if a.CountryFor("1.1.1.1") != b.CountryFor(fmt.Sprintf("203.0.113.%d", i)) {
			t.Fatal("IP value should not influence the draw")
		}
	}
}

func TestEnricher_CustomAndInvalidWeights(t *testing.T) {
	only := NewEnricher(3, []CountryWeight{{"NL", 1}, {"XX", 0}, {"", 5}})
	for i := 0; i < 20; i++ {
		if got := only.CountryFor(""); got != "NL" {
			t.Fatalf("Expected NL, got %s", got)
		}
	}

	fallback := NewEnricher(3, []CountryWeight{{"NL", 0}})
	if len(fallback.codes) != len(DefaultWeights) {
		t.Errorf("Expected fallback to default weights, got %v", fallback.codes)
	}
}
