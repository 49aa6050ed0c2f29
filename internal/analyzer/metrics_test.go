package analyzer

import (
	"math"
	"testing"
	"time"

	"github.com/justin4957/seclab-dashboard/pkg/models"
)

func TestCountByCountry_SumsToFiltered(t *testing.T) {
	table := generateTestTable(400)
	filtered := Filter(table, models.Selection{
		Countries:   []string{"US", "CN", "FR"},
		AttackTypes: []string{"DDoS", "Malware"},
		Severities:  []string{"low", "high"},
	})

	sum := 0
	for _, c := range CountByCountry(filtered) {
		sum += c.Count
	}
	if sum != len(filtered) {
		t.Errorf("Country counts sum to %d, expected %d", sum, len(filtered))
	}
}

func TestCountByCountry_OrderAndISO3(t *testing.T) {
	events := []models.Event{
		createTestEvent(0, "CN", "DDoS", "high"),
		createTestEvent(0, "US", "DDoS", "high"),
		createTestEvent(0, "US", "DDoS", "high"),
		createTestEvent(0, "DE", "DDoS", "high"),
		createTestEvent(0, "X1", "DDoS", "high"),
	}

	counts := CountByCountry(events)
	if len(counts) != 4 {
		t.Fatalf("Expected 4 countries, got %d", len(counts))
	}
	if counts[0].CountryCode != "US" || counts[0].Count != 2 || counts[0].ISO3 != "USA" {
		t.Errorf("Unexpected top country: %+v", counts[0])
	}
	// ties are ordered by code
	if counts[1].CountryCode != "CN" || counts[2].CountryCode != "DE" {
		t.Errorf("Unexpected tie order: %+v", counts)
	}
	for _, c := range counts {
		if c.CountryCode == "X1" && c.ISO3 != "" {
			t.Errorf("Unknown code should have no region, got %q", c.ISO3)
		}
	}
}

func TestCountBySeverity(t *testing.T) {
	events := []models.Event{
		createTestEvent(0, "US", "DDoS", "high"),
		createTestEvent(0, "US", "DDoS", "high"),
		createTestEvent(0, "US", "DDoS", "low"),
		createTestEvent(0, "US", "DDoS", "medium"),
	}

	counts := CountBySeverity(events)
	sum, pct := 0, 0.0
	for _, c := range counts {
		sum += c.Count
		pct += c.Percent
	}
	if sum != len(events) {
		t.Errorf("Severity counts sum to %d, expected %d", sum, len(events))
	}
	if math.Abs(pct-100) > 1e-9 {
		t.Errorf("Percentages sum to %f", pct)
	}
	if counts[0].Severity != "high" || counts[0].Percent != 50 {
		t.Errorf("Unexpected top severity: %+v", counts[0])
	}

	if got := CountBySeverity(nil); len(got) != 0 {
		t.Errorf("Expected no severities for empty view, got %v", got)
	}
}

func TestTrendByHour(t *testing.T) {
	events := []models.Event{
		createTestEvent(5*time.Minute, "US", "DDoS", "high"),
		createTestEvent(59*time.Minute, "US", "DDoS", "high"),
		createTestEvent(30*time.Minute, "US", "Phishing", "low"),
		createTestEvent(2*time.Hour+time.Minute, "US", "Malware", "low"),
		createTestEvent(-time.Minute, "US", "DDoS", "low"),
	}

	trend := TrendByHour(events)

	if len(trend.Frames) != 3 {
		t.Fatalf("Expected 3 frames, got %d", len(trend.Frames))
	}
	wantHours := []time.Time{testBase.Add(-time.Hour), testBase, testBase.Add(2 * time.Hour)}
	for i, f := range trend.Frames {
		if !f.Hour.Equal(wantHours[i]) {
			t.Errorf("Frame %d: expected hour %v, got %v", i, wantHours[i], f.Hour)
		}
	}

	middle := trend.Frames[1]
	if middle.Label != "2025-04-01 08:00" {
		t.Errorf("Unexpected label %q", middle.Label)
	}
	if len(middle.Bars) != 2 || middle.Bars[0].AttackType != "DDoS" || middle.Bars[0].Count != 2 {
		t.Errorf("Unexpected bars: %+v", middle.Bars)
	}
	if trend.YMax != 2+TrendHeadroom {
		t.Errorf("Expected YMax %d, got %d", 2+TrendHeadroom, trend.YMax)
	}
	if len(trend.AttackTypes) != 3 {
		t.Errorf("Expected 3 attack types, got %v", trend.AttackTypes)
	}

	total := 0
	for _, f := range trend.Frames {
		for _, b := range f.Bars {
			total += b.Count
		}
	}
	if total != len(events) {
		t.Errorf("Trend counts sum to %d, expected %d", total, len(events))
	}
}

func TestTrendByHour_Empty(t *testing.T) {
	trend := TrendByHour(nil)
	if len(trend.Frames) != 0 {
		t.Errorf("Expected no frames, got %d", len(trend.Frames))
	}
	if trend.YMax != TrendHeadroom {
		t.Errorf("Expected YMax %d, got %d", TrendHeadroom, trend.YMax)
	}
}

func TestPivotCountrySeverity(t *testing.T) {
	table := generateTestTable(333)
	filtered := Filter(table, models.Selection{
		Countries:   []string{"US", "RU", "FR"},
		AttackTypes: []string{"DDoS", "Phishing", "Malware"},
		Severities:  []string{"low", "medium", "high"},
	})

	pivot := PivotCountrySeverity(filtered)

	cellSum := 0
	for _, row := range pivot.Cells {
		for _, v := range row {
			cellSum += v
		}
	}
	if cellSum != len(filtered) || pivot.Total != len(filtered) {
		t.Errorf("Pivot sums to %d (total %d), expected %d", cellSum, pivot.Total, len(filtered))
	}

	for _, ev := range filtered {
		if pivot.Cell(ev.CountryCode, ev.Severity) == 0 {
			t.Errorf("Pair (%s, %s) present but cell is 0", ev.CountryCode, ev.Severity)
		}
	}

	for i, row := range pivot.Cells {
		sum := 0
		for _, v := range row {
			sum += v
		}
		if sum != pivot.RowTotals[i] {
			t.Errorf("Row %s total mismatch: %d vs %d", pivot.Rows[i], sum, pivot.RowTotals[i])
		}
	}
}

func TestPivotCountrySeverity_FillsZeros(t *testing.T) {
	events := []models.Event{
		createTestEvent(0, "US", "DDoS", "high"),
		createTestEvent(0, "CN", "DDoS", "low"),
	}

	pivot := PivotCountrySeverity(events)

	if len(pivot.Rows) != 2 || len(pivot.Columns) != 2 {
		t.Fatalf("Expected 2x2 pivot, got %dx%d", len(pivot.Rows), len(pivot.Columns))
	}
	if pivot.Cell("US", "low") != 0 || pivot.Cell("CN", "high") != 0 {
		t.Error("Missing combinations should be 0")
	}
	if pivot.Cell("US", "high") != 1 || pivot.Cell("CN", "low") != 1 {
		t.Error("Present combinations should be counted")
	}
}

func TestPivot_SingleCountrySeverity(t *testing.T) {
	table := createTestTable(
		createTestEvent(0, "US", "DDoS", "high"),
		createTestEvent(time.Minute, "US", "Phishing", "low"),
		createTestEvent(2*time.Minute, "CN", "DDoS", "high"),
	)

	sel := DefaultSelection(table)
	sel.Countries = []string{"US"}
	sel.Severities = []string{"high"}

	filtered := Filter(table, sel)
	if len(filtered) != 1 || filtered[0].CountryCode != "US" || filtered[0].Severity != "high" {
		t.Fatalf("Unexpected filtered rows: %+v", filtered)
	}

	pivot := PivotCountrySeverity(filtered)
	nonZero := 0
	for _, row := range pivot.Cells {
		for _, v := range row {
			if v != 0 {
				nonZero++
			}
		}
	}
	if nonZero != 1 || pivot.Cell("US", "high") != len(filtered) {
		t.Errorf("Expected single non-zero cell (US, high) = %d, got %+v", len(filtered), pivot)
	}
}
