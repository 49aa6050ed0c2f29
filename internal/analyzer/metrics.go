package analyzer

import (
	"sort"
	"time"

	"github.com/justin4957/seclab-dashboard/internal/geo"
	"github.com/justin4957/seclab-dashboard/pkg/models"
)

// TrendHeadroom is added to the largest hourly count to get the y-axis bound
const TrendHeadroom = 5

// TrendLabelLayout formats the hour of each trend frame
const TrendLabelLayout = "2006-01-02 15:04"

type kv struct {
	Key   string
	Value int
}

// sortCounts orders by count descending, ties by key ascending
func sortCounts(counts map[string]int) []kv {
	sorted := make([]kv, 0, len(counts))
	for k, v := range counts {
		sorted = append(sorted, kv{k, v})
	}

	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Value != sorted[j].Value {
			return sorted[i].Value > sorted[j].Value
		}
		return sorted[i].Key < sorted[j].Key
	})
	return sorted
}

// CountByCountry counts events per country code and resolves the ISO-3
// region used by the map. Unknown codes keep an empty ISO3.
func CountByCountry(events []models.Event) []models.CountryCount {
	counts := make(map[string]int, 16)
	for _, ev := range events {
		counts[ev.CountryCode]++
	}

	sorted := sortCounts(counts)
	result := make([]models.CountryCount, len(sorted))
	for i, c := range sorted {
		iso3, _ := geo.ToISO3(c.Key)
		result[i] = models.CountryCount{
			CountryCode: c.Key,
			ISO3:        iso3,
			Name:        geo.Name(c.Key),
			Count:       c.Value,
		}
	}
	return result
}

// CountBySeverity counts events per severity with their share of the total
func CountBySeverity(events []models.Event) []models.SeverityCount {
	counts := make(map[string]int, 4)
	for _, ev := range events {
		counts[ev.Severity]++
	}

	sorted := sortCounts(counts)
	result := make([]models.SeverityCount, len(sorted))
	for i, c := range sorted {
		result[i] = models.SeverityCount{
			Severity: c.Key,
			Count:    c.Value,
			Percent:  100 * float64(c.Value) / float64(len(events)),
		}
	}
	return result
}

// HourBucket floors a timestamp to the start of its hour in UTC
func HourBucket(ts time.Time) time.Time {
	return ts.UTC().Truncate(time.Hour)
}

// TrendByHour groups events by (hour, attack type). Frames are in ascending
// hour order and bars within a frame are sorted by attack type.
func TrendByHour(events []models.Event) models.TrendView {
	buckets := make(map[time.Time]map[string]int)
	attackSet := make(map[string]struct{})
	for _, ev := range events {
		hour := HourBucket(ev.Timestamp)
		bucket, ok := buckets[hour]
		if !ok {
			bucket = make(map[string]int, 8)
			buckets[hour] = bucket
		}
		bucket[ev.AttackType]++
		attackSet[ev.AttackType] = struct{}{}
	}

	hours := make([]time.Time, 0, len(buckets))
	for h := range buckets {
		hours = append(hours, h)
	}
	sort.Slice(hours, func(i, j int) bool { return hours[i].Before(hours[j]) })

	maxCount := 0
	frames := make([]models.TrendFrame, len(hours))
	for i, h := range hours {
		bucket := buckets[h]
		attacks := make([]string, 0, len(bucket))
		for a := range bucket {
			attacks = append(attacks, a)
		}
		sort.Strings(attacks)

		bars := make([]models.AttackCount, len(attacks))
		for j, a := range attacks {
			bars[j] = models.AttackCount{AttackType: a, Count: bucket[a]}
			if bucket[a] > maxCount {
				maxCount = bucket[a]
			}
		}
		frames[i] = models.TrendFrame{
			Hour:  h,
			Label: h.Format(TrendLabelLayout),
			Bars:  bars,
		}
	}

	return models.TrendView{
		Frames:      frames,
		AttackTypes: sortedKeys(attackSet),
		YMax:        maxCount + TrendHeadroom,
	}
}

// PivotCountrySeverity cross-tabulates country (rows) by severity (columns).
// Missing combinations are 0.
func PivotCountrySeverity(events []models.Event) models.PivotTable {
	rowSet := make(map[string]struct{}, 16)
	colSet := make(map[string]struct{}, 4)
	for _, ev := range events {
		rowSet[ev.CountryCode] = struct{}{}
		colSet[ev.Severity] = struct{}{}
	}

	pivot := models.PivotTable{
		Rows:    sortedKeys(rowSet),
		Columns: sortedKeys(colSet),
	}

	rowIndex := make(map[string]int, len(pivot.Rows))
	for i, r := range pivot.Rows {
		rowIndex[r] = i
	}
	colIndex := make(map[string]int, len(pivot.Columns))
	for i, c := range pivot.Columns {
		colIndex[c] = i
	}

	pivot.Cells = make([][]int, len(pivot.Rows))
	for i := range pivot.Cells {
		pivot.Cells[i] = make([]int, len(pivot.Columns))
	}
	pivot.RowTotals = make([]int, len(pivot.Rows))
	pivot.ColTotals = make([]int, len(pivot.Columns))

	for _, ev := range events {
		r, c := rowIndex[ev.CountryCode], colIndex[ev.Severity]
		pivot.Cells[r][c]++
		pivot.RowTotals[r]++
		pivot.ColTotals[c]++
		pivot.Total++
	}
	return pivot
}
