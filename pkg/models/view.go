package models

import (
	"time"
)

// CountryCount represents event count per country. ISO3 is empty when the
// code has no map region.
type CountryCount struct {
	CountryCode string `json:"country_code"`
	ISO3        string `json:"iso3"`
	Name        string `json:"name"`
	Count       int    `json:"count"`
}

// SeverityCount represents event count per severity
type SeverityCount struct {
	Severity string  `json:"severity"`
	Count    int     `json:"count"`
	Percent  float64 `json:"percent"`
}

// AttackCount represents event count per attack type within one hour
type AttackCount struct {
	AttackType string `json:"attack_type"`
	Count      int    `json:"count"`
}

// TrendFrame is one animation frame of the hourly trend chart
type TrendFrame struct {
	Hour  time.Time     `json:"hour"`
	Label string        `json:"label"`
	Bars  []AttackCount `json:"bars"`
}

// TrendView holds every frame plus the shared y-axis bound
type TrendView struct {
	Frames      []TrendFrame `json:"frames"`
	AttackTypes []string     `json:"attack_types"`
	YMax        int          `json:"y_max"`
}

// PivotTable is the country x severity cross-tabulation
type PivotTable struct {
	Rows      []string `json:"rows"`
	Columns   []string `json:"columns"`
	Cells     [][]int  `json:"cells"`
	RowTotals []int    `json:"row_totals"`
	ColTotals []int    `json:"col_totals"`
	Total     int      `json:"total"`
}

// Cell returns the count for a (country, severity) pair, 0 if absent
func (p PivotTable) Cell(row, col string) int {
	ri, ci := -1, -1
	for i, r := range p.Rows {
		if r == row {
			ri = i
			break
		}
	}
	for i, c := range p.Columns {
		if c == col {
			ci = i
			break
		}
	}
	if ri < 0 || ci < 0 {
		return 0
	}
	return p.Cells[ri][ci]
}

// Explanation is the simulated model decision for one sampled event
type Explanation struct {
	Event     Event    `json:"event"`
	Rationale []string `json:"rationale"`
}

// ViewModel is everything the page needs for one render pass
type ViewModel struct {
	Title        string          `json:"title"`
	Intro        string          `json:"intro"`
	Footer       string          `json:"footer"`
	Options      FilterOptions   `json:"options"`
	Selection    Selection       `json:"selection"`
	Total        int             `json:"total"`
	Preview      []Event         `json:"preview"`
	Map          []CountryCount  `json:"map"`
	Trend        TrendView       `json:"trend"`
	Severity     []SeverityCount `json:"severity"`
	Pivot        PivotTable      `json:"pivot"`
	Explanation  *Explanation    `json:"explanation,omitempty"`
	EmptyMessage string          `json:"empty_message,omitempty"`
	RenderedAt   time.Time       `json:"rendered_at"`
}
