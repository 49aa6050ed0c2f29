package models

import (
	"time"
)

// Column names as they appear in the source file and the CSV export
const (
	ColumnTimestamp   = "timestamp"
	ColumnSourceIP    = "source_ip"
	ColumnAttackType  = "attack_type"
	ColumnSeverity    = "severity"
	ColumnCountryCode = "country_code"
)

// RequiredColumns must be present in every source file
var RequiredColumns = []string{
	ColumnTimestamp,
	ColumnSourceIP,
	ColumnAttackType,
	ColumnSeverity,
}

// Event represents one simulated security incident
type Event struct {
	Timestamp   time.Time `json:"timestamp"`
	SourceIP    string    `json:"source_ip"`
	AttackType  string    `json:"attack_type"`
	Severity    string    `json:"severity"`
	CountryCode string    `json:"country_code"`
}

// Field returns the string value of a column. Timestamp is not a
// categorical column and yields an empty string.
func (e Event) Field(column string) string {
	switch column {
	case ColumnSourceIP:
		return e.SourceIP
	case ColumnAttackType:
		return e.AttackType
	case ColumnSeverity:
		return e.Severity
	case ColumnCountryCode:
		return e.CountryCode
	}
	return ""
}

// EventTable is the loaded event data. It is never mutated after it has been
// published to the cache; enrichment produces a new table.
type EventTable struct {
	Columns  []string  `json:"columns"`
	Events   []Event   `json:"-"`
	Source   string    `json:"source"`
	ModTime  time.Time `json:"mod_time"`
	Enriched bool      `json:"enriched"`
}

// HasColumn reports whether the table carries the named column
func (t *EventTable) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// Len returns the number of events
func (t *EventTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Events)
}

// Selection holds the active filter values for the three dimensions.
// A nil set and an empty set both select nothing.
type Selection struct {
	Countries   []string `json:"countries"`
	AttackTypes []string `json:"attack_types"`
	Severities  []string `json:"severities"`
}

// FilterOptions are the sorted distinct values offered by each control
type FilterOptions struct {
	Countries   []string `json:"countries"`
	AttackTypes []string `json:"attack_types"`
	Severities  []string `json:"severities"`
}
