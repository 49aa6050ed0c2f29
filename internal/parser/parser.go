package parser

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/justin4957/seclab-dashboard/pkg/models"
)

// ErrMissingColumn is returned when the header lacks a required column
var ErrMissingColumn = errors.New("missing required column")

// RowError describes a malformed data row
type RowError struct {
	Line   int
	Column string
	Err    error
}

func (e *RowError) Error() string {
	if e.Column == "" {
		return fmt.Sprintf("line %d: %v", e.Line, e.Err)
	}
	return fmt.Sprintf("line %d, column %s: %v", e.Line, e.Column, e.Err)
}

func (e *RowError) Unwrap() error { return e.Err }

// TableParser interface for parsing different tabular formats
type TableParser interface {
	Parse(r io.Reader) (*models.EventTable, error)
}

// NewParser creates a parser based on the specified format
func NewParser(format string) TableParser {
	switch format {
	case "tsv":
		return &DelimitedParser{Comma: '\t'}
	case "csv":
		return &DelimitedParser{Comma: ','}
	default:
		return &DelimitedParser{Comma: ','}
	}
}

// timestampLayouts are tried in order
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseTimestamp parses a date-time value in any of the accepted layouts.
// Values without a zone are read as UTC.
func ParseTimestamp(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", value)
}

// DelimitedParser parses comma or tab separated event files with a header row
type DelimitedParser struct {
	Comma rune
}

func (p *DelimitedParser) Parse(r io.Reader) (*models.EventTable, error) {
	reader := csv.NewReader(r)
	reader.Comma = p.Comma
	reader.TrimLeadingSpace = true
	reader.ReuseRecord = true

	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("empty file: %w", ErrMissingColumn)
		}
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	index, columns := mapHeader(header)
	for _, col := range models.RequiredColumns {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, col)
		}
	}
	_, hasCountry := index[models.ColumnCountryCode]

	table := &models.EventTable{
		Columns: columns,
		Events:  make([]models.Event, 0, 256),
	}

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row: %w", err)
		}
		line, _ := reader.FieldPos(0)

		ts, err := ParseTimestamp(record[index[models.ColumnTimestamp]])
		if err != nil {
			return nil, &RowError{Line: line, Column: models.ColumnTimestamp, Err: err}
		}

		event := models.Event{
			Timestamp:  ts,
			SourceIP:   strings.TrimSpace(record[index[models.ColumnSourceIP]]),
			AttackType: strings.TrimSpace(record[index[models.ColumnAttackType]]),
			Severity:   strings.TrimSpace(record[index[models.ColumnSeverity]]),
		}
		if hasCountry {
			event.CountryCode = strings.ToUpper(strings.TrimSpace(record[index[models.ColumnCountryCode]]))
		}
		table.Events = append(table.Events, event)
	}

	return table, nil
}

// mapHeader returns the position of every recognized column and the
// recognized columns in source order. Unknown columns are skipped.
func mapHeader(header []string) (map[string]int, []string) {
	index := make(map[string]int, len(header))
	columns := make([]string, 0, len(header))
	for i, raw := range header {
		name := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(raw, "\ufeff")))
		switch name {
		case models.ColumnTimestamp, models.ColumnSourceIP, models.ColumnAttackType,
			models.ColumnSeverity, models.ColumnCountryCode:
			if _, dup := index[name]; dup {
				continue
			}
			index[name] = i
			columns = append(columns, name)
		}
	}
	return index, columns
}
