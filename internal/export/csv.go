package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/justin4957/seclab-dashboard/pkg/models"
)

const (
	// Filename is the name offered for the download
	Filename = "filtered_logs.csv"

	// ContentType is the media type of the export
	ContentType = "text/csv"

	// TimestampLayout is used for whole-second UTC timestamps
	TimestampLayout = "2006-01-02 15:04:05"
)

// FormatTimestamp writes whole-second UTC values in the plain layout and
// anything else as RFC3339Nano so parsing it back is lossless.
func FormatTimestamp(ts time.Time) string {
	if ts.Location() == time.UTC && ts.Nanosecond() == 0 {
		return ts.Format(TimestampLayout)
	}
	return ts.Format(time.RFC3339Nano)
}

// WriteCSV writes events with a header row in the given column order and no
// index column
func WriteCSV(w io.Writer, columns []string, events []models.Event) error {
	if len(columns) == 0 {
		return fmt.Errorf("no columns to export")
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(columns); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	record := make([]string, len(columns))
	for _, ev := range events {
		for i, col := range columns {
			if col == models.ColumnTimestamp {
				record[i] = FormatTimestamp(ev.Timestamp)
				continue
			}
			record[i] = ev.Field(col)
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush csv: %w", err)
	}
	return nil
}
