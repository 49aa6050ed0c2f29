package source

import (
	"fmt"
	"os"

	"github.com/justin4957/seclab-dashboard/internal/parser"
	"github.com/justin4957/seclab-dashboard/pkg/models"
)

// DataLoadError reports an event file that is missing, unreadable or
// malformed. It is fatal at startup.
type DataLoadError struct {
	Path string
	Err  error
}

func (e *DataLoadError) Error() string {
	return fmt.Sprintf("failed to load event data from %s: %v", e.Path, e.Err)
}

func (e *DataLoadError) Unwrap() error { return e.Err }

// Loader reads an event file from disk
type Loader struct {
	parser parser.TableParser
}

// NewLoader creates a loader for the given file format
func NewLoader(format string) *Loader {
	return &Loader{parser: parser.NewParser(format)}
}

// Load reads and parses path. Every failure is a *DataLoadError.
func (l *Loader) Load(path string) (*models.EventTable, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, &DataLoadError{Path: path, Err: err}
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, &DataLoadError{Path: path, Err: err}
	}
	if info.IsDir() {
		return nil, &DataLoadError{Path: path, Err: fmt.Errorf("is a directory")}
	}

	table, err := l.parser.Parse(file)
	if err != nil {
		return nil, &DataLoadError{Path: path, Err: err}
	}

	table.Source = path
	table.ModTime = info.ModTime()
	return table, nil
}
