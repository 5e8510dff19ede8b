// Package sink holds the destinations snapshots are written to.
package sink

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"ressample/pkg/models"
)

const (
	sqliteScheme = "sqlite://"
	stdoutDest   = "-"
)

// RecordSink durably records snapshots. Write hands one snapshot to the sink;
// Flush pushes everything written so far to the underlying storage.
type RecordSink interface {
	Write(snap models.Snapshot) error
	Flush() error
	Close() error
}

// Options tune how Open builds the primary sink.
type Options struct {
	Append bool   // Keep existing CSV rows instead of truncating
	RunID  string // Tags rows in sinks that store several runs together
}

// Open builds the sink for a destination string:
// "sqlite://path" or a .db/.sqlite/.sqlite3 file selects SQLite, "-" writes CSV to
// stdout, anything else is a CSV file path.
func Open(dest string, opts Options) (RecordSink, error) {
	dest = strings.TrimSpace(dest)

	var (
		out RecordSink
		err error
	)

	switch {
	case dest == "":
		return nil, fmt.Errorf("%w: empty destination", ErrUnsupportedDestination)
	case strings.HasPrefix(dest, sqliteScheme):
		path := strings.TrimPrefix(dest, sqliteScheme)
		if path == "" {
			return nil, fmt.Errorf("%w: %s", ErrUnsupportedDestination, dest)
		}
		out, err = asSink(OpenSQLite(path, opts.RunID))
	case dest == stdoutDest:
		out, err = asSink(NewCSVWriter(os.Stdout, !opts.Append))
	case isSQLiteFile(dest):
		out, err = asSink(OpenSQLite(dest, opts.RunID))
	default:
		out, err = asSink(OpenCSV(dest, opts.Append))
	}

	if err != nil {
		return nil, err
	}
	return out, nil
}

func isSQLiteFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		return true
	}
	return false
}

// asSink drops typed nil pointers so failed constructors yield a nil interface.
func asSink[T RecordSink](s T, err error) (RecordSink, error) {
	if err != nil {
		return nil, err
	}
	return s, nil
}
