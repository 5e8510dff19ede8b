package sink

import "errors"

var (
	// ErrUnsupportedDestination is returned when a destination string selects no sink.
	ErrUnsupportedDestination = errors.New("unsupported destination")

	// ErrHeaderMismatch is returned when appending to a CSV file written with other columns.
	ErrHeaderMismatch = errors.New("existing header does not match snapshot columns")

	// ErrSinkClosed is returned by Write or Flush after Close.
	ErrSinkClosed = errors.New("sink is closed")

	// ErrRemoteStatus is returned when a remote endpoint answers with a non-2xx status.
	ErrRemoteStatus = errors.New("remote returned unexpected status")

	// ErrDatabaseError is returned when a database operation fails.
	ErrDatabaseError = errors.New("database error")
)
