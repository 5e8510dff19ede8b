package sink

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"sync"

	"ressample/pkg/models"
)

const filePerm = 0o640

// CSV writes one header row and then one row per snapshot.
type CSV struct {
	mu     sync.Mutex
	writer *csv.Writer
	closer io.Closer
	closed bool
}

// OpenCSV creates (or truncates) the file at path and writes the header.
// With appendMode an existing non-empty file keeps its rows; its header must match.
func OpenCSV(path string, appendMode bool) (*CSV, error) {
	if !appendMode {
		file, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, filePerm)
		if err != nil {
			return nil, fmt.Errorf("open csv %s: %w", path, err)
		}
		return newCSV(file, file, true)
	}

	writeHeader, err := checkExistingHeader(path)
	if err != nil {
		return nil, err
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, filePerm)
	if err != nil {
		return nil, fmt.Errorf("open csv %s: %w", path, err)
	}
	return newCSV(file, file, writeHeader)
}

// NewCSVWriter wraps an arbitrary writer. It is never closed by the sink.
func NewCSVWriter(w io.Writer, writeHeader bool) (*CSV, error) {
	return newCSV(w, nil, writeHeader)
}

func newCSV(w io.Writer, closer io.Closer, writeHeader bool) (*CSV, error) {
	c := &CSV{
		writer: csv.NewWriter(w),
		closer: closer,
	}

	if writeHeader {
		if err := c.writer.Write(models.Header()); err != nil {
			c.closeQuietly()
			return nil, fmt.Errorf("write csv header: %w", err)
		}
		c.writer.Flush()
		if err := c.writer.Error(); err != nil {
			c.closeQuietly()
			return nil, fmt.Errorf("write csv header: %w", err)
		}
	}

	return c, nil
}

// checkExistingHeader reports whether a header still has to be written to path.
func checkExistingHeader(path string) (bool, error) {
	file, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("open csv %s: %w", path, err)
	}
	defer file.Close()

	header, err := csv.NewReader(file).Read()
	if errors.Is(err, io.EOF) {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("read csv header %s: %w", path, err)
	}

	if !slices.Equal(header, models.Header()) {
		return false, fmt.Errorf("%w: %s has %v", ErrHeaderMismatch, path, header)
	}
	return false, nil
}

// Write buffers one row.
func (c *CSV) Write(snap models.Snapshot) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrSinkClosed
	}
	return c.writer.Write(snap.Record())
}

// Flush pushes buffered rows to the underlying writer.
func (c *CSV) Flush() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrSinkClosed
	}
	c.writer.Flush()
	return c.writer.Error()
}

// Close flushes and closes the file, if the sink owns one.
func (c *CSV) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true

	c.writer.Flush()
	flushErr := c.writer.Error()

	var closeErr error
	if c.closer != nil {
		closeErr = c.closer.Close()
	}
	return errors.Join(flushErr, closeErr)
}

func (c *CSV) closeQuietly() {
	if c.closer != nil {
		_ = c.closer.Close()
	}
}

// ReadCSV parses a stream written by CSV back into snapshots. The first row is the header.
func ReadCSV(r io.Reader) ([]models.Snapshot, error) {
	reader := csv.NewReader(r)

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	var snaps []models.Snapshot
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return snaps, nil
		}
		if err != nil {
			return snaps, fmt.Errorf("read csv line %d: %w", line, err)
		}

		snap, err := models.ParseRecord(header, record)
		if err != nil {
			return snaps, fmt.Errorf("parse csv line %d: %w", line, err)
		}
		snaps = append(snaps, snap)
	}
}
