package models

import (
	"errors"
	"fmt"
	"strconv"
)

// Column names of the tabular record, in output order.
const (
	ColumnCPUUsed   = "cpu_used"
	ColumnMemUsed   = "mem_used"
	ColumnMemTotal  = "mem_total"
	ColumnDiskUsed  = "disk_used"
	ColumnDiskTotal = "disk_total"
	ColumnTimestamp = "timestamp"
)

var (
	// ErrMissingColumn is returned when a header lacks one of the snapshot columns.
	ErrMissingColumn = errors.New("missing column")

	// ErrShortRecord is returned when a row has fewer fields than its header.
	ErrShortRecord = errors.New("record shorter than header")

	// ErrInvalidField is returned when a field cannot be parsed as its column type.
	ErrInvalidField = errors.New("invalid field")
)

// Header returns the record header in fixed column order.
func Header() []string {
	return []string{
		ColumnCPUUsed,
		ColumnMemUsed,
		ColumnMemTotal,
		ColumnDiskUsed,
		ColumnDiskTotal,
		ColumnTimestamp,
	}
}

// Record encodes the snapshot in Header order. Floats use the shortest
// representation that parses back to the same value.
func (s Snapshot) Record() []string {
	return []string{
		strconv.FormatFloat(s.CPUUsed, 'f', -1, 64),
		strconv.FormatUint(s.MemUsed, 10),
		strconv.FormatUint(s.MemTotal, 10),
		strconv.FormatUint(s.DiskUsed, 10),
		strconv.FormatUint(s.DiskTotal, 10),
		strconv.FormatFloat(s.Timestamp, 'f', -1, 64),
	}
}

// ParseRecord decodes a row using the given header to locate columns,
// so rows written with reordered or extra columns still parse.
func ParseRecord(header, record []string) (Snapshot, error) {
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[name] = i
	}

	field := func(name string) (string, error) {
		i, ok := index[name]
		if !ok {
			return "", fmt.Errorf("%w: %s", ErrMissingColumn, name)
		}
		if i >= len(record) {
			return "", fmt.Errorf("%w: %s", ErrShortRecord, name)
		}
		return record[i], nil
	}

	parseFloat := func(name string) (float64, error) {
		raw, err := field(name)
		if err != nil {
			return 0, err
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %s: %w", ErrInvalidField, name, err)
		}
		return v, nil
	}

	parseUint := func(name string) (uint64, error) {
		raw, err := field(name)
		if err != nil {
			return 0, err
		}
		v, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %s: %w", ErrInvalidField, name, err)
		}
		return v, nil
	}

	var (
		snap Snapshot
		err  error
	)
	if snap.CPUUsed, err = parseFloat(ColumnCPUUsed); err != nil {
		return Snapshot{}, err
	}
	if snap.MemUsed, err = parseUint(ColumnMemUsed); err != nil {
		return Snapshot{}, err
	}
	if snap.MemTotal, err = parseUint(ColumnMemTotal); err != nil {
		return Snapshot{}, err
	}
	if snap.DiskUsed, err = parseUint(ColumnDiskUsed); err != nil {
		return Snapshot{}, err
	}
	if snap.DiskTotal, err = parseUint(ColumnDiskTotal); err != nil {
		return Snapshot{}, err
	}
	if snap.Timestamp, err = parseFloat(ColumnTimestamp); err != nil {
		return Snapshot{}, err
	}

	return snap, nil
}
