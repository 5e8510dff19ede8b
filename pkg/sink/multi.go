package sink

import (
	"errors"

	"ressample/pkg/models"
)

// Multi fans every call out to all children. A failing child does not stop the
// others; the returned error joins every child failure.
type Multi struct {
	sinks []RecordSink
}

// NewMulti combines sinks; nil entries are skipped.
func NewMulti(sinks ...RecordSink) *Multi {
	m := &Multi{}
	for _, s := range sinks {
		if s != nil {
			m.sinks = append(m.sinks, s)
		}
	}
	return m
}

// Len returns the number of children.
func (m *Multi) Len() int {
	return len(m.sinks)
}

func (m *Multi) Write(snap models.Snapshot) error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.Write(snap); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m *Multi) Flush() error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.Flush(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m *Multi) Close() error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
