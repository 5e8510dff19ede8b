package models

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

// ModelsTestSuite tests snapshot records and volume sets
type ModelsTestSuite struct {
	suite.Suite
}

// TestHeaderOrder tests the fixed column order
func (s *ModelsTestSuite) TestHeaderOrder() {
	s.Equal([]string{"cpu_used", "mem_used", "mem_total", "disk_used", "disk_total", "timestamp"}, Header())
}

// TestRecordEncoding tests numeric encoding of each column
func (s *ModelsTestSuite) TestRecordEncoding() {
	snap := Snapshot{
		CPUUsed:   12.5,
		MemUsed:   1024,
		MemTotal:  4096,
		DiskUsed:  110,
		DiskTotal: 300,
		Timestamp: 1700000000.25,
	}

	s.Equal([]string{"12.5", "1024", "4096", "110", "300", "1700000000.25"}, snap.Record())
}

// TestParseRecordReorderedHeader tests header-aware decoding
func (s *ModelsTestSuite) TestParseRecordReorderedHeader() {
	header := []string{"timestamp", "extra", "disk_total", "disk_used", "mem_total", "mem_used", "cpu_used"}
	record := []string{"1.5", "ignored", "300", "110", "4096", "1024", "33.25"}

	snap, err := ParseRecord(header, record)
	s.Require().NoError(err)
	s.Equal(Snapshot{
		CPUUsed:   33.25,
		MemUsed:   1024,
		MemTotal:  4096,
		DiskUsed:  110,
		DiskTotal: 300,
		Timestamp: 1.5,
	}, snap)
}

// TestParseRecordErrors tests malformed input
func (s *ModelsTestSuite) TestParseRecordErrors() {
	testCases := []struct {
		name   string
		header []string
		record []string
		want   error
	}{
		{"missing_column", []string{"cpu_used"}, []string{"1"}, ErrMissingColumn},
		{"short_record", Header(), []string{"1", "2"}, ErrShortRecord},
		{"bad_float", Header(), []string{"x", "1", "1", "1", "1", "1"}, ErrInvalidField},
		{"negative_uint", Header(), []string{"1", "-1", "1", "1", "1", "1"}, ErrInvalidField},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			_, err := ParseRecord(tc.header, tc.record)
			s.Error(err)
			s.True(errors.Is(err, tc.want), "got %v", err)
		})
	}
}

// TestTimeConversion tests the epoch helpers
func (s *ModelsTestSuite) TestTimeConversion() {
	now := time.Date(2024, 5, 1, 12, 0, 0, 500_000_000, time.UTC)
	snap := Snapshot{Timestamp: EpochSeconds(now)}

	s.InDelta(float64(now.Unix())+0.5, snap.Timestamp, 1e-6)
	s.WithinDuration(now, snap.Time(), time.Microsecond)
}

// TestVolumeUsed tests used-bytes computation
func (s *ModelsTestSuite) TestVolumeUsed() {
	s.Equal(uint64(60), Volume{Total: 100, Available: 40}.Used())
	s.Equal(uint64(0), Volume{Total: 10, Available: 20}.Used())
}

// TestTrackedVolumes tests set semantics
func (s *ModelsTestSuite) TestTrackedVolumes() {
	tracked := NewTrackedVolumes("/data", "/", "/data")

	s.Equal(2, tracked.Len())
	s.True(tracked.Contains("/"))
	s.True(tracked.Contains("/data"))
	s.False(tracked.Contains("/mnt"))
	s.Equal([]string{"/", "/data"}, tracked.IDs())
}

// TestTrackedVolumesZeroValue tests the empty set
func (s *ModelsTestSuite) TestTrackedVolumesZeroValue() {
	var tracked TrackedVolumes

	s.Equal(0, tracked.Len())
	s.False(tracked.Contains("/"))
	s.Empty(tracked.IDs())
}

// TestModelsSuite runs the models test suite
func TestModelsSuite(t *testing.T) {
	suite.Run(t, new(ModelsTestSuite))
}
