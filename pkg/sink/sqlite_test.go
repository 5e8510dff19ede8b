package sink

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"ressample/pkg/models"
)

// SQLiteTestSuite tests the SQLite sink
type SQLiteTestSuite struct {
	suite.Suite
	path  string
	store *SQLite
}

// SetupTest opens a database in a fresh directory
func (s *SQLiteTestSuite) SetupTest() {
	s.path = filepath.Join(s.T().TempDir(), "usage.db")

	var err error
	s.store, err = OpenSQLite(s.path, "run-a")
	s.Require().NoError(err)
}

// TearDownTest closes the database
func (s *SQLiteTestSuite) TearDownTest() {
	if s.store != nil {
		s.NoError(s.store.Close())
	}
}

// TestWriteAndReadBack tests that rows round-trip
func (s *SQLiteTestSuite) TestWriteAndReadBack() {
	snaps := []models.Snapshot{
		{CPUUsed: 12.5, MemUsed: 1 << 30, MemTotal: 1 << 34, DiskUsed: 110, DiskTotal: 300, Timestamp: 1700000000.25},
		{CPUUsed: 0, Timestamp: 1700000010.5},
	}
	for _, snap := range snaps {
		s.Require().NoError(s.store.Write(snap))
		s.Require().NoError(s.store.Flush())
	}

	got, err := s.store.Snapshots(context.Background(), "run-a")
	s.Require().NoError(err)
	s.Equal(snaps, got)
}

// TestRunsAreSeparated tests that a reopened database keeps earlier runs apart
func (s *SQLiteTestSuite) TestRunsAreSeparated() {
	s.Require().NoError(s.store.Write(models.Snapshot{CPUUsed: 1}))
	s.Require().NoError(s.store.Close())

	second, err := OpenSQLite(s.path, "run-b")
	s.Require().NoError(err)
	s.store = second

	s.Require().NoError(second.Write(models.Snapshot{CPUUsed: 2}))
	s.Require().NoError(second.Write(models.Snapshot{CPUUsed: 3}))

	first, err := second.Snapshots(context.Background(), "run-a")
	s.Require().NoError(err)
	s.Len(first, 1)

	own, err := second.Snapshots(context.Background(), "run-b")
	s.Require().NoError(err)
	s.Len(own, 2)
}

// TestEmptyRunIDGetsUUID tests run identifier generation
func (s *SQLiteTestSuite) TestEmptyRunIDGetsUUID() {
	other, err := OpenSQLite(filepath.Join(s.T().TempDir(), "other.db"), "")
	s.Require().NoError(err)
	defer other.Close()

	_, err = uuid.Parse(other.RunID())
	s.NoError(err)
}

// TestWriteAfterClose tests the closed state
func (s *SQLiteTestSuite) TestWriteAfterClose() {
	s.Require().NoError(s.store.Close())

	s.ErrorIs(s.store.Write(models.Snapshot{}), ErrSinkClosed)
	s.ErrorIs(s.store.Flush(), ErrSinkClosed)
	s.NoError(s.store.Close())
}

// TestOpenFailsInMissingDirectory tests the startup failure path
func (s *SQLiteTestSuite) TestOpenFailsInMissingDirectory() {
	store, err := OpenSQLite(filepath.Join(s.T().TempDir(), "missing", "x.db"), "run")
	s.Error(err)
	s.Nil(store)
	s.ErrorIs(err, ErrDatabaseError)
}

// TestSQLiteSuite runs the SQLite test suite
func TestSQLiteSuite(t *testing.T) {
	suite.Run(t, new(SQLiteTestSuite))
}
