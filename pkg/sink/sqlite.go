package sink

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"ressample/pkg/models"

	_ "modernc.org/sqlite"
)

// SQLite appends snapshots to a snapshots table. Every insert commits on its own,
// so Flush has nothing left to do.
type SQLite struct {
	db     *sql.DB
	insert *sql.Stmt
	runID  string
	mu     sync.Mutex
	closed bool
}

// OpenSQLite opens (or creates) the database at path and prepares the schema.
// An empty runID is replaced by a random UUID.
func OpenSQLite(path, runID string) (*SQLite, error) {
	if runID == "" {
		runID = uuid.NewString()
	}

	database, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open database: %w", ErrDatabaseError, err)
	}

	ctx := context.Background()

	// WAL lets readers query the table while the sampler keeps appending
	if _, err := database.ExecContext(ctx, "PRAGMA journal_mode = WAL"); err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("%w: failed to enable WAL mode: %w", ErrDatabaseError, err)
	}

	if _, err := database.ExecContext(ctx, Schema); err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("%w: failed to initialize schema: %w", ErrDatabaseError, err)
	}

	stmt, err := database.PrepareContext(ctx, insertSnapshot)
	if err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("%w: failed to prepare insert: %w", ErrDatabaseError, err)
	}

	return &SQLite{db: database, insert: stmt, runID: runID}, nil
}

// RunID returns the identifier stored with every row of this run.
func (s *SQLite) RunID() string {
	return s.runID
}

// Write inserts one row.
func (s *SQLite) Write(snap models.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrSinkClosed
	}

	_, err := s.insert.ExecContext(context.Background(),
		s.runID,
		snap.CPUUsed,
		int64(snap.MemUsed),   //nolint:gosec // Byte counts stay far below 2^63
		int64(snap.MemTotal),  //nolint:gosec // Byte counts stay far below 2^63
		int64(snap.DiskUsed),  //nolint:gosec // Byte counts stay far below 2^63
		int64(snap.DiskTotal), //nolint:gosec // Byte counts stay far below 2^63
		snap.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("%w: failed to insert snapshot: %w", ErrDatabaseError, err)
	}
	return nil
}

// Flush is a no-op; rows are durable once Write returns.
func (s *SQLite) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrSinkClosed
	}
	return nil
}

// Snapshots returns the rows of one run in insertion order.
func (s *SQLite) Snapshots(ctx context.Context, runID string) ([]models.Snapshot, error) {
	rows, err := s.db.QueryContext(ctx, selectRun, runID)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query snapshots: %w", ErrDatabaseError, err)
	}
	defer rows.Close()

	var snaps []models.Snapshot
	for rows.Next() {
		var (
			snap                                  models.Snapshot
			memUsed, memTotal, diskUsed, diskTotal int64
		)
		if err := rows.Scan(&snap.CPUUsed, &memUsed, &memTotal, &diskUsed, &diskTotal, &snap.Timestamp); err != nil {
			return nil, fmt.Errorf("%w: failed to scan snapshot: %w", ErrDatabaseError, err)
		}
		snap.MemUsed = uint64(memUsed)     //nolint:gosec // Written from uint64 values
		snap.MemTotal = uint64(memTotal)   //nolint:gosec // Written from uint64 values
		snap.DiskUsed = uint64(diskUsed)   //nolint:gosec // Written from uint64 values
		snap.DiskTotal = uint64(diskTotal) //nolint:gosec // Written from uint64 values
		snaps = append(snaps, snap)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: failed to read snapshots: %w", ErrDatabaseError, err)
	}
	return snaps, nil
}

// Close releases the prepared statement and the database handle.
func (s *SQLite) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	_ = s.insert.Close()
	return s.db.Close()
}
