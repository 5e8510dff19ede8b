package sink

// Schema contains the SQL statements that create the snapshot table.
const Schema = `
-- One row per snapshot; run_id groups rows written by one process.
CREATE TABLE IF NOT EXISTS snapshots (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id      TEXT NOT NULL,
    cpu_used    REAL NOT NULL,
    mem_used    INTEGER NOT NULL,
    mem_total   INTEGER NOT NULL,
    disk_used   INTEGER NOT NULL,
    disk_total  INTEGER NOT NULL,
    timestamp   REAL NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_snapshots_run ON snapshots(run_id, timestamp);
`

const insertSnapshot = `INSERT INTO snapshots
    (run_id, cpu_used, mem_used, mem_total, disk_used, disk_total, timestamp)
    VALUES (?, ?, ?, ?, ?, ?, ?)`

const selectRun = `SELECT cpu_used, mem_used, mem_total, disk_used, disk_total, timestamp
    FROM snapshots WHERE run_id = ? ORDER BY id`
