package malaria

import (
	"database/sql"
	"fmt"
	"strings"

	// sqlite3 driver
	_ "github.com/mattn/go-sqlite3"
)

// SQLiteRecorder is a Recorder that writes one row per tick into a single
// SQLite table, keyed by run identifier.
type SQLiteRecorder struct {
	path  string
	runID string
	db    *sql.DB
	stmt  *sql.Stmt
}

// NewSQLiteRecorder creates a SQLite-backed Recorder at basepath with ".db"
// appended.
func NewSQLiteRecorder(basepath string) *SQLiteRecorder {
	return &SQLiteRecorder{
		path:  strings.TrimSuffix(basepath, ".") + ".db",
		runID: newRunID(),
	}
}

// Init opens the database, creates the readouts table if absent, and
// prepares the insert statement Record reuses for the rest of the run.
func (l *SQLiteRecorder) Init() error {
	db, err := openSQLiteDBOptimized(l.path)
	if err != nil {
		return err
	}
	l.db = db

	const createStmt = `create table if not exists readouts (
		id integer not null primary key,
		run_id text,
		tick integer,
		n_infections integer,
		parasite_density real,
		gametocyte_density real,
		fever_celsius real,
		infectiousness real
	)`
	if _, err := db.Exec(createStmt); err != nil {
		return fmt.Errorf("%q: %s", err, createStmt)
	}

	const insertStmt = `insert into readouts
		(run_id, tick, n_infections, parasite_density, gametocyte_density, fever_celsius, infectiousness)
		values (?, ?, ?, ?, ?, ?, ?)`
	stmt, err := db.Prepare(insertStmt)
	if err != nil {
		return err
	}
	l.stmt = stmt
	return nil
}

// Record inserts one tick's readouts for h.
func (l *SQLiteRecorder) Record(tick int, h *Intrahost) error {
	row := newTickReadout(l.runID, tick, h)
	_, err := l.stmt.Exec(
		row.RunID,
		row.Tick,
		row.NumInfections,
		row.ParasiteDensity,
		row.GametocyteDensity,
		row.FeverCelsius,
		row.Infectiousness,
	)
	return err
}

// Close releases the prepared statement and database handle.
func (l *SQLiteRecorder) Close() error {
	if l.stmt != nil {
		l.stmt.Close()
	}
	if l.db != nil {
		return l.db.Close()
	}
	return nil
}

// openSQLiteDBOptimized establishes a database connection using WAL and
// exclusive locking, grounded on the teacher's OpenSQLiteDBOptimized.
func openSQLiteDBOptimized(path string) (*sql.DB, error) {
	dsn := fmt.Sprintf("file:%s?_journal=WAL&_locking=EXCLUSIVE&_sync=NORMAL", path)
	return sql.Open("sqlite3", dsn)
}
