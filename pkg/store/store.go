// Package store manages SQLite persistence for the spray-tank ledger.
//
// The database is the durable, ordered, append-only record log for a shift.
// Records are keyed by operator so multiple operators can share one file,
// but each operator's log is independent. WAL mode lets a watch loop read
// while a write is in flight.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/skeeterweed7-rgb/sprayer/pkg/clock"
	"github.com/skeeterweed7-rgb/sprayer/pkg/model"

	_ "modernc.org/sqlite"
)

// Store manages all SQLite operations for the record log.
type Store struct {
	db *sql.DB

	// mu serializes timestamp assignment so appends from the main flow and
	// a watch goroutine cannot race the clock.
	mu  sync.Mutex
	clk clock.Clock
}

// New opens (or creates) the SQLite database, initializes the schema, and
// seeds the timestamp clock from the newest persisted record.
func New(path string) (*Store, error) {
	dsn := path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(60000)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(30 * time.Minute)

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	if err := s.seedClock(); err != nil {
		db.Close()
		return nil, fmt.Errorf("seed clock: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error { return s.db.Close() }

// retryOnContention wraps retryOp from retry.go with the default config.
// All store write operations should use this to handle transient SQLite
// errors (BUSY, LOCKED, IOERR_SHORT_READ) under concurrent access.
func retryOnContention(fn func() error) error {
	return retryOp(defaultRetryConfig, fn)
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS records (
		id                  INTEGER PRIMARY KEY AUTOINCREMENT,
		operator_id         TEXT NOT NULL,
		road_name           TEXT NOT NULL,
		gallons_used        REAL NOT NULL,
		gallons_left        REAL NOT NULL CHECK (gallons_left >= 0),
		initial_tank_volume REAL NOT NULL CHECK (initial_tank_volume > 0),
		chemical_mix        TEXT NOT NULL,
		weather             TEXT NOT NULL,
		created_at          TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_records_operator ON records(operator_id, created_at, id);
	`
	_, err := s.db.Exec(schema)
	return err
}

// seedClock initializes the monotonic timestamp source from the newest
// record across all operators, so reopening the database never assigns a
// timestamp at or before an existing one.
func (s *Store) seedClock() error {
	var tsStr sql.NullString
	err := s.db.QueryRow(`SELECT MAX(created_at) FROM records`).Scan(&tsStr)
	if err != nil {
		return err
	}
	if !tsStr.Valid || tsStr.String == "" {
		return nil
	}
	ts, err := time.Parse(time.RFC3339Nano, tsStr.String)
	if err != nil {
		return fmt.Errorf("parse max created_at: %w", err)
	}
	s.clk.Set(ts)
	return nil
}

// Append appends a record to the operator's log. The store assigns the row
// ID and a monotonically increasing timestamp; both are returned. The given
// record is not modified.
func (s *Store) Append(operatorID string, r *model.Record) (int64, time.Time, error) {
	mixJSON, err := json.Marshal(chemicalsOrEmpty(r.ChemicalMix))
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("marshal chemical mix: %w", err)
	}
	weatherJSON, err := json.Marshal(r.WeatherConditions)
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("marshal weather: %w", err)
	}

	s.mu.Lock()
	ts := s.clk.Next(time.Now().UTC())
	s.mu.Unlock()

	var lastID int64
	err = retryOnContention(func() error {
		res, err := s.db.Exec(
			`INSERT INTO records (operator_id, road_name, gallons_used, gallons_left,
			                      initial_tank_volume, chemical_mix, weather, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			operatorID, r.RoadName, r.GallonsUsed, r.GallonsLeft,
			r.InitialTankVolume, string(mixJSON), string(weatherJSON),
			ts.Format(time.RFC3339Nano),
		)
		if err != nil {
			return err
		}
		lastID, err = res.LastInsertId()
		return err
	})
	if err != nil {
		return 0, time.Time{}, err
	}
	return lastID, ts, nil
}

// ListAll returns the operator's full record log in total order
// (created_at, id). It also verifies append-only integrity: if timestamps
// ever decrease along the log, the returned error wraps ErrOutOfOrder and
// the caller must not trust tail-derived state.
func (s *Store) ListAll(operatorID string) ([]model.Record, error) {
	rows, err := s.db.Query(
		`SELECT id, road_name, gallons_used, gallons_left, initial_tank_volume,
		        chemical_mix, weather, created_at
		 FROM records WHERE operator_id = ?
		 ORDER BY created_at ASC, id ASC`,
		operatorID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	recs, err := scanRecords(rows)
	if err != nil {
		return nil, err
	}
	if err := checkOrdered(recs); err != nil {
		return nil, err
	}
	return recs, nil
}

// DeleteByID removes a single record. Used only by reset; there is no
// cross-deletion atomicity, matching the per-document semantics of the
// original backing service.
func (s *Store) DeleteByID(id int64) error {
	return retryOnContention(func() error {
		_, err := s.db.Exec(`DELETE FROM records WHERE id = ?`, id)
		return err
	})
}

// CountRecords returns the number of records in the operator's log.
func (s *Store) CountRecords(operatorID string) int64 {
	var count int64
	if err := s.db.QueryRow(
		`SELECT COUNT(*) FROM records WHERE operator_id = ?`, operatorID,
	).Scan(&count); err != nil {
		return 0
	}
	return count
}

// MaxRecordID returns the highest record row ID for the operator, or 0 if
// the log is empty. Watch uses (MaxRecordID, CountRecords) as a cheap
// change fingerprint: appends raise the max, deletes lower the count.
func (s *Store) MaxRecordID(operatorID string) int64 {
	var id int64
	if err := s.db.QueryRow(
		`SELECT COALESCE(MAX(id), 0) FROM records WHERE operator_id = ?`, operatorID,
	).Scan(&id); err != nil {
		return 0
	}
	return id
}

func scanRecords(rows *sql.Rows) ([]model.Record, error) {
	var recs []model.Record
	for rows.Next() {
		var r model.Record
		var mixStr, weatherStr, createdStr string
		if err := rows.Scan(&r.ID, &r.RoadName, &r.GallonsUsed, &r.GallonsLeft,
			&r.InitialTankVolume, &mixStr, &weatherStr, &createdStr); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(mixStr), &r.ChemicalMix); err != nil {
			return nil, fmt.Errorf("parse chemical mix for record %d: %w", r.ID, err)
		}
		if r.ChemicalMix == nil {
			r.ChemicalMix = []model.Chemical{}
		}
		if err := json.Unmarshal([]byte(weatherStr), &r.WeatherConditions); err != nil {
			return nil, fmt.Errorf("parse weather for record %d: %w", r.ID, err)
		}
		var parseErr error
		r.Timestamp, parseErr = time.Parse(time.RFC3339Nano, createdStr)
		if parseErr != nil {
			return nil, fmt.Errorf("parse created_at for record %d: %w", r.ID, parseErr)
		}
		recs = append(recs, r)
	}
	return recs, rows.Err()
}

func chemicalsOrEmpty(mix []model.Chemical) []model.Chemical {
	if mix == nil {
		return []model.Chemical{}
	}
	return mix
}
