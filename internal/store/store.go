// ABOUTME: SQLite-backed library of named cue sets
// ABOUTME: Saves and loads ordered cue records transactionally
package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/pmoneynz/YouTube-cue-point-editor/internal/cue"
)

const schemaCueSets = `
CREATE TABLE IF NOT EXISTS cue_sets (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL UNIQUE,
	created_at INTEGER NOT NULL,
	updated_at INTEGER NOT NULL
);`

const schemaCuePoints = `
CREATE TABLE IF NOT EXISTS cue_points (
	set_id TEXT NOT NULL,
	seq INTEGER NOT NULL,
	position REAL NOT NULL CHECK (position >= 0),
	label TEXT NOT NULL CHECK (label <> ''),
	key TEXT,
	sample_rate INTEGER NOT NULL,
	sample_position INTEGER NOT NULL,
	PRIMARY KEY (set_id, seq),
	FOREIGN KEY (set_id) REFERENCES cue_sets(id) ON DELETE CASCADE
);`

const schemaCuePointsIndexes = `
CREATE INDEX IF NOT EXISTS idx_cue_points_set ON cue_points(set_id, position);`

// SetInfo describes one stored cue set.
type SetInfo struct {
	ID        string
	Name      string
	Cues      int
	UpdatedAt time.Time
}

// Store is a cue-set library on a local SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the library at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		_ = db.Close()
		return nil, err
	}

	for _, stmt := range []string{schemaCueSets, schemaCuePoints, schemaCuePointsIndexes} {
		if _, err := db.Exec(stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to apply schema: %w", err)
		}
	}

	return &Store{db: db}, nil
}

// Close closes the library.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveSet stores records under name, replacing any existing set with
// that name. The write is transactional; readers never observe a
// half-replaced set.
func (s *Store) SaveSet(name string, records []cue.Record) error {
	if name == "" {
		return fmt.Errorf("cue set name must not be empty")
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().Unix()
	var id string
	err = tx.QueryRow(`SELECT id FROM cue_sets WHERE name = ?`, name).Scan(&id)
	switch {
	case err == sql.ErrNoRows:
		id = uuid.New().String()
		if _, err := tx.Exec(
			`INSERT INTO cue_sets (id, name, created_at, updated_at) VALUES (?, ?, ?, ?)`,
			id, name, now, now,
		); err != nil {
			return err
		}
	case err != nil:
		return err
	default:
		if _, err := tx.Exec(`UPDATE cue_sets SET updated_at = ? WHERE id = ?`, now, id); err != nil {
			return err
		}
		if _, err := tx.Exec(`DELETE FROM cue_points WHERE set_id = ?`, id); err != nil {
			return err
		}
	}

	for i, rec := range records {
		if _, err := tx.Exec(
			`INSERT INTO cue_points (set_id, seq, position, label, key, sample_rate, sample_position)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			id, i, rec.Position, rec.Label, rec.Key, rec.SampleRate, rec.SamplePosition,
		); err != nil {
			return fmt.Errorf("failed to store cue %d: %w", i, err)
		}
	}

	return tx.Commit()
}

// LoadSet returns the named set in stored order.
func (s *Store) LoadSet(name string) ([]cue.Record, error) {
	var id string
	err := s.db.QueryRow(`SELECT id FROM cue_sets WHERE name = ?`, name).Scan(&id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("cue set %q not found", name)
	}
	if err != nil {
		return nil, err
	}

	rows, err := s.db.Query(
		`SELECT position, label, key, sample_rate, sample_position
		 FROM cue_points WHERE set_id = ? ORDER BY seq`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []cue.Record
	for rows.Next() {
		var rec cue.Record
		var key sql.NullString
		if err := rows.Scan(&rec.Position, &rec.Label, &key, &rec.SampleRate, &rec.SamplePosition); err != nil {
			return nil, err
		}
		rec.Key = key.String
		records = append(records, rec)
	}
	return records, rows.Err()
}

// ListSets returns all stored sets, most recently updated first.
func (s *Store) ListSets() ([]SetInfo, error) {
	rows, err := s.db.Query(`
		SELECT cs.id, cs.name, cs.updated_at, COUNT(cp.set_id)
		FROM cue_sets cs
		LEFT JOIN cue_points cp ON cp.set_id = cs.id
		GROUP BY cs.id
		ORDER BY cs.updated_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sets []SetInfo
	for rows.Next() {
		var info SetInfo
		var updated int64
		if err := rows.Scan(&info.ID, &info.Name, &updated, &info.Cues); err != nil {
			return nil, err
		}
		info.UpdatedAt = time.Unix(updated, 0)
		sets = append(sets, info)
	}
	return sets, rows.Err()
}

// DeleteSet removes the named set and its cues.
func (s *Store) DeleteSet(name string) error {
	res, err := s.db.Exec(`DELETE FROM cue_sets WHERE name = ?`, name)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("cue set %q not found", name)
	}
	return nil
}
