// Package visits persists the directory jump list in SQLite: every
// completed chdir bumps a per-path visit counter used by the jump
// command and `fex info`.
package visits

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const visitsTableDDL = `
CREATE TABLE IF NOT EXISTS visits (
    path TEXT PRIMARY KEY,
    count INTEGER NOT NULL DEFAULT 0,
    last_visit INTEGER NOT NULL
);
`

const visitsCountIndexDDL = `CREATE INDEX IF NOT EXISTS idx_visits_count ON visits(count DESC);`

// Visit is one jump list row.
type Visit struct {
	Path      string
	Count     int64
	LastVisit time.Time
}

// Store wraps the visits database.
type Store struct {
	db *sql.DB
}

// Open opens (creating if necessary) the visit store at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("visits: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("visits: %w", err)
	}
	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA temp_store = MEMORY",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("visits: apply pragma %q: %w", pragma, err)
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	for _, ddl := range []string{visitsTableDDL, visitsCountIndexDDL} {
		if _, err := db.Exec(ddl); err != nil {
			return fmt.Errorf("visits: %w", err)
		}
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error { return s.db.Close() }

// Record bumps the visit counter for path.
func (s *Store) Record(path string) error {
	_, err := s.db.Exec(
		`INSERT INTO visits (path, count, last_visit) VALUES (?, 1, ?)
		 ON CONFLICT(path) DO UPDATE SET count = count + 1, last_visit = excluded.last_visit`,
		path, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("visits: %w", err)
	}
	return nil
}

// Top returns the n most visited paths, most visited first.
func (s *Store) Top(n int) ([]Visit, error) {
	rows, err := s.db.Query(
		`SELECT path, count, last_visit FROM visits ORDER BY count DESC, last_visit DESC LIMIT ?`, n,
	)
	if err != nil {
		return nil, fmt.Errorf("visits: %w", err)
	}
	defer rows.Close()

	var visits []Visit
	for rows.Next() {
		var v Visit
		var last int64
		if err := rows.Scan(&v.Path, &v.Count, &last); err != nil {
			return nil, fmt.Errorf("visits: %w", err)
		}
		v.LastVisit = time.Unix(last, 0)
		visits = append(visits, v)
	}
	return visits, rows.Err()
}

// Match returns the most visited path containing needle, or "".
func (s *Store) Match(needle string) (string, error) {
	var path string
	err := s.db.QueryRow(
		`SELECT path FROM visits WHERE path LIKE ? ORDER BY count DESC LIMIT 1`,
		"%"+needle+"%",
	).Scan(&path)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("visits: %w", err)
	}
	return path, nil
}

// Prune keeps only the `keep` most visited rows, dropping the rest.
func (s *Store) Prune(keep int) error {
	_, err := s.db.Exec(
		`DELETE FROM visits WHERE path NOT IN (
		   SELECT path FROM visits ORDER BY count DESC, last_visit DESC LIMIT ?
		 )`, keep,
	)
	if err != nil {
		return fmt.Errorf("visits: %w", err)
	}
	return nil
}
