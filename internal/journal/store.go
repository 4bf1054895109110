// Package journal persists the ask/report/tell protocol of every run to
// SQLite so tell-lag interleavings can be replayed and inspected.
package journal

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS generations (
	generation_id TEXT PRIMARY KEY,
	library       TEXT NOT NULL,
	version       TEXT NOT NULL,
	created_at    TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS protocol_events (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	generation_id TEXT NOT NULL,
	scenario      TEXT NOT NULL,
	seed          INTEGER NOT NULL,
	seq           INTEGER NOT NULL,
	kind          TEXT NOT NULL,
	trial         INTEGER NOT NULL,
	step          INTEGER,
	state         TEXT,
	value         REAL,
	depth         INTEGER,
	created_at    TEXT NOT NULL,
	UNIQUE (generation_id, scenario, seed, seq),
	FOREIGN KEY (generation_id) REFERENCES generations(generation_id)
);

CREATE INDEX IF NOT EXISTS idx_protocol_events_run
	ON protocol_events (generation_id, scenario, seed, seq);
`

// Store is a SQLite-backed protocol journal
type Store struct {
	db *sql.DB
}

// Open opens (or creates) a journal database and runs migrations
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// One connection keeps ":memory:" databases shared and serializes writers.
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{"PRAGMA journal_mode=WAL", "PRAGMA synchronous=NORMAL", "PRAGMA foreign_keys=ON"} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("%s: %w", pragma, err)
		}
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB
func (s *Store) DB() *sql.DB {
	return s.db
}

// BeginGeneration registers a generation before any of its events are
// written.
func (s *Store) BeginGeneration(generationID, library, version string) error {
	_, err := s.db.Exec(
		`INSERT INTO generations (generation_id, library, version, created_at) VALUES (?, ?, ?, ?)`,
		generationID, library, version, time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("begin generation %s: %w", generationID, err)
	}
	return nil
}

// Generation is one registered generation
type Generation struct {
	ID        string
	Library   string
	Version   string
	CreatedAt time.Time
}

// Generations lists registered generations, oldest first
func (s *Store) Generations() ([]Generation, error) {
	rows, err := s.db.Query(`SELECT generation_id, library, version, created_at FROM generations ORDER BY created_at ASC, generation_id ASC`)
	if err != nil {
		return nil, fmt.Errorf("query generations: %w", err)
	}
	defer rows.Close()

	var out []Generation
	for rows.Next() {
		var g Generation
		var created string
		if err := rows.Scan(&g.ID, &g.Library, &g.Version, &created); err != nil {
			return nil, fmt.Errorf("scan generation: %w", err)
		}
		if g.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
			return nil, fmt.Errorf("parse created_at %q: %w", created, err)
		}
		out = append(out, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate generations: %w", err)
	}
	return out, nil
}
