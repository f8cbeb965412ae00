// Package store provides the external persistence collaborator described in
// spec.md §6: a sorted-set leaderboard keyed by player and two scalar
// counters (games played, connected clients), backed by an embedded SQLite
// database.
//
// Migration design: SQL statements are kept in the [migrations] slice as
// ordered strings. Each is applied exactly once; the applied version is
// tracked in the schema_migrations table. To add a migration, append a new
// string — never edit or reorder existing entries.
package store

import (
	"database/sql"
	"fmt"
	"log"

	_ "modernc.org/sqlite"
)

// migrations holds the ordered list of DDL/DML statements that bring the
// schema up to date. Index i corresponds to version i+1.
var migrations = []string{
	// v1 — leaderboard sorted set: player_key -> level (spec.md §6 ZADD)
	`CREATE TABLE IF NOT EXISTS leaderboard (
		player_key TEXT PRIMARY KEY,
		level      INTEGER NOT NULL,
		updated_at INTEGER NOT NULL DEFAULT (unixepoch())
	)`,
	// v2 — leaderboard index on level
	`CREATE INDEX IF NOT EXISTS idx_leaderboard_level ON leaderboard(level DESC)`,
	// v3 — scalar counters: PoemStarsGameNum, PoemStarsClientNum
	`CREATE TABLE IF NOT EXISTS counters (
		name  TEXT PRIMARY KEY,
		value INTEGER NOT NULL DEFAULT 0
	)`,
	// v4 — enable WAL mode
	`PRAGMA journal_mode=WAL`,
}

// Counter names, matching spec.md §6's key names.
const (
	CounterGameNum   = "PoemStarsGameNum"
	CounterClientNum = "PoemStarsClientNum"
)

// Store wraps a SQLite database and exposes the leaderboard/counter API
// consumed by the Persistence Writer (persist.go).
type Store struct {
	db *sql.DB
}

// New opens (or creates) the SQLite database at path and applies any pending
// migrations. Use ":memory:" for ephemeral in-process storage (tests).
func New(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// Allow up to four pooled connections; concurrent writers wait on
	// SQLite's lock via the busy_timeout set below.
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)

	if _, err := db.Exec(`PRAGMA journal_mode=WAL`); err != nil {
		log.Printf("[store] WAL mode: %v (non-fatal)", err)
	}
	if _, err := db.Exec(`PRAGMA busy_timeout=5000`); err != nil {
		log.Printf("[store] busy_timeout: %v (non-fatal)", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the schema_migrations table (if absent) and applies any
// migrations whose version number exceeds the current maximum.
func (s *Store) migrate() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (
		version    INTEGER PRIMARY KEY,
		applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`)
	if err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	var current int
	if err := s.db.QueryRow(
		`SELECT COALESCE(MAX(version), 0) FROM schema_migrations`,
	).Scan(&current); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}

	for i, stmt := range migrations {
		v := i + 1
		if v <= current {
			continue
		}
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("migration %d: %w", v, err)
		}
		if _, err := s.db.Exec(
			`INSERT INTO schema_migrations(version) VALUES(?)`, v,
		); err != nil {
			return fmt.Errorf("record migration %d: %w", v, err)
		}
		log.Printf("[store] applied migration v%d", v)
	}
	return nil
}

// UpsertLeaderboard sets playerKey's level in the sorted set, the Go
// equivalent of spec.md §6's `ZADD leaderboard_key player_key level`.
func (s *Store) UpsertLeaderboard(playerKey string, level int) error {
	_, err := s.db.Exec(
		`INSERT INTO leaderboard(player_key, level) VALUES(?, ?)
		 ON CONFLICT(player_key) DO UPDATE SET level = excluded.level, updated_at = unixepoch()`,
		playerKey, level,
	)
	return err
}

// LeaderboardEntry is one row of the sorted-set leaderboard.
type LeaderboardEntry struct {
	PlayerKey string
	Level     int
}

// TopLeaderboard returns up to limit entries ordered by level descending.
func (s *Store) TopLeaderboard(limit int) ([]LeaderboardEntry, error) {
	rows, err := s.db.Query(
		`SELECT player_key, level FROM leaderboard ORDER BY level DESC, player_key ASC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []LeaderboardEntry
	for rows.Next() {
		var e LeaderboardEntry
		if err := rows.Scan(&e.PlayerKey, &e.Level); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// GetLevel returns the stored level for a player. ok is false if the player
// has never been recorded.
func (s *Store) GetLevel(playerKey string) (level int, ok bool, err error) {
	err = s.db.QueryRow(`SELECT level FROM leaderboard WHERE player_key = ?`, playerKey).Scan(&level)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return level, true, nil
}

// SetCounter sets a named scalar counter, the Go equivalent of spec.md §6's
// `SET PoemStarsGameNum n` / `SET PoemStarsClientNum n`.
func (s *Store) SetCounter(name string, value int64) error {
	_, err := s.db.Exec(
		`INSERT INTO counters(name, value) VALUES(?, ?)
		 ON CONFLICT(name) DO UPDATE SET value = excluded.value`,
		name, value,
	)
	return err
}

// GetCounter returns the value of a named counter, or 0 if never set.
func (s *Store) GetCounter(name string) (int64, error) {
	var v int64
	err := s.db.QueryRow(`SELECT value FROM counters WHERE name = ?`, name).Scan(&v)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	return v, err
}

// Backup creates a copy of the database at the given path using SQLite's
// VACUUM INTO.
func (s *Store) Backup(destPath string) error {
	_, err := s.db.Exec(`VACUUM INTO ?`, destPath)
	return err
}
