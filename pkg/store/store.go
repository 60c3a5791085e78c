// Package store persists sender-to-player bindings. The store is owned by
// the handler layer and injected where needed; the dispatch pipeline never
// touches it.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// ErrNotBound is returned when a sender has no bound player.
var ErrNotBound = errors.New("sender has no bound player")

const schema = `
CREATE TABLE IF NOT EXISTS bindings (
    qq INTEGER PRIMARY KEY,
    player_id TEXT NOT NULL,
    bound_at DATETIME NOT NULL DEFAULT (datetime('now')),
    updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);
`

// Binding maps one chat sender to a BeatLeader player.
type Binding struct {
	QQ        int64
	PlayerID  string
	BoundAt   time.Time
	UpdatedAt time.Time
}

// Store is the SQLite-backed bindings table.
type Store struct {
	db *sql.DB
}

// Open creates or opens the bindings database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening bindings database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging bindings database: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

// OpenMemory creates an in-memory store for tests.
func OpenMemory() (*Store, error) {
	db, err := sql.Open("sqlite", ":memory:?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening in-memory database: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

func (s *Store) migrate() error {
	_, err := s.db.Exec(schema)
	return err
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Get returns the player bound to a sender, or ErrNotBound.
func (s *Store) Get(ctx context.Context, qq int64) (string, error) {
	var playerID string
	err := s.db.QueryRowContext(ctx,
		`SELECT player_id FROM bindings WHERE qq = ?`, qq).Scan(&playerID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotBound
	}
	if err != nil {
		return "", fmt.Errorf("querying binding for %d: %w", qq, err)
	}
	return playerID, nil
}

// Put binds a sender to a player, replacing any previous binding.
func (s *Store) Put(ctx context.Context, qq int64, playerID string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO bindings (qq, player_id) VALUES (?, ?)
		ON CONFLICT(qq) DO UPDATE SET
			player_id = excluded.player_id,
			updated_at = datetime('now')`,
		qq, playerID)
	if err != nil {
		return fmt.Errorf("storing binding for %d: %w", qq, err)
	}
	return nil
}

// All returns every binding ordered by sender id.
func (s *Store) All(ctx context.Context) ([]Binding, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT qq, player_id, bound_at, updated_at FROM bindings ORDER BY qq`)
	if err != nil {
		return nil, fmt.Errorf("listing bindings: %w", err)
	}
	defer rows.Close()

	var bindings []Binding
	for rows.Next() {
		var b Binding
		if err := rows.Scan(&b.QQ, &b.PlayerID, &b.BoundAt, &b.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning binding: %w", err)
		}
		bindings = append(bindings, b)
	}
	return bindings, rows.Err()
}

// Count returns the number of bindings.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM bindings`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting bindings: %w", err)
	}
	return n, nil
}
